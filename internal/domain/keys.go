package domain

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// ------------- X25519 -------------

type X25519Private [32]byte
type X25519Public [32]byte

func (k X25519Private) Slice() []byte { return k[:] }
func (k X25519Public) Slice() []byte  { return k[:] }

// X25519KeyPair is a Curve25519 Diffie-Hellman key pair.
type X25519KeyPair struct {
	Private X25519Private
	Public  X25519Public
}

// ------------- Ed25519 -------------

type Ed25519Private [64]byte
type Ed25519Public [32]byte
type Ed25519Signature [64]byte

func (k Ed25519Private) Slice() []byte   { return k[:] }
func (k Ed25519Public) Slice() []byte    { return k[:] }
func (s Ed25519Signature) Slice() []byte { return s[:] }

// Ed25519KeyPair is a signing key pair.
type Ed25519KeyPair struct {
	Private Ed25519Private
	Public  Ed25519Public
}

// ------------- One-time keys -------------

// KeyID identifies a one-time key inside an Account. Ids are handed out in
// strictly increasing order and never reused.
type KeyID uint64

// String renders the id as unpadded base64 of its big-endian encoding.
func (id KeyID) String() string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return base64.RawStdEncoding.EncodeToString(b[:])
}

// ParseKeyID reverses KeyID.String.
func ParseKeyID(s string) (KeyID, error) {
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil || len(b) != 8 {
		return 0, fmt.Errorf("%w: key id %q", ErrInvalidArgument, s)
	}
	return KeyID(binary.BigEndian.Uint64(b)), nil
}

// IdentityKeys are the public halves of an Account's long-term keys,
// base64-encoded.
type IdentityKeys struct {
	Ed25519    string `json:"ed25519"`
	Curve25519 string `json:"curve25519"`
}
