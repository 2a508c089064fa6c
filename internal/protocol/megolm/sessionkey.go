package megolm

import (
	"encoding/binary"
	"fmt"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

const (
	SessionKeyVersion  byte = 2
	ExportedKeyVersion byte = 1

	exportedKeySize = 1 + 4 + RatchetLength + 32
	sessionKeySize  = exportedKeySize + signatureSize
)

// SessionKey is what a sender distributes to authorise recipients. It is
// signed by the session's signing key.
type SessionKey struct {
	Ratchet    Ratchet
	SigningKey domain.Ed25519Public
	Signature  domain.Ed25519Signature
}

// NewSessionKey signs r and the public signing key.
func NewSessionKey(r Ratchet, signing domain.Ed25519KeyPair) SessionKey {
	k := SessionKey{Ratchet: r, SigningKey: signing.Public}
	k.Signature = crypto.SignEd25519(signing.Private, k.signedBytes())
	return k
}

func (k SessionKey) signedBytes() []byte {
	return marshalKey(SessionKeyVersion, k.Ratchet, k.SigningKey, sessionKeySize)
}

// Encode returns the base64 wire form.
func (k SessionKey) Encode() string {
	return crypto.B64(append(k.signedBytes(), k.Signature[:]...))
}

// ParseSessionKey decodes and verifies a session key. Malformed input and
// bad signatures are both domain.ErrInvalidKey.
func ParseSessionKey(s string) (SessionKey, error) {
	b, err := crypto.DecodeB64(s)
	if err != nil {
		return SessionKey{}, fmt.Errorf("%w: session key is not base64", domain.ErrInvalidKey)
	}
	if len(b) != sessionKeySize {
		return SessionKey{}, fmt.Errorf("%w: session key is %d bytes, want %d", domain.ErrInvalidKey, len(b), sessionKeySize)
	}
	if b[0] != SessionKeyVersion {
		return SessionKey{}, fmt.Errorf("%w: session key version %d", domain.ErrInvalidKey, b[0])
	}
	r, pub := unmarshalKey(b)
	k := SessionKey{Ratchet: r, SigningKey: pub}
	copy(k.Signature[:], b[exportedKeySize:])
	if !crypto.VerifyEd25519(pub, b[:exportedKeySize], k.Signature) {
		return SessionKey{}, fmt.Errorf("%w: session key signature", domain.ErrInvalidKey)
	}
	return k, nil
}

// ExportedSessionKey is a recipient's re-export of the chain at some
// index. It carries no signature.
type ExportedSessionKey struct {
	Ratchet    Ratchet
	SigningKey domain.Ed25519Public
}

// Encode returns the base64 wire form.
func (k ExportedSessionKey) Encode() string {
	return crypto.B64(marshalKey(ExportedKeyVersion, k.Ratchet, k.SigningKey, exportedKeySize))
}

// ParseExportedSessionKey decodes an exported key.
func ParseExportedSessionKey(s string) (ExportedSessionKey, error) {
	b, err := crypto.DecodeB64(s)
	if err != nil {
		return ExportedSessionKey{}, fmt.Errorf("%w: exported key is not base64", domain.ErrInvalidKey)
	}
	if len(b) != exportedKeySize {
		return ExportedSessionKey{}, fmt.Errorf("%w: exported key is %d bytes, want %d", domain.ErrInvalidKey, len(b), exportedKeySize)
	}
	if b[0] != ExportedKeyVersion {
		return ExportedSessionKey{}, fmt.Errorf("%w: exported key version %d", domain.ErrInvalidKey, b[0])
	}
	r, pub := unmarshalKey(b)
	return ExportedSessionKey{Ratchet: r, SigningKey: pub}, nil
}

func marshalKey(version byte, r Ratchet, pub domain.Ed25519Public, capacity int) []byte {
	out := make([]byte, 5, capacity)
	out[0] = version
	binary.BigEndian.PutUint32(out[1:5], r.Index())
	state := r.Bytes()
	out = append(out, state[:]...)
	memzero.Zero(state[:])
	return append(out, pub[:]...)
}

func unmarshalKey(b []byte) (Ratchet, domain.Ed25519Public) {
	var (
		state [RatchetLength]byte
		pub   domain.Ed25519Public
	)
	index := binary.BigEndian.Uint32(b[1:5])
	copy(state[:], b[5:5+RatchetLength])
	copy(pub[:], b[5+RatchetLength:exportedKeySize])
	r := NewRatchet(state, index)
	memzero.Zero(state[:])
	return r, pub
}
