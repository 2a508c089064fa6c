package megolm

import (
	"encoding/binary"
	"fmt"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

const (
	MessageVersion byte = 3

	messageHeaderSize = 1 + 4
	signatureSize     = 64
	tagSize           = 16
	cipherInfo        = "ratchetkit-megolm"
)

// Message is a signed group message.
type Message struct {
	Index      uint32
	Ciphertext []byte
	Signature  domain.Ed25519Signature
}

func (m Message) header() []byte {
	h := make([]byte, messageHeaderSize)
	h[0] = MessageVersion
	binary.BigEndian.PutUint32(h[1:], m.Index)
	return h
}

func (m Message) signedBytes() []byte {
	return append(m.header(), m.Ciphertext...)
}

// MarshalBinary returns the wire form including the signature.
func (m Message) MarshalBinary() []byte {
	return append(m.signedBytes(), m.Signature[:]...)
}

// Encode returns the base64 wire form.
func (m Message) Encode() string { return crypto.B64(m.MarshalBinary()) }

// ParseMessage decodes a base64 group message. Anything that does not
// frame correctly is an authentication failure.
func ParseMessage(s string) (Message, error) {
	b, err := crypto.DecodeB64(s)
	if err != nil {
		return Message{}, fmt.Errorf("%w: group message is not base64", domain.ErrAuthenticationFailure)
	}
	if len(b) < messageHeaderSize+tagSize+signatureSize {
		return Message{}, fmt.Errorf("%w: group message truncated (%d bytes)", domain.ErrAuthenticationFailure, len(b))
	}
	if b[0] != MessageVersion {
		return Message{}, fmt.Errorf("%w: group message version %d", domain.ErrAuthenticationFailure, b[0])
	}
	m := Message{
		Index:      binary.BigEndian.Uint32(b[1:messageHeaderSize]),
		Ciphertext: append([]byte(nil), b[messageHeaderSize:len(b)-signatureSize]...),
	}
	copy(m.Signature[:], b[len(b)-signatureSize:])
	return m, nil
}

// Verify checks the message signature against the sender's signing key.
func (m Message) Verify(key domain.Ed25519Public) error {
	if !crypto.VerifyEd25519(key, m.signedBytes(), m.Signature) {
		return fmt.Errorf("%w: group message signature", domain.ErrAuthenticationFailure)
	}
	return nil
}

// Seal encrypts plaintext with the key for r's current index and signs
// the result. It does not advance r.
func Seal(r Ratchet, signing domain.Ed25519KeyPair, plaintext []byte) (Message, error) {
	m := Message{Index: r.Index()}
	state := r.Bytes()
	ct, err := crypto.SealMessage(state[:], cipherInfo, plaintext, m.header())
	memzero.Zero(state[:])
	if err != nil {
		return Message{}, err
	}
	m.Ciphertext = ct
	m.Signature = crypto.SignEd25519(signing.Private, m.signedBytes())
	return m, nil
}

// Open decrypts m with r, which must already be at m.Index. The signature
// is not checked here.
func Open(r Ratchet, m Message) ([]byte, error) {
	if r.Index() != m.Index {
		return nil, fmt.Errorf("megolm: ratchet at %d, message at %d", r.Index(), m.Index)
	}
	state := r.Bytes()
	defer memzero.Zero(state[:])
	return crypto.OpenMessage(state[:], cipherInfo, m.Ciphertext, m.header())
}
