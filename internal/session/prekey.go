package session

import (
	"fmt"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/protocol/ratchet"
)

const preKeyHeaderSize = 1 + 3*32

// Keys is the public key-agreement material a session was built from. Both
// ends of a session hold the same Keys.
type Keys struct {
	// IdentityKey is the initiator's Curve25519 identity key.
	IdentityKey domain.X25519Public `cbor:"identity"`
	// BaseKey is the initiator's ephemeral key.
	BaseKey domain.X25519Public `cbor:"base"`
	// OneTimeKey is the responder's consumed one-time key.
	OneTimeKey domain.X25519Public `cbor:"otk"`
}

// PreKeyMessage is a first message: the session Keys and a normal message.
type PreKeyMessage struct {
	Keys    Keys
	Message []byte
}

// MarshalBinary returns the wire form.
func (m PreKeyMessage) MarshalBinary() []byte {
	out := make([]byte, 0, preKeyHeaderSize+len(m.Message))
	out = append(out, ratchet.MessageVersion)
	out = append(out, m.Keys.OneTimeKey[:]...)
	out = append(out, m.Keys.BaseKey[:]...)
	out = append(out, m.Keys.IdentityKey[:]...)
	return append(out, m.Message...)
}

// RatchetKey returns the sender's ratchet key from the embedded message.
func (m PreKeyMessage) RatchetKey() (domain.X25519Public, error) {
	h, _, err := ratchet.ParseMessage(m.Message)
	if err != nil {
		return domain.X25519Public{}, err
	}
	return h.RatchetKey, nil
}

func parsePreKeyMessage(b []byte) (PreKeyMessage, error) {
	if len(b) < preKeyHeaderSize {
		return PreKeyMessage{}, fmt.Errorf("%w: pre-key message truncated (%d bytes)", domain.ErrAuthenticationFailure, len(b))
	}
	if b[0] != ratchet.MessageVersion {
		return PreKeyMessage{}, fmt.Errorf("%w: pre-key message version %d", domain.ErrAuthenticationFailure, b[0])
	}
	var m PreKeyMessage
	copy(m.Keys.OneTimeKey[:], b[1:33])
	copy(m.Keys.BaseKey[:], b[33:65])
	copy(m.Keys.IdentityKey[:], b[65:97])
	m.Message = b[preKeyHeaderSize:]
	return m, nil
}

// ParsePreKey decodes the pre-key envelope of msg. It fails with
// domain.ErrInvalidArgument when msg is not a pre-key message.
func ParsePreKey(msg domain.OlmMessage) (PreKeyMessage, error) {
	if msg.Type != domain.MessageTypePreKey {
		return PreKeyMessage{}, fmt.Errorf("%w: expected a pre-key message, got %s", domain.ErrInvalidArgument, msg.Type)
	}
	raw, err := crypto.DecodeB64(msg.Ciphertext)
	if err != nil {
		return PreKeyMessage{}, fmt.Errorf("%w: ciphertext is not base64", domain.ErrAuthenticationFailure)
	}
	return parsePreKeyMessage(raw)
}
