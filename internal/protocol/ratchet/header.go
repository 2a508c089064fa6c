package ratchet

import (
	"encoding/binary"
	"fmt"

	"ratchetkit/internal/domain"
)

const (
	// MessageVersion is the leading byte of every pairwise message.
	MessageVersion byte = 3
	// HeaderSize is version, ratchet key and chain index.
	HeaderSize = 1 + 32 + 4

	tagSize = 16
)

// Header travels in the clear at the front of every message and is
// authenticated as associated data.
type Header struct {
	RatchetKey domain.X25519Public
	Index      uint32
}

// MarshalBinary returns version | ratchet key | index (big-endian).
func (h Header) MarshalBinary() []byte {
	out := make([]byte, HeaderSize)
	out[0] = MessageVersion
	copy(out[1:33], h.RatchetKey[:])
	binary.BigEndian.PutUint32(out[33:], h.Index)
	return out
}

// ParseMessage splits a message into its header and ciphertext. Framing
// errors are authentication failures: such a message cannot be trusted.
func ParseMessage(b []byte) (Header, []byte, error) {
	var h Header
	if len(b) < HeaderSize+tagSize {
		return h, nil, fmt.Errorf("%w: message truncated (%d bytes)", domain.ErrAuthenticationFailure, len(b))
	}
	if b[0] != MessageVersion {
		return h, nil, fmt.Errorf("%w: message version %d", domain.ErrAuthenticationFailure, b[0])
	}
	copy(h.RatchetKey[:], b[1:33])
	h.Index = binary.BigEndian.Uint32(b[33:HeaderSize])
	return h, b[HeaderSize:], nil
}
