package domain

import "fmt"

// MessageType tags a pairwise envelope.
type MessageType int

const (
	// MessageTypePreKey carries key-agreement material and is sent until the
	// initiator has seen a reply.
	MessageTypePreKey MessageType = 0
	// MessageTypeNormal relies only on already-ratcheted chains.
	MessageTypeNormal MessageType = 1
)

func (t MessageType) String() string {
	switch t {
	case MessageTypePreKey:
		return "pre-key"
	case MessageTypeNormal:
		return "normal"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// ParseMessageType validates a raw integer type tag.
func ParseMessageType(v int) (MessageType, error) {
	switch MessageType(v) {
	case MessageTypePreKey, MessageTypeNormal:
		return MessageType(v), nil
	}
	return 0, fmt.Errorf("%w: message type %d", ErrInvalidArgument, v)
}

// OlmMessage is the pairwise envelope: a type tag plus unpadded base64
// ciphertext.
type OlmMessage struct {
	Type       MessageType `json:"type"`
	Ciphertext string      `json:"body"`
}

// DecryptedGroupMessage is the result of an inbound group decrypt.
type DecryptedGroupMessage struct {
	Plaintext    []byte
	MessageIndex uint32
}
