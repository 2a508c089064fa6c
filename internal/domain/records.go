package domain

// RecordKind names a class of pickled entity held in a PickleStore.
type RecordKind string

const (
	RecordAccount             RecordKind = "account"
	RecordSession             RecordKind = "sessions"
	RecordGroupSession        RecordKind = "groups"
	RecordInboundGroupSession RecordKind = "inbound"
)

// AccountRecord is the name the local account is stored under.
const AccountRecord = "self"

// Fingerprint is a short human-readable digest of a public key.
type Fingerprint string

// GroupInfo describes an outbound or inbound group session without
// exposing key material.
type GroupInfo struct {
	Name            string `json:"name"`
	SessionID       string `json:"session_id"`
	MessageIndex    uint32 `json:"message_index"`
	FirstKnownIndex uint32 `json:"first_known_index,omitempty"`
	Verified        bool   `json:"verified,omitempty"`
}
