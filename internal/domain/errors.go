package domain

import "errors"

// Error kinds. Operations wrap one of these with detail, so callers match
// with errors.Is. None of them are fatal; a failed call leaves the entity
// as it was.
var (
	// ErrInvalidArgument reports malformed sizes or counts.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidKey reports a key that fails format or point validation.
	ErrInvalidKey = errors.New("invalid key")
	// ErrUnknownOneTimeKey reports a replayed or already-consumed one-time key.
	ErrUnknownOneTimeKey = errors.New("unknown one-time key")
	// ErrAuthenticationFailure reports a message whose AEAD tag, MAC or
	// signature did not verify. The message is untrusted.
	ErrAuthenticationFailure = errors.New("authentication failure")
	// ErrMessageTooOld reports a group message below the first known index.
	ErrMessageTooOld = errors.New("message too old")
	// ErrMessageGap reports a pairwise message outside the skipped-key window.
	ErrMessageGap = errors.New("message gap")
	// ErrIndexOutOfRange reports an export below the first known index or a
	// group session with no indices left.
	ErrIndexOutOfRange = errors.New("index out of range")

	// Pickle failures.
	ErrDecryptionFailure  = errors.New("decryption failure")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrTypeMismatch       = errors.New("type mismatch")
)
