// Package pickle seals entity state for storage under a caller-owned
// 256-bit key.
//
// # Format
//
// A pickle is unpadded base64 of
//
//	version(1) | kind(1) | nonce(24) | XChaCha20-Poly1305(CBOR(state))
//
// with version and kind bound as associated data. Opening checks, in order:
// key length (ErrInvalidArgument), framing and version
// (ErrDecryptionFailure, ErrUnsupportedVersion), the AEAD tag
// (ErrDecryptionFailure) and the declared kind (ErrTypeMismatch). The
// destination is only written once every check has passed.
package pickle
