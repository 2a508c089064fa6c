// Package crypto exposes the primitives the session engine is built from.
//
// Contents
//
//   - KeyCodec: unpadded base64 plus parsing and validation of Curve25519
//     and Ed25519 public keys and signatures (B64, DecodeB64,
//     ParseCurve25519, ParseEd25519, ParseSignature)
//   - X25519 key generation, clamping and Diffie-Hellman (GenerateX25519, DH)
//   - Ed25519 key generation, signing and verification
//   - HKDF/HMAC helpers and the message-key AEAD (SealMessage, OpenMessage)
//   - passphrase key derivation for the vault, Argon2id or scrypt (KDFParams)
//   - Short public-key fingerprints for display (Fingerprint)
//
// # Randomness
//
// Every random byte is drawn through ReadRandom. Tests swap the source with
// UseDeterministicRandom to get reproducible keys.
//
// # Notes
//
// Functions return fixed-size array types from internal/domain. Callers
// should treat returned secrets as sensitive and wipe them with
// internal/util/memzero when practical.
package crypto
