// Package megolm implements the sender-key ratchet used for group messages
// and its wire formats.
//
// # Ratchet
//
// The ratchet is four 32-byte parts R0..R3 and a counter. Part Ri is
// rekeyed every 2^(8*(3-i)) steps; when Ri changes, every part after it is
// rederived from it with HMAC-SHA256. Jumping forward costs at most 256
// hashes per part, and nothing derived from a later state can recover an
// earlier one.
//
// # Wire formats
//
//	message:      0x03 | index(u32 BE) | ciphertext+tag | ed25519 signature(64)
//	session key:  0x02 | index(u32 BE) | ratchet(128) | signing key(32) | signature(64)
//	exported key: 0x01 | index(u32 BE) | ratchet(128) | signing key(32)
//
// Message keys come from HKDF over the full 128-byte ratchet state and feed
// ChaCha20-Poly1305 with version and index as associated data. The message
// signature covers every byte before it. A session key is signed by the
// session's own signing key; an exported key is not, because it was
// re-derived by a recipient.
package megolm
