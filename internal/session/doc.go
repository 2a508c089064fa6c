// Package session implements the pairwise Session: a double ratchet plus
// the key-agreement material it was established from.
//
// Sessions are built only through NewOutbound and NewInbound (normally by
// an account) or restored with FromPickle. The initiator wraps every
// message in a pre-key envelope until it has decrypted a reply, so the
// responder can establish the session from whichever message reaches it
// first.
//
// # Wire format
//
//	normal:  0x03 | ratchet key(32) | index(u32 BE) | ciphertext+tag
//	pre-key: 0x03 | one-time key(32) | base key(32) | identity key(32) | normal
//
// Both travel as unpadded base64 in a domain.OlmMessage.
//
// A Session is not safe for concurrent use.
package session
