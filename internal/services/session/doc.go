// Package session establishes pairwise sessions and keeps one per peer in
// the vault.
//
// Outbound runs the key agreement against a peer's published keys.
// Inbound builds the session from a peer's first message, consuming the
// one-time key it names. A pre-key message that matches the session
// already stored for a peer is decrypted by that session instead, so a
// resent first message is not mistaken for a replay.
package session
