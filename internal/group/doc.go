// Package group implements sender-key group sessions on top of the megolm
// ratchet.
//
// A sender owns a GroupSession and broadcasts each message once. Recipients
// hold an InboundGroupSession seeded from the sender's session key, which
// has to reach them over an already encrypted channel such as a pairwise
// session. A recipient can decrypt any message at or after the index it
// was seeded at, in any order, and can re-export the chain from a later
// index for another device. Nothing before the seed index is recoverable.
//
// Neither type is safe for concurrent use.
package group
