// Package ratchet implements the pairwise double ratchet.
//
// A State holds a root key, at most one sending chain and a short list of
// receiving chains keyed by the remote ratchet public key. Each message
// advances a symmetric HMAC chain so keys are forward secure. The first
// send after a new remote ratchet key has been seen performs a
// Diffie-Hellman step, deriving a fresh root key and sending chain.
//
// Messages that arrive ahead of their chain leave their skipped keys in a
// bounded LRU cache so that they can be opened when they do arrive. The
// cache size, the largest permitted forward jump and the number of
// remembered receiving chains all come from domain.Policy.
//
// Decrypt only commits state once the message has authenticated: a forged
// or damaged message leaves the State exactly as it was.
//
// Concurrency: State is NOT safe for concurrent use. Callers must
// serialise access per conversation.
package ratchet
