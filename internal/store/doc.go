// Package store provides the on-disk vault that holds pickled entities.
//
// Layout under the vault directory:
//
//	meta.json               salt and KDF parameters for the pickle key
//	account/self.pickle     the local account
//	sessions/<peer>.pickle  pairwise sessions
//	groups/<name>.pickle    outbound group sessions
//	inbound/<name>.pickle   inbound group sessions
//
// Pickles are encrypted before they reach the store, so files hold only
// opaque text. The store derives the pickle key from a passphrase with the
// parameters recorded in meta.json, creating them on first use. Writes go
// through a temp file and rename. All methods are safe for concurrent use
// within one process.
package store
