// Package identity creates and unlocks the local account.
//
// It enforces the passphrase policy on first use, pickles the account into
// the vault and exposes the public identity keys and their fingerprint.
// LoadAccount and SaveAccount are shared with the other services, which all
// start by unlocking the account.
package identity
