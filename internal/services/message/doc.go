// Package message encrypts and decrypts pairwise messages over the
// sessions stored by the session service, saving ratchet state after every
// successful operation.
package message
