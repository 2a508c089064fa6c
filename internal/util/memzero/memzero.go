// Package memzero wipes key material that is no longer needed.
//
// Wiping is best effort: Go may have copied the bytes elsewhere.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Array zeroes a fixed-size key held by pointer.
func Array[T ~[32]byte | ~[64]byte](k *T) {
	if k == nil {
		return
	}
	var z T
	*k = z
}
