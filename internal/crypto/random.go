package crypto

import (
	"crypto/rand"
	"io"
	"sync"
)

var (
	randMu  sync.RWMutex
	randSrc io.Reader = rand.Reader
)

// UseDeterministicRandom swaps the randomness source and returns a function
// that restores the previous one. Only tests should call it.
func UseDeterministicRandom(r io.Reader) func() {
	randMu.Lock()
	prev := randSrc
	randSrc = r
	randMu.Unlock()
	return func() {
		randMu.Lock()
		randSrc = prev
		randMu.Unlock()
	}
}

// ReadRandom fills b from the current source.
func ReadRandom(b []byte) error {
	randMu.RLock()
	src := randSrc
	randMu.RUnlock()
	_, err := io.ReadFull(src, b)
	return err
}
