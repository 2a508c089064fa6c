package ratchet

import (
	"ratchetkit/internal/crypto"
	"ratchetkit/internal/util/memzero"
)

const (
	rootInfo   = "ratchetkit-root"
	cipherInfo = "ratchetkit-message"
)

var (
	messageKeySeed = []byte{0x01}
	chainKeySeed   = []byte{0x02}
)

// chainKey is a symmetric ratchet: a key and the index of the next message
// it will produce a key for. It only moves forward.
type chainKey struct {
	key   [32]byte
	index uint32
}

func (c chainKey) messageKey() [32]byte {
	var mk [32]byte
	copy(mk[:], crypto.HMACSHA256(c.key[:], messageKeySeed))
	return mk
}

func (c *chainKey) advance() {
	next := crypto.HMACSHA256(c.key[:], chainKeySeed)
	copy(c.key[:], next)
	memzero.Zero(next)
	c.index++
}

// kdfRoot mixes a fresh DH output into the root key, returning the next
// root key and the first key of a new chain.
func kdfRoot(root [32]byte, dh [32]byte) (newRoot, chain [32]byte, err error) {
	okm, err := crypto.HKDF(dh[:], root[:], rootInfo, 64)
	if err != nil {
		return newRoot, chain, err
	}
	copy(newRoot[:], okm[:32])
	copy(chain[:], okm[32:])
	memzero.Zero(okm)
	return newRoot, chain, nil
}
