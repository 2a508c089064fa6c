package ratchet

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"ratchetkit/internal/domain"
)

type skippedID struct {
	ratchet domain.X25519Public
	index   uint32
}

type skippedKey struct {
	id  skippedID
	key [32]byte
}

// skippedCache holds message keys for messages that have not arrived yet.
// When full, the least recently stored key is dropped and its message can
// no longer be opened.
type skippedCache struct {
	keys *lru.Cache[skippedID, [32]byte]
}

func newSkippedCache(size int) (*skippedCache, error) {
	c, err := lru.New[skippedID, [32]byte](size)
	if err != nil {
		return nil, err
	}
	return &skippedCache{keys: c}, nil
}

func (c *skippedCache) peek(id skippedID) ([32]byte, bool) { return c.keys.Peek(id) }

func (c *skippedCache) remove(id skippedID) { c.keys.Remove(id) }

func (c *skippedCache) store(entries []skippedKey) {
	for _, e := range entries {
		c.keys.Add(e.id, e.key)
	}
}

// ordered returns the cached keys oldest first.
func (c *skippedCache) ordered() []skippedKey {
	ids := c.keys.Keys()
	out := make([]skippedKey, 0, len(ids))
	for _, id := range ids {
		if mk, ok := c.keys.Peek(id); ok {
			out = append(out, skippedKey{id: id, key: mk})
		}
	}
	return out
}

func (c *skippedCache) len() int { return c.keys.Len() }
