// Package hashcache remembers the hashes of recently confirmed transactions
// so replays can be rejected.
package hashcache

import (
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultSize is the number of hashes retained when no size is configured.
const DefaultSize = 100_000

// Cache is a bounded set of transaction hashes. Each hash records the
// height of the block that confirmed it. The oldest hashes are evicted
// first once the cache is full.
type Cache struct {
	hashes *lru.Cache
}

// New constructs a cache that holds up to size hashes.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}

	hashes, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("hash cache: %w", err)
	}

	return &Cache{hashes: hashes}, nil
}

// Put records the hash as confirmed at the height.
func (c *Cache) Put(hash signature.Hash, height primitive.Height) {
	c.hashes.Add(hash, height)
}

// Contains reports whether the hash has been confirmed.
func (c *Cache) Contains(hash signature.Hash) bool {
	return c.hashes.Contains(hash)
}

// AnyHashExists reports whether any of the hashes has been confirmed.
func (c *Cache) AnyHashExists(hashes ...signature.Hash) bool {
	for _, hash := range hashes {
		if c.hashes.Contains(hash) {
			return true
		}
	}

	return false
}

// Height returns the height the hash was confirmed at.
func (c *Cache) Height(hash signature.Hash) (primitive.Height, bool) {
	v, exists := c.hashes.Peek(hash)
	if !exists {
		return 0, false
	}

	return v.(primitive.Height), true
}

// Remove forgets the hashes. This is used when blocks are rolled back.
func (c *Cache) Remove(hashes ...signature.Hash) {
	for _, hash := range hashes {
		c.hashes.Remove(hash)
	}
}

// Len returns the number of hashes held.
func (c *Cache) Len() int {
	return c.hashes.Len()
}

// Purge forgets every hash.
func (c *Cache) Purge() {
	c.hashes.Purge()
}
