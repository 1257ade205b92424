package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache is an in-process TTL cache backed by ristretto. It satisfies
// domain.KeyValueCache: reads that fail are misses and writes that are
// rejected are dropped, so callers always fall back to recomputing.
type Cache struct {
	c *ristretto.Cache
}

// New creates a cache sized for roughly maxEntries values.
func New(maxEntries int64) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	c.c.SetWithTTL(key, value, 1, ttl)
	// Ristretto applies writes asynchronously; waiting here keeps the
	// cache read-your-writes, which the advisory contract relies on in
	// the recall hot path (set then immediately servable).
	c.c.Wait()
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
