package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter"
)

// MemoryCache is the in-process fallback used when redis is not
// configured. Backed by an otter cache with per-entry TTL and bounded
// capacity, so a misbehaving caller cannot grow it without limit.
type MemoryCache struct {
	cache otter.CacheWithVariableTTL[string, string]
}

func NewMemoryCache(maxEntries int) (*MemoryCache, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	cache, err := otter.MustBuilder[string, string](maxEntries).
		Cost(func(_ string, _ string) uint32 { return 1 }).
		WithVariableTTL().
		Build()
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: cache}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	return c.cache.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.cache.Set(key, value, ttl)
}

func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

func (c *MemoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, factory func(ctx context.Context) (string, error)) (string, error) {
	return getOrSet(ctx, c, key, ttl, factory)
}

func (c *MemoryCache) Close() {
	c.cache.Close()
}
