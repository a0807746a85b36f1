package cache

import (
	"context"
	"time"
)

// Cache is the generic key-value capability consumed by the rest of the
// application. Values are opaque strings; callers serialize as needed.
// Failures are treated as misses: the cache is a performance layer, never
// a correctness dependency.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
	GetOrSet(ctx context.Context, key string, ttl time.Duration, factory func(ctx context.Context) (string, error)) (string, error)
}

// getOrSet implements the shared read-through flow on top of Get/Set.
func getOrSet(ctx context.Context, c Cache, key string, ttl time.Duration, factory func(ctx context.Context) (string, error)) (string, error) {
	if val, ok := c.Get(ctx, key); ok {
		return val, nil
	}
	val, err := factory(ctx)
	if err != nil {
		return "", err
	}
	c.Set(ctx, key, val, ttl)
	return val, nil
}
