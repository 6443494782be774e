// Package cachemanager provides TTL caches used to memoize registry queries.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a keyed TTL cache.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	Len() int
}
