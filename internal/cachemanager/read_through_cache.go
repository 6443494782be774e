package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache computes values with fn on a miss and stores them.
// When skip is set every call goes straight to fn.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache CacheManager[K, V]
	fn    func(ctx context.Context, input I) (V, error)
	skip  bool
}

func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	skip bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache: cache,
		fn:    fn,
		skip:  skip,
	}
}

func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.skip {
		return r.fn(ctx, input)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}

// Invalidate drops every cached value.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context) error {
	return r.cache.Flush(ctx)
}
