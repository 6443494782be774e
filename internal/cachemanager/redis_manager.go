package cachemanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zjrosen/roster/internal/log"
)

// RedisCacheManager implements CacheManager on a shared redis instance.
// Values are stored as JSON under "<prefix>:<key>".
type RedisCacheManager[K ~string, V any] struct {
	useCase           string
	prefix            string
	client            redis.UniversalClient
	defaultExpiration time.Duration
}

var _ CacheManager[string, int] = (*RedisCacheManager[string, int])(nil)

// NewRedisCacheManager creates a redis backed manager. The client is owned
// by the caller.
func NewRedisCacheManager[K ~string, V any](useCase string, client redis.UniversalClient, prefix string, defaultExpiration time.Duration) (*RedisCacheManager[K, V], error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = "roster"
	}
	return &RedisCacheManager[K, V]{
		useCase:           useCase,
		prefix:            prefix + ":" + useCase,
		client:            client,
		defaultExpiration: defaultExpiration,
	}, nil
}

func (c *RedisCacheManager[K, V]) key(k K) string {
	return c.prefix + ":" + string(k)
}

// Get retrieves an item from the cache by its key. Redis failures are
// logged and reported as a miss.
func (c *RedisCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zeroValue V

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.ErrorErr(log.CatCache, "redis get failed", err, "cache", c.useCase, "key", key)
		}
		return zeroValue, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		log.ErrorErr(log.CatCache, "decoding cached value", err, "cache", c.useCase, "key", key)
		return zeroValue, false
	}

	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, true
}

// Set stores value under key for ttl. A zero ttl uses the manager default.
func (c *RedisCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultExpiration
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.ErrorErr(log.CatCache, "encoding cache value", err, "cache", c.useCase, "key", key)
		return
	}
	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		log.ErrorErr(log.CatCache, "redis set failed", err, "cache", c.useCase, "key", key)
	}
}

// Delete removes the given keys.
func (c *RedisCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("deleting cache keys: %w", err)
	}
	return nil
}

// Flush removes every item under the manager's prefix.
func (c *RedisCacheManager[K, V]) Flush(ctx context.Context) error {
	keys, err := c.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("flushing cache: %w", err)
		}
	}
	log.Debug(log.CatCache, "cache flushed", "cache", c.useCase, "keys", len(keys))
	return nil
}

// Len returns the number of keys under the manager's prefix.
func (c *RedisCacheManager[K, V]) Len() int {
	keys, err := c.scan(context.Background())
	if err != nil {
		log.ErrorErr(log.CatCache, "redis scan failed", err, "cache", c.useCase)
		return 0
	}
	return len(keys)
}

func (c *RedisCacheManager[K, V]) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning cache keys: %w", err)
	}
	return keys, nil
}
