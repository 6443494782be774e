package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type dispatchEntry struct {
	Key   string
	Found bool
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, dispatchEntry]("dispatch", DefaultExpiration, DefaultCleanupInterval)
	entry := dispatchEntry{Key: "app.BookController", Found: true}
	cache.Set(context.Background(), "build-1|/book", entry, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "build-1|/book")
	require.True(t, ok)
	require.Equal(t, entry, got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("dispatch", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "nope")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("dispatch", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("key", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "key")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_ZeroTTLUsesDefault(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("dispatch", time.Hour, DefaultCleanupInterval)
	cache.Set(context.Background(), "key", "value", 0)

	_, expiration, found := cache.cache.GetWithExpiration("key")
	require.True(t, found)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiration, time.Minute)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("dispatch", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	cache.Set(ctx, "c", "3", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx))
	require.Equal(t, 3, cache.Len())

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Flush(ctx))
	require.Equal(t, 0, cache.Len())
}
