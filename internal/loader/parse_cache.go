package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ParseCache memoizes parsed units by resource path and content hash, so an
// unchanged file is not parsed again on reload. Failed parses are not cached.
type ParseCache struct {
	units  *lru.Cache[string, *Unit]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewParseCache creates a cache holding at most size units.
func NewParseCache(size int) (*ParseCache, error) {
	units, err := lru.New[string, *Unit](size)
	if err != nil {
		return nil, fmt.Errorf("creating parse cache: %w", err)
	}
	return &ParseCache{units: units}, nil
}

// Parse returns the cached unit for the resource's current content, parsing
// it on a miss.
func (c *ParseCache) Parse(ctx context.Context, res Resource) (*Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := res.Read()
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(src)
	key := res.Path + "@" + hex.EncodeToString(sum[:])
	if unit, ok := c.units.Get(key); ok {
		c.hits.Add(1)
		return unit, nil
	}

	unit, err := parseSource(ctx, res.Path, src)
	if err != nil {
		return nil, err
	}
	c.misses.Add(1)
	c.units.Add(key, unit)
	return unit, nil
}

// Stats returns the hit and miss counts.
func (c *ParseCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached units.
func (c *ParseCache) Len() int { return c.units.Len() }

// Purge drops every cached unit.
func (c *ParseCache) Purge() { c.units.Purge() }
