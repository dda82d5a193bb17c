package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryCacheSize bounds the in-process cache when no size is configured.
const DefaultMemoryCacheSize = 1024

type item struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process CacheService. It holds at most size entries,
// evicting the least recently used, and the LRU drops anything older than
// maxTTL in the background.
type MemoryCache struct {
	lru *expirable.LRU[string, item]
	now func() time.Time
}

// NewMemoryCache builds a cache of at most size entries. A non-positive size
// falls back to DefaultMemoryCacheSize. maxTTL caps how long any entry is kept,
// whatever TTL Set is given; zero means entries only leave by eviction or their own TTL.
func NewMemoryCache(size int, maxTTL time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, item](size, nil, maxTTL),
		now: time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	it, ok := c.lru.Get(key)
	if !ok {
		return ErrCacheMiss
	}

	if c.now().After(it.expiresAt) {
		c.lru.Remove(key)
		return ErrCacheMiss
	}

	return json.Unmarshal(it.value, dest)
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.lru.Add(key, item{
		value:     data,
		expiresAt: c.now().Add(ttl),
	})
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len reports how many entries are held, expired ones included until the LRU sweeps them.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
