package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lotline/backend/internal/domain/stock"
)

type rollupEntry struct {
	result    stock.RollupResult
	expiresAt time.Time
}

// InMemoryRollupCache is a process-local rollup cache for single-instance
// deployments and tests.
type InMemoryRollupCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]rollupEntry
}

// NewInMemoryRollupCache creates a new in-memory rollup cache
func NewInMemoryRollupCache(ttl time.Duration) *InMemoryRollupCache {
	return &InMemoryRollupCache{
		ttl:     ttl,
		entries: make(map[string]rollupEntry),
	}
}

// Get fetches a cached rollup result. Returns false on miss or expiry.
func (c *InMemoryRollupCache) Get(ctx context.Context, key string) (*stock.RollupResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	result := e.result
	return &result, true
}

// Set stores a rollup result with the configured TTL. Keys are content
// hashes, so every data mutation produces a new key; expired entries are
// dropped on each store to keep the map bounded.
func (c *InMemoryRollupCache) Set(ctx context.Context, key string, result *stock.RollupResult) {
	if result == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked(now)
	c.entries[key] = rollupEntry{
		result:    *result,
		expiresAt: now.Add(c.ttl),
	}
}

// Purge drops entries that have expired
func (c *InMemoryRollupCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked(time.Now())
}

// Size returns the number of stored entries, expired or not
func (c *InMemoryRollupCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryRollupCache) purgeLocked(now time.Time) {
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
