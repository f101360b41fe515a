package providers

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultValidatorEntries = 1024
	defaultValidatorTTL     = 6 * time.Hour
)

// ValidatorCache remembers the last seen cache validators per
// (provider, gameID). Each key has a single writer (the fetch path for that
// provider/game pair), so last-write-wins needs no extra coordination beyond
// the cache's own locking.
type ValidatorCache struct {
	entries *lru.LRU[string, Conditional]
}

// NewValidatorCache constructs a bounded, expiring validator cache.
func NewValidatorCache(maxEntries int, ttl time.Duration) *ValidatorCache {
	if maxEntries <= 0 {
		maxEntries = defaultValidatorEntries
	}
	if ttl <= 0 {
		ttl = defaultValidatorTTL
	}
	return &ValidatorCache{
		entries: lru.NewLRU[string, Conditional](maxEntries, nil, ttl),
	}
}

// Get returns the stored validators for a provider/game pair.
func (c *ValidatorCache) Get(provider, gameID string) Conditional {
	if c == nil {
		return Conditional{}
	}
	cond, _ := c.entries.Get(cacheKey(provider, gameID))
	return cond
}

// Put stores validators for a provider/game pair. Empty validators are dropped.
func (c *ValidatorCache) Put(provider, gameID string, cond Conditional) {
	if c == nil {
		return
	}
	if cond.ETag == "" && cond.LastModified == "" {
		return
	}
	c.entries.Add(cacheKey(provider, gameID), cond)
}

func cacheKey(provider, gameID string) string {
	return provider + "|" + gameID
}
