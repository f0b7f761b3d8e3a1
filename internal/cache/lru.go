// Package cache provides explanation-cache backends: an in-process LRU
// (default) and an optional Redis-backed implementation.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pgx-risk-engine/internal/domain"
)

// LRUCache is an in-process explanation cache bounded by entry count.
type LRUCache struct {
	entries *lru.Cache[string, domain.ExplanationBundle]
}

// NewLRUCache creates a new in-process explanation cache.
func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = 256
	}
	entries, err := lru.New[string, domain.ExplanationBundle](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries}, nil
}

// Get retrieves a cached explanation bundle.
func (c *LRUCache) Get(_ context.Context, key string) (domain.ExplanationBundle, bool) {
	return c.entries.Get(key)
}

// Set stores an explanation bundle.
func (c *LRUCache) Set(_ context.Context, key string, bundle domain.ExplanationBundle) error {
	c.entries.Add(key, bundle)
	return nil
}
