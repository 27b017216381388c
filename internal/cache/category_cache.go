package cache

import (
	"strings"
	"sync"
)

// CategoryCache maps normalized expense descriptions to a suggested category
// label. Entries never expire; the cache only resets on process restart.
type CategoryCache struct {
	mu         sync.RWMutex
	entries    map[string]string
	maxEntries int
}

// NewCategoryCache creates an empty category cache.
func NewCategoryCache() *CategoryCache {
	return &CategoryCache{
		entries:    make(map[string]string),
		maxEntries: defaultMaxEntries,
	}
}

// NormalizeDescription produces the cache key for a free-text description.
func NormalizeDescription(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// Get returns the cached category for the normalized description, if any.
func (c *CategoryCache) Get(description string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	category, ok := c.entries[NormalizeDescription(description)]
	return category, ok
}

// Put stores the category for the normalized description, overwriting any
// previous value. When the cache is full an arbitrary entry is dropped to
// make room.
func (c *CategoryCache) Put(description, category string) {
	key := NormalizeDescription(description)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = category
}

// Len returns the number of cached suggestions.
func (c *CategoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
