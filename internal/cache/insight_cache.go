// Package cache provides the process-local caches backing the AI advisory
// endpoints: a per-user insight cache with a fixed TTL and data fingerprint,
// and a description-to-category cache for expense categorization.
//
// Both caches are in-memory only. State is lost on process restart and is
// never shared across processes.
package cache

import (
	"sync"
	"time"
)

// InsightTTL is how long a cached insight payload is trusted.
const InsightTTL = 5 * time.Minute

// defaultMaxEntries caps the insight cache size. Expired entries are swept
// on write once the cap is reached, then the oldest entry is dropped.
const defaultMaxEntries = 10000

// InsightEntry holds a cached advisory payload for one user.
type InsightEntry struct {
	Payload     any
	WrittenAt   time.Time
	Fingerprint string
}

// InsightCache maps a user ID to the most recent advisory payload generated
// for them. Entries are overwritten unconditionally on Put; a stale entry is
// never returned by validity checks but stays in the map until overwritten
// or swept.
type InsightCache struct {
	mu         sync.RWMutex
	entries    map[uint]InsightEntry
	maxEntries int
	now        func() time.Time
}

// NewInsightCache creates an insight cache. A nil clock defaults to time.Now;
// tests inject a fake clock to exercise TTL boundaries.
func NewInsightCache(clock func() time.Time) *InsightCache {
	if clock == nil {
		clock = time.Now
	}
	return &InsightCache{
		entries:    make(map[uint]InsightEntry),
		maxEntries: defaultMaxEntries,
		now:        clock,
	}
}

// Get returns the cache entry for the user, if any. Callers must gate the
// result with IsValid; Get itself performs no freshness check.
func (c *InsightCache) Get(userID uint) (InsightEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[userID]
	return entry, ok
}

// Put unconditionally overwrites the user's entry with the given payload and
// fingerprint, stamped with the current time.
func (c *InsightCache) Put(userID uint, payload any, fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[userID]; !exists && len(c.entries) >= c.maxEntries {
		c.sweepLocked()
	}

	c.entries[userID] = InsightEntry{
		Payload:     payload,
		WrittenAt:   c.now(),
		Fingerprint: fingerprint,
	}
}

// IsValid reports whether the user's entry exists, is within the TTL, and was
// written for the same data fingerprint. Callers must recompute the
// fingerprint from current data on every request.
func (c *InsightCache) IsValid(userID uint, currentFingerprint string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[userID]
	if !ok {
		return false
	}
	if c.now().Sub(entry.WrittenAt) > InsightTTL {
		return false
	}
	return entry.Fingerprint == currentFingerprint
}

// Remaining returns how long the user's entry stays valid, or zero when the
// entry is absent or already expired.
func (c *InsightCache) Remaining(userID uint) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[userID]
	if !ok {
		return 0
	}
	remaining := InsightTTL - c.now().Sub(entry.WrittenAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Len returns the number of entries currently held, expired or not.
func (c *InsightCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// sweepLocked drops expired entries and, if none were expired, the oldest
// entry. Caller must hold the write lock.
func (c *InsightCache) sweepLocked() {
	now := c.now()
	removed := false
	for id, entry := range c.entries {
		if now.Sub(entry.WrittenAt) > InsightTTL {
			delete(c.entries, id)
			removed = true
		}
	}
	if removed {
		return
	}

	var oldestID uint
	var oldest time.Time
	first := true
	for id, entry := range c.entries {
		if first || entry.WrittenAt.Before(oldest) {
			oldestID = id
			oldest = entry.WrittenAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestID)
	}
}
