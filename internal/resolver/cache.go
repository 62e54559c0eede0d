package resolver

import (
	"sync"
	"time"
)

// memoCache memoizes successful name resolutions. Keys are the verbatim raw
// input strings; case and whitespace are significant, so no normalization
// happens before lookup. The cache is bounded: at capacity the oldest entry
// is evicted. Failures are never stored.
type memoCache struct {
	mu      sync.RWMutex
	entries map[string]memoEntry
	maxSize int
}

type memoEntry struct {
	identifier string
	storedAt   time.Time
}

func newMemoCache(maxSize int) *memoCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &memoCache{
		entries: make(map[string]memoEntry),
		maxSize: maxSize,
	}
}

func (c *memoCache) get(rawName string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[rawName]
	return entry.identifier, ok
}

// set stores a resolution. Last write wins: concurrent writers compute the
// same mapping for the same key, so overwrites are harmless.
func (c *memoCache) set(rawName, identifier string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[rawName]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[rawName] = memoEntry{
		identifier: identifier,
		storedAt:   time.Now(),
	}
}

func (c *memoCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldestLocked removes the oldest entry (must hold write lock)
func (c *memoCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.storedAt
			first = false
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
