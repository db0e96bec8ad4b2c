package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-memory cache with LRU eviction. When the cache
// reaches its capacity, the least recently used entry is evicted to
// make room.
type MemoryCache struct {
	// entries maps source hashes to cached results
	entries map[string]*Entry

	// maxEntries is the maximum number of entries (0 = unlimited)
	maxEntries int

	// mu protects concurrent access to the cache
	mu sync.RWMutex
}

// NewMemoryCache creates an in-memory cache holding at most maxEntries
// entries. A maxEntries of 0 means unlimited.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]*Entry),
		maxEntries: maxEntries,
	}
}

// Get returns the cached entry for key and bumps its usage stats.
func (c *MemoryCache) Get(ctx context.Context, key string) (*Entry, error) {
	// Fast-path miss check with the read lock
	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	// Update access time and hit count with the write lock
	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check, the entry might have been deleted between locks
	entry, ok := c.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	entry.LastUsedAt = time.Now()
	entry.Hits++

	result := *entry
	return &result, nil
}

// Put stores an entry, replacing any existing entry with the same key.
// If the cache is full, the least recently used entry is evicted first.
func (c *MemoryCache) Put(ctx context.Context, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict only when the key is new, a replacement reuses its slot
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[entry.Key]; !exists {
			c.evictLRU()
		}
	}

	stored := *entry
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.LastUsedAt.IsZero() {
		stored.LastUsedAt = now
	}

	c.entries[entry.Key] = &stored
	return nil
}

// Delete removes the entry for key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Purge removes all entries.
func (c *MemoryCache) Purge(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	return nil
}

// Len returns the current number of entries.
func (c *MemoryCache) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries), nil
}

// Close releases the cache. The cache must not be used after Close.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	return nil
}

// evictLRU evicts the least recently used entry.
// Must be called with the write lock held.
func (c *MemoryCache) evictLRU() {
	if len(c.entries) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.LastUsedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastUsedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
