package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mercator-hq/callisto/pkg/config"
)

// ErrNotFound is returned when a cache key has no entry.
var ErrNotFound = errors.New("cache entry not found")

// Entry is one cached compile result.
type Entry struct {
	// Key is the hex-encoded SHA-256 of the source text.
	Key string

	// Output is the generated code.
	Output string

	// TokenCount is how many tokens the source lexed into.
	TokenCount int

	// CreatedAt is when the entry was first cached.
	CreatedAt time.Time

	// LastUsedAt is when the entry was last returned by Get.
	LastUsedAt time.Time

	// Hits counts how many times the entry has been returned.
	Hits int64
}

// Cache stores compile outputs keyed by source hash.
// All implementations are safe for concurrent use.
type Cache interface {
	// Get returns the entry for key, bumping its usage stats.
	// Returns ErrNotFound when the key has no entry.
	Get(ctx context.Context, key string) (*Entry, error)

	// Put stores an entry, replacing any existing entry with the same key.
	Put(ctx context.Context, entry *Entry) error

	// Delete removes the entry for key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Purge removes all entries.
	Purge(ctx context.Context) error

	// Len returns the number of cached entries.
	Len(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// New creates a cache from configuration. Returns a nil cache when
// caching is disabled; callers treat a nil cache as a permanent miss.
func New(cfg *config.CacheConfig) (Cache, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "memory", "":
		return NewMemoryCache(cfg.MaxEntries), nil
	case "sqlite":
		return NewSQLiteCache(&SQLiteConfig{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}
