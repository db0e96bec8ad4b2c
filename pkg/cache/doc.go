// Package cache provides a content-addressed cache for compile outputs.
//
// Entries are keyed by the SHA-256 hash of the source text, so identical
// sources always map to the same entry regardless of file name or origin.
// A hit returns the previously generated output without rerunning the
// pipeline.
//
// # Backends
//
// Two backends implement the Cache interface:
//
//   - MemoryCache: in-process map with LRU eviction at a configured
//     capacity. Fast, but cold after a restart.
//   - SQLiteCache: persistent cache in a SQLite database. Survives
//     restarts; unbounded.
//
// New selects a backend from config.CacheConfig. A disabled cache
// config yields a nil Cache, which callers treat as a permanent miss.
//
// # Usage
//
//	c, err := cache.New(&cfg.Cache)
//	if err != nil {
//		return err
//	}
//
//	entry, err := c.Get(ctx, key)
//	if errors.Is(err, cache.ErrNotFound) {
//		// compile, then:
//		c.Put(ctx, &cache.Entry{Key: key, Output: output, TokenCount: n})
//	}
//
// Get bumps the entry's LastUsedAt and Hits, which feeds LRU eviction
// in the memory backend and usage reporting in both.
package cache
