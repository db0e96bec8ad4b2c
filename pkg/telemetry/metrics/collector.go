package metrics

import (
	"fmt"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in Callisto.
// It manages metric registration, collection, and provides a unified interface
// for recording metrics across all components.
//
// The collector is designed for high-performance with minimal overhead (<50µs per update):
//   - Pre-allocated metric instances
//   - Lock-free counters where possible
//   - Cardinality limits to prevent memory issues
//   - Custom histogram buckets optimized for compiler workloads
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Compile pipeline metrics
	compileMetrics *CompileMetrics

	// Cache metrics
	cacheMetrics *CacheMetrics

	// File watcher metrics
	watchMetrics *WatchMetrics

	// History recorder metrics
	historyMetrics *HistoryMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "callisto",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "callisto"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Optimized for compile stage latencies (10µs - 1s)
		cfg.DurationBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0}
	}
	if len(cfg.SourceSizeBuckets) == 0 {
		// Covers typical source sizes (64B - 256KB)
		cfg.SourceSizeBuckets = []float64{64, 256, 1024, 4096, 16384, 65536, 262144}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000), // Max 10K unique label sets
	}

	// Initialize metric subsystems
	c.compileMetrics = NewCompileMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)
	c.watchMetrics = NewWatchMetrics(cfg, registry)
	c.historyMetrics = NewHistoryMetrics(cfg, registry)

	return c
}

// RecordCompile records metrics for a completed compilation.
//
// Parameters:
//   - source: Source name (file path or "inline")
//   - status: Compilation status ("success", "error", "cached")
//   - duration: Total compilation duration
//   - sourceBytes: Size of the input source in bytes
//   - tokens: Number of tokens produced by the lexer (0 if unknown)
//
// Example:
//
//	collector.RecordCompile(
//		"examples/nested.lisp",
//		"success",
//		180*time.Microsecond,
//		412,
//		37,
//	)
func (c *Collector) RecordCompile(source, status string, duration time.Duration, sourceBytes, tokens int) {
	if !c.config.Enabled {
		return
	}

	// Check cardinality limit
	labelSet := fmt.Sprintf("compile:%s:%s", source, status)
	if !c.cardinalityLimiter.Allow(labelSet) {
		// Aggregate into "other" to prevent cardinality explosion
		source = "other"
	}

	c.compileMetrics.RecordCompile(source, status, duration, sourceBytes, tokens)
}

// RecordStage records the duration of a single pipeline stage.
//
// Parameters:
//   - stage: Pipeline stage name ("lex", "parse", "transform", "generate")
//   - duration: Stage duration
//
// Example:
//
//	collector.RecordStage("parse", 40*time.Microsecond)
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.compileMetrics.RecordStage(stage, duration)
}

// RecordCompileError records a compilation failure attributed to a stage.
//
// Parameters:
//   - stage: Pipeline stage that failed ("lex", "parse", "transform", "generate")
func (c *Collector) RecordCompileError(stage string) {
	if !c.config.Enabled {
		return
	}

	c.compileMetrics.RecordError(stage)
}

// RecordCacheHit records a cache hit.
//
// Parameters:
//   - cacheName: Name of the cache (e.g., "compile")
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
//
// Parameters:
//   - cacheName: Name of the cache
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordMiss(cacheName)
}

// UpdateCacheSize updates the current size of a cache.
//
// Parameters:
//   - cacheName: Name of the cache
//   - size: Current number of entries in the cache
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.UpdateSize(cacheName, size)
}

// RecordCacheEviction records a cache eviction.
//
// Parameters:
//   - cacheName: Name of the cache
func (c *Collector) RecordCacheEviction(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordEviction(cacheName)
}

// RecordWatchEvent records a filesystem event seen by the watcher.
//
// Parameters:
//   - op: Event operation ("create", "write", "remove", "rename", "chmod")
func (c *Collector) RecordWatchEvent(op string) {
	if !c.config.Enabled {
		return
	}

	c.watchMetrics.RecordEvent(op)
}

// RecordWatchDebounced records an event collapsed by the debouncer.
func (c *Collector) RecordWatchDebounced() {
	if !c.config.Enabled {
		return
	}

	c.watchMetrics.RecordDebounced()
}

// RecordRecompile records a watcher-triggered recompilation.
//
// Parameters:
//   - status: Recompilation status ("success", "error")
func (c *Collector) RecordRecompile(status string) {
	if !c.config.Enabled {
		return
	}

	c.watchMetrics.RecordRecompile(status)
}

// UpdateWatchedFiles updates the number of files currently watched.
func (c *Collector) UpdateWatchedFiles(count int) {
	if !c.config.Enabled {
		return
	}

	c.watchMetrics.UpdateWatchedFiles(count)
}

// RecordHistoryWrite records a history record write attempt.
//
// Parameters:
//   - status: Write status ("written", "dropped", "failed")
//   - duration: Write duration (ignored unless status is "written")
func (c *Collector) RecordHistoryWrite(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.historyMetrics.RecordWrite(status, duration)
}

// UpdateHistoryQueueDepth updates the async recorder queue depth.
func (c *Collector) UpdateHistoryQueueDepth(depth int) {
	if !c.config.Enabled {
		return
	}

	c.historyMetrics.UpdateQueueDepth(depth)
}

// RecordHistoryPruned records records deleted by a retention sweep.
//
// Parameters:
//   - count: Number of records deleted
func (c *Collector) RecordHistoryPruned(count int) {
	if !c.config.Enabled {
		return
	}

	c.historyMetrics.RecordPruned(count)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
