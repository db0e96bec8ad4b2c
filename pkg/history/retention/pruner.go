// Package retention prunes old history records on a schedule.
package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// Config holds retention configuration.
type Config struct {
	// RetentionDays is how long records are kept. Zero or negative
	// disables pruning entirely.
	RetentionDays int

	// PruneSchedule is a cron expression for automatic pruning.
	// Empty disables the scheduler; Prune can still be called manually.
	PruneSchedule string

	// BatchSize caps how many records a single delete removes.
	BatchSize int
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
		BatchSize:     1000,
	}
}

// Pruner deletes history records older than the retention period.
// Deletion runs in batches so a large backlog never holds a long
// transaction open.
type Pruner struct {
	storage   history.Storage
	config    *Config
	metrics   *metrics.Collector
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a pruner. The metrics collector may be nil when
// metrics are disabled.
func NewPruner(storage history.Storage, config *Config, collector *metrics.Collector) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 1000
	}

	p := &Pruner{
		storage: storage,
		config:  config,
		metrics: collector,
		logger:  slog.Default().With("component", "history.retention"),
	}
	p.scheduler = NewScheduler(p)

	return p
}

// Prune deletes all records older than the retention period and returns
// how many were removed. Records are deleted oldest first in batches of
// Config.BatchSize.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, skipping prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	query := &history.Query{
		To:    &cutoff,
		Limit: p.config.BatchSize,
	}

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, history.NewRetentionError(p.config.RetentionDays, err)
		}

		deleted, err := p.storage.Delete(ctx, query)
		if err != nil {
			return total, history.NewRetentionError(p.config.RetentionDays, err)
		}

		total += deleted
		if deleted < int64(p.config.BatchSize) {
			break
		}
	}

	if total > 0 {
		if p.metrics != nil {
			p.metrics.RecordHistoryPruned(int(total))
		}
		p.logger.Info("pruned old records",
			"deleted", total,
			"retention_days", p.config.RetentionDays,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	} else {
		p.logger.Debug("no records to prune",
			"retention_days", p.config.RetentionDays,
		)
	}

	return total, nil
}

// Start begins scheduled pruning per Config.PruneSchedule.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop halts scheduled pruning, waiting for a running prune to finish.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the next scheduled prune time, or nil when the
// scheduler is not running.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
