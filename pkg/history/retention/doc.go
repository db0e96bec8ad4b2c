// Package retention deletes history records older than a configured
// retention period.
//
// # Retention Period
//
// Records older than Config.RetentionDays are eligible for deletion.
// A retention of zero (or negative) keeps records forever; Prune
// becomes a no-op.
//
// # Scheduling
//
// Pruning runs automatically on a standard cron schedule:
//
//	"0 3 * * *"    every day at 03:00
//	"0 * * * *"    every hour
//	"0 3 * * 0"    every Sunday at 03:00
//
// An empty schedule disables the scheduler. Prune can always be called
// directly regardless of scheduling.
//
// # Batching
//
// Deletes run oldest first in batches of Config.BatchSize so a large
// backlog is removed incrementally rather than in one long-running
// statement.
package retention
