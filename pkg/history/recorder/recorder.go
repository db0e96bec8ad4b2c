// Package recorder provides asynchronous recording of compilation runs.
package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// ErrBufferFull is returned when the record buffer is full and a record
// had to be dropped.
var ErrBufferFull = errors.New("record buffer full")

// Config holds recorder configuration.
type Config struct {
	// Enabled controls whether records are written at all.
	Enabled bool

	// AsyncBuffer is the capacity of the record channel.
	AsyncBuffer int

	// WriteTimeout bounds a single storage write.
	WriteTimeout time.Duration

	// MaxFieldLength truncates source and output text before storage.
	// Hashes and byte counts always cover the full text.
	MaxFieldLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		AsyncBuffer:    1000,
		WriteTimeout:   5 * time.Second,
		MaxFieldLength: 65536,
	}
}

// Recorder writes compilation records to storage without blocking the
// compile path. Records are enqueued onto a buffered channel and written
// by a background worker. When the buffer is full the record is dropped
// rather than stalling a compilation.
type Recorder struct {
	storage history.Storage
	config  *Config
	metrics *metrics.Collector

	recordChan chan *history.Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewRecorder creates a recorder and starts its background worker.
// The metrics collector may be nil when metrics are disabled.
func NewRecorder(storage history.Storage, config *Config, collector *metrics.Collector) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if config.MaxFieldLength <= 0 {
		config.MaxFieldLength = 65536
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		metrics:    collector,
		recordChan: make(chan *history.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "history.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("recorder started",
		"enabled", config.Enabled,
		"buffer_size", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues a compilation record for asynchronous storage.
// Missing identity fields are filled in: ID, CreatedAt, the source hash,
// and byte counts. Returns immediately; a full buffer drops the record
// and returns a RecorderError wrapping ErrBufferFull.
func (r *Recorder) Record(ctx context.Context, rec *history.Record) error {
	if !r.config.Enabled {
		return nil
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.SourceSHA256 == "" {
		rec.SourceSHA256 = HashString(rec.Source)
	}
	if rec.SourceBytes == 0 {
		rec.SourceBytes = len(rec.Source)
	}
	if rec.OutputBytes == 0 {
		rec.OutputBytes = len(rec.Output)
	}
	rec.Source = truncateString(rec.Source, r.config.MaxFieldLength)
	rec.Output = truncateString(rec.Output, r.config.MaxFieldLength)

	select {
	case r.recordChan <- rec:
		if r.metrics != nil {
			r.metrics.UpdateHistoryQueueDepth(len(r.recordChan))
		}
		r.logger.Debug("record enqueued",
			"record_id", rec.ID,
			"status", rec.Status,
			"queue_depth", len(r.recordChan),
		)
		return nil
	case <-r.done:
		r.logger.Warn("recorder closed, dropping record", "record_id", rec.ID)
		if r.metrics != nil {
			r.metrics.RecordHistoryWrite("dropped", 0)
		}
		return history.NewRecorderError(rec.ID, context.Canceled)
	default:
		r.logger.Error("record buffer full, dropping record",
			"record_id", rec.ID,
			"buffer_size", r.config.AsyncBuffer,
		)
		if r.metrics != nil {
			r.metrics.RecordHistoryWrite("dropped", 0)
		}
		return history.NewRecorderError(rec.ID, ErrBufferFull)
	}
}

// worker drains the record channel until the recorder is closed, then
// drains any remaining buffered records before exiting.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordChan:
			r.writeRecord(rec)
		case <-r.done:
			for {
				select {
				case rec := <-r.recordChan:
					r.logger.Debug("draining record during shutdown", "record_id", rec.ID)
					r.writeRecord(rec)
				default:
					r.logger.Debug("worker drained, exiting")
					return
				}
			}
		}
	}
}

// writeRecord writes a single record with a bounded timeout.
func (r *Recorder) writeRecord(rec *history.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := r.storage.Store(ctx, rec)
	duration := time.Since(start)

	if err != nil {
		r.logger.Error("failed to write record",
			"record_id", rec.ID,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		if r.metrics != nil {
			r.metrics.RecordHistoryWrite("failed", 0)
		}
		return
	}

	r.logger.Info("compilation recorded",
		"record_id", rec.ID,
		"status", rec.Status,
		"duration_ms", duration.Milliseconds(),
	)
	if r.metrics != nil {
		r.metrics.RecordHistoryWrite("written", duration)
		r.metrics.UpdateHistoryQueueDepth(len(r.recordChan))
	}

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow record write",
			"record_id", rec.ID,
			"duration_ms", duration.Milliseconds(),
			"timeout_ms", r.config.WriteTimeout.Milliseconds(),
		)
	}
}

// Close stops the recorder, draining any buffered records first.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("closing recorder", "pending_records", len(r.recordChan))
		close(r.done)
		r.wg.Wait()
		r.logger.Info("recorder closed")
	})
	return nil
}

// truncateString caps s at max bytes.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
