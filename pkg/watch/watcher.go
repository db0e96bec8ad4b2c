package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// Config contains configuration for the file watcher.
type Config struct {
	// Path is the file or directory to watch.
	Path string

	// Recursive controls whether subdirectories are watched too.
	Recursive bool

	// DebounceInterval is the quiet period after the last event on a
	// file before OnChange fires. Editors often produce several events
	// per save.
	// Default: 500ms
	DebounceInterval time.Duration

	// Extensions is the list of file extensions to watch.
	// Default: ".lisp", ".sexpr"
	Extensions []string

	// MaxRetries is how many times to retry establishing the watch
	// after an error.
	// Default: 3
	MaxRetries int

	// RetryDelay is the initial delay between retries. The delay
	// doubles after each attempt.
	// Default: 1s
	RetryDelay time.Duration

	// OnChange is called with the path of a changed source file after
	// the debounce interval.
	OnChange func(path string)
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Recursive:        true,
		DebounceInterval: 500 * time.Millisecond,
		Extensions:       []string{".lisp", ".sexpr"},
		MaxRetries:       3,
		RetryDelay:       time.Second,
	}
}

// FileWatcher watches source files for changes and triggers recompiles.
// Bursts of filesystem events on the same file are collapsed into a
// single OnChange call.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	metrics  *metrics.Collector
	debounce *Debouncer

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileWatcher creates a file watcher. The metrics collector may be
// nil when metrics are disabled.
func NewFileWatcher(config *Config, collector *metrics.Collector) (*FileWatcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("watch path is empty")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 500 * time.Millisecond
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".lisp", ".sexpr"}
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		logger:   slog.Default().With("component", "watch"),
		config:   config,
		metrics:  collector,
		debounce: NewDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	return fw, nil
}

// Start establishes the watch and begins processing events in the
// background. Establishing the watch is retried with backoff up to
// Config.MaxRetries times. Cancelling ctx stops the watcher.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.addPathWithRetry(ctx); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		return err
	}

	if fw.metrics != nil {
		fw.metrics.UpdateWatchedFiles(len(fw.watcher.WatchList()))
	}

	fw.logger.Info("file watcher started",
		"path", fw.config.Path,
		"recursive", fw.config.Recursive,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	go fw.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
// The watcher cannot be restarted after Stop.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	fw.debounce.Stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

// IsRunning reports whether the event loop is active.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.running
}

// run is the event processing loop.
func (fw *FileWatcher) run(ctx context.Context) {
	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped (context cancelled)")
			return

		case <-fw.stopCh:
			fw.logger.Info("file watcher stopped")
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				fw.logger.Error("watcher events channel closed")
				return
			}

			// Directories created under a recursively watched tree
			// need their own watch
			if fw.config.Recursive && event.Op&fsnotify.Create == fsnotify.Create {
				if isDir, err := isDirectory(event.Name); err == nil && isDir {
					if err := fw.addDirectory(event.Name); err != nil {
						fw.logger.Error("failed to watch new directory",
							"path", event.Name,
							"error", err,
						)
					}
					continue
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)
			if fw.metrics != nil {
				fw.metrics.RecordWatchEvent(strings.ToLower(event.Op.String()))
			}

			path := event.Name
			op := event.Op.String()
			collapsed := fw.debounce.Trigger(path, func() {
				fw.logger.Info("source file changed",
					"path", path,
					"op", op,
				)
				if fw.config.OnChange != nil {
					fw.config.OnChange(path)
				}
			})
			if collapsed && fw.metrics != nil {
				fw.metrics.RecordWatchDebounced()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				fw.logger.Error("watcher errors channel closed")
				return
			}

			// Continue watching despite errors
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// addPathWithRetry establishes the watch, retrying with doubling delays.
func (fw *FileWatcher) addPathWithRetry(ctx context.Context) error {
	delay := fw.config.RetryDelay
	var lastErr error

	for attempt := 0; attempt <= fw.config.MaxRetries; attempt++ {
		if attempt > 0 {
			fw.logger.Warn("retrying watch setup",
				"attempt", attempt,
				"max_retries", fw.config.MaxRetries,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		if lastErr = fw.addPath(fw.config.Path); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to watch path after %d retries: %w", fw.config.MaxRetries, lastErr)
}

// addPath adds a file or directory to the watcher.
func (fw *FileWatcher) addPath(path string) error {
	isDir, err := isDirectory(path)
	if err != nil {
		return err
	}

	if isDir {
		if fw.config.Recursive {
			return fw.addDirectory(path)
		}
		return fw.watcher.Add(path)
	}

	return fw.watcher.Add(path)
}

// addDirectory adds a directory and all subdirectories to the watcher.
// Hidden directories are skipped; editors and VCS tools litter them
// with files the compiler should never see.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			fw.logger.Debug("watching directory", "path", path)
		}

		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a recompile.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	if !fw.hasValidExtension(ext) {
		return false
	}

	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	return true
}

// hasValidExtension checks if a file extension should be watched.
func (fw *FileWatcher) hasValidExtension(ext string) bool {
	for _, validExt := range fw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// isDirectory checks if path is a directory.
func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
