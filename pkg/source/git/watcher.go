package git

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// UpdateCallback is called when source files change in the repository.
// It receives the new HEAD commit and the absolute paths of all source
// files currently present in the repository's source directory.
type UpdateCallback func(commit *CommitInfo, sourceFiles []string)

// PollWatcher monitors a Git repository for changes and triggers recompiles.
// It uses polling to periodically check for new commits and notifies the
// callback only when source files (.lisp, .sexpr) are changed. Commits that
// touch only other files advance the watermark without a notification.
//
// Basic usage:
//
//	watcher := git.NewPollWatcher(repo, 30*time.Second, 10*time.Second, onUpdate)
//	if err := watcher.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer watcher.Stop()
type PollWatcher struct {
	repo          *Repository
	pollInterval  time.Duration
	pollTimeout   time.Duration
	stopCh        chan struct{}
	onUpdate      UpdateCallback
	lastCommitSHA string
	mu            sync.RWMutex
	running       bool
	logger        *slog.Logger
}

// NewPollWatcher creates a new change watcher for the given repository.
// The watcher will poll for changes at the specified interval and use
// the timeout for Git operations. The onUpdate callback is called when
// source files change.
func NewPollWatcher(repo *Repository, interval, timeout time.Duration, onUpdate UpdateCallback) *PollWatcher {
	return &PollWatcher{
		repo:         repo,
		pollInterval: interval,
		pollTimeout:  timeout,
		onUpdate:     onUpdate,
		stopCh:       make(chan struct{}),
		logger:       slog.Default(),
	}
}

// SetLogger sets a custom logger for the watcher.
func (w *PollWatcher) SetLogger(logger *slog.Logger) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logger = logger
}

// Start begins watching for changes in the repository.
// It starts a background goroutine that polls for changes at the configured interval.
// The context is used for cancellation - when the context is cancelled, the watcher stops.
// Returns an error if the watcher is already running or if the initial commit cannot be read.
func (w *PollWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}

	// Get initial commit SHA
	commit, err := w.repo.HeadCommit()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	w.lastCommitSHA = commit.SHA
	w.running = true
	w.mu.Unlock()

	w.logger.Info("poll watcher started",
		"poll_interval", w.pollInterval,
		"initial_commit", w.lastCommitSHA[:8])

	// Start polling loop in background
	go w.pollLoop(ctx)

	return nil
}

// Stop gracefully stops the watcher.
// It signals the polling loop to stop.
// Returns an error if the watcher is not running.
func (w *PollWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return fmt.Errorf("watcher not running")
	}

	w.logger.Info("stopping poll watcher")
	close(w.stopCh)
	w.running = false

	return nil
}

// IsRunning returns true if the watcher is currently running.
func (w *PollWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// pollLoop runs the main change detection loop.
// It checks for changes at regular intervals and notifies when needed.
func (w *PollWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("poll watcher stopped by context cancellation")
			return
		case <-w.stopCh:
			w.logger.Info("poll watcher stopped by Stop()")
			return
		case <-ticker.C:
			if err := w.checkForChanges(ctx); err != nil {
				w.logger.Error("error checking for changes",
					"error", err)
			}
		}
	}
}

// checkForChanges pulls from the remote and notifies if source files changed.
// Commits touching only non-source files advance the watermark silently so
// the same commit is not re-examined on every poll.
func (w *PollWatcher) checkForChanges(ctx context.Context) error {
	// Create timeout context for pull operation
	pullCtx, cancel := context.WithTimeout(ctx, w.pollTimeout)
	defer cancel()

	result, err := w.repo.Pull(pullCtx)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}

	// No changes
	if !result.HadChanges {
		return nil
	}

	w.logger.Info("detected changes",
		"from_sha", result.FromSHA[:8],
		"to_sha", result.ToSHA[:8],
		"changed_files", len(result.ChangedFiles))

	if !w.hasSourceChanges(result.ChangedFiles) {
		w.logger.Info("non-source files changed, skipping update",
			"changed_files", result.ChangedFiles)
		w.mu.Lock()
		w.lastCommitSHA = result.ToSHA
		w.mu.Unlock()
		return nil
	}

	return w.notifyUpdate(result.ToSHA)
}

// hasSourceChanges checks if any source files changed.
func (w *PollWatcher) hasSourceChanges(files []string) bool {
	for _, file := range files {
		if isSourceFile(file) {
			return true
		}
	}
	return false
}

// notifyUpdate delivers the new commit and current source listing to the callback.
func (w *PollWatcher) notifyUpdate(newSHA string) error {
	commit, err := w.repo.HeadCommit()
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}

	files, err := w.repo.ListSourceFiles()
	if err != nil {
		return fmt.Errorf("failed to list source files: %w", err)
	}

	w.mu.Lock()
	oldSHA := w.lastCommitSHA
	w.lastCommitSHA = newSHA
	w.mu.Unlock()

	w.logger.Info("source update",
		"from_sha", oldSHA[:8],
		"to_sha", newSHA[:8],
		"source_files", len(files))

	if w.onUpdate != nil {
		w.onUpdate(commit, files)
	}

	return nil
}

// ForceCheck immediately checks for changes without waiting for the next poll interval.
// This is useful for CLI commands that want to trigger an immediate sync.
func (w *PollWatcher) ForceCheck(ctx context.Context) error {
	w.mu.RLock()
	if !w.running {
		w.mu.RUnlock()
		return fmt.Errorf("watcher not running")
	}
	w.mu.RUnlock()

	w.logger.Info("force checking for changes")
	return w.checkForChanges(ctx)
}

// LastCommitSHA returns the SHA of the last observed commit.
func (w *PollWatcher) LastCommitSHA() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastCommitSHA
}
