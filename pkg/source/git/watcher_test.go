package git

import (
	"context"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/config"
)

// TestNewPollWatcher tests watcher creation.
func TestNewPollWatcher(t *testing.T) {
	tempDir := t.TempDir()
	createTestRepo(t, tempDir)

	cfg := &config.GitSourceConfig{
		Repository: tempDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: tempDir,
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	onUpdate := func(commit *CommitInfo, sourceFiles []string) {}

	watcher := NewPollWatcher(repo, 1*time.Second, 5*time.Second, onUpdate)

	if watcher == nil {
		t.Fatal("expected non-nil watcher")
	}

	if watcher.pollInterval != 1*time.Second {
		t.Errorf("expected poll interval 1s, got %v", watcher.pollInterval)
	}

	if watcher.pollTimeout != 5*time.Second {
		t.Errorf("expected poll timeout 5s, got %v", watcher.pollTimeout)
	}

	if watcher.onUpdate == nil {
		t.Error("expected non-nil update callback")
	}

	if watcher.running {
		t.Error("expected watcher not running initially")
	}
}

// TestPollWatcher_StartStop tests watcher lifecycle.
func TestPollWatcher_StartStop(t *testing.T) {
	tempDir := t.TempDir()
	createTestRepo(t, tempDir)

	cfg := &config.GitSourceConfig{
		Repository: tempDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: tempDir,
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("failed to clone repository: %v", err)
	}

	onUpdate := func(commit *CommitInfo, sourceFiles []string) {}

	watcher := NewPollWatcher(repo, 1*time.Second, 5*time.Second, onUpdate)

	// Test start
	ctx := context.Background()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	if !watcher.IsRunning() {
		t.Error("expected watcher to be running after Start()")
	}

	if watcher.lastCommitSHA == "" {
		t.Error("expected lastCommitSHA to be set after Start()")
	}

	// Test double start (should fail)
	if err := watcher.Start(ctx); err == nil {
		t.Error("expected error when starting already running watcher")
	}

	// Test stop
	if err := watcher.Stop(); err != nil {
		t.Fatalf("failed to stop watcher: %v", err)
	}

	if watcher.IsRunning() {
		t.Error("expected watcher not running after Stop()")
	}

	// Test double stop (should fail)
	if err := watcher.Stop(); err == nil {
		t.Error("expected error when stopping already stopped watcher")
	}
}

// TestPollWatcher_StartWithoutClone tests that Start fails if repository not cloned.
func TestPollWatcher_StartWithoutClone(t *testing.T) {
	tempDir := t.TempDir()
	createTestRepo(t, tempDir)

	cfg := &config.GitSourceConfig{
		Repository: tempDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: t.TempDir(),
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	// Don't call Clone()

	onUpdate := func(commit *CommitInfo, sourceFiles []string) {}

	watcher := NewPollWatcher(repo, 1*time.Second, 5*time.Second, onUpdate)

	// Start should fail because repository not cloned
	ctx := context.Background()
	if err := watcher.Start(ctx); err == nil {
		t.Error("expected error when starting watcher with uncloned repository")
	}
}

// TestPollWatcher_LastCommitSHA tests commit SHA tracking.
func TestPollWatcher_LastCommitSHA(t *testing.T) {
	tempDir := t.TempDir()
	createTestRepo(t, tempDir)

	cfg := &config.GitSourceConfig{
		Repository: tempDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: tempDir,
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("failed to clone repository: %v", err)
	}

	onUpdate := func(commit *CommitInfo, sourceFiles []string) {}

	watcher := NewPollWatcher(repo, 1*time.Second, 5*time.Second, onUpdate)

	ctx := context.Background()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer func() { _ = watcher.Stop() }() // Intentionally ignoring error in test cleanup

	sha := watcher.LastCommitSHA()
	if sha == "" {
		t.Error("expected non-empty commit SHA")
	}

	if len(sha) != 40 { // Git SHA is 40 hex characters
		t.Errorf("expected 40-character SHA, got %d characters", len(sha))
	}
}

// TestPollWatcher_ContextCancellation tests watcher stops on context cancellation.
func TestPollWatcher_ContextCancellation(t *testing.T) {
	tempDir := t.TempDir()
	createTestRepo(t, tempDir)

	cfg := &config.GitSourceConfig{
		Repository: tempDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 100 * time.Millisecond,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: tempDir,
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("failed to clone repository: %v", err)
	}

	onUpdate := func(commit *CommitInfo, sourceFiles []string) {}

	watcher := NewPollWatcher(repo, 100*time.Millisecond, 5*time.Second, onUpdate)

	ctx, cancel := context.WithCancel(context.Background())

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	if !watcher.IsRunning() {
		t.Error("expected watcher to be running")
	}

	// Cancel context and give the poll loop time to exit.
	// The running flag tracks explicit Start/Stop calls, so it stays set.
	cancel()
	time.Sleep(200 * time.Millisecond)
}

// TestPollWatcher_hasSourceChanges tests source file filtering.
func TestPollWatcher_hasSourceChanges(t *testing.T) {
	tempDir := t.TempDir()
	createTestRepo(t, tempDir)

	cfg := &config.GitSourceConfig{
		Repository: tempDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: tempDir,
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	watcher := NewPollWatcher(repo, 1*time.Second, 5*time.Second, nil)

	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{
			name:  "lisp file",
			files: []string{"program.lisp"},
			want:  true,
		},
		{
			name:  "sexpr file",
			files: []string{"program.sexpr"},
			want:  true,
		},
		{
			name:  "mixed with lisp",
			files: []string{"README.md", "program.lisp", "config.json"},
			want:  true,
		},
		{
			name:  "no source files",
			files: []string{"README.md", "config.json", "script.sh"},
			want:  false,
		},
		{
			name:  "empty list",
			files: []string{},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := watcher.hasSourceChanges(tt.files)
			if got != tt.want {
				t.Errorf("hasSourceChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPollWatcher_NotifyOnSourceChange tests that source commits trigger the callback.
func TestPollWatcher_NotifyOnSourceChange(t *testing.T) {
	originDir := t.TempDir()
	origin := createTestRepo(t, originDir)

	cfg := &config.GitSourceConfig{
		Repository: originDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: t.TempDir(),
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("failed to clone repository: %v", err)
	}

	var gotCommit *CommitInfo
	var gotFiles []string
	onUpdate := func(commit *CommitInfo, sourceFiles []string) {
		gotCommit = commit
		gotFiles = sourceFiles
	}

	// Long poll interval so only ForceCheck drives the test
	watcher := NewPollWatcher(repo, 30*time.Second, 10*time.Second, onUpdate)

	ctx := context.Background()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer func() { _ = watcher.Stop() }() // Intentionally ignoring error in test cleanup

	// Push a new source file to the origin
	commitFile(t, origin, originDir, "util.lisp", "(add 1 2)", "add util")

	if err := watcher.ForceCheck(ctx); err != nil {
		t.Fatalf("ForceCheck() error = %v", err)
	}

	if gotCommit == nil {
		t.Fatal("expected update callback to be called")
	}
	if len(gotCommit.SHA) != 40 {
		t.Errorf("commit SHA = %v, want 40 characters", gotCommit.SHA)
	}
	if gotCommit.Message != "add util\n" && gotCommit.Message != "add util" {
		t.Errorf("commit message = %q, want %q", gotCommit.Message, "add util")
	}

	// program.lisp from the initial commit plus util.lisp
	if len(gotFiles) != 2 {
		t.Errorf("callback received %d files, want 2", len(gotFiles))
	}

	if watcher.LastCommitSHA() != gotCommit.SHA {
		t.Errorf("LastCommitSHA() = %v, want %v", watcher.LastCommitSHA(), gotCommit.SHA)
	}
}

// TestPollWatcher_SkipsNonSourceCommit tests that non-source commits advance
// the watermark without a notification.
func TestPollWatcher_SkipsNonSourceCommit(t *testing.T) {
	originDir := t.TempDir()
	origin := createTestRepo(t, originDir)

	cfg := &config.GitSourceConfig{
		Repository: originDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: t.TempDir(),
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("failed to clone repository: %v", err)
	}

	called := false
	onUpdate := func(commit *CommitInfo, sourceFiles []string) {
		called = true
	}

	watcher := NewPollWatcher(repo, 30*time.Second, 10*time.Second, onUpdate)

	ctx := context.Background()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer func() { _ = watcher.Stop() }() // Intentionally ignoring error in test cleanup

	initialSHA := watcher.LastCommitSHA()

	// Push a non-source change to the origin
	commitFile(t, origin, originDir, "README.md", "docs only", "update readme")

	if err := watcher.ForceCheck(ctx); err != nil {
		t.Fatalf("ForceCheck() error = %v", err)
	}

	if called {
		t.Error("expected no update callback for non-source commit")
	}

	// Watermark advances so the commit is not re-examined
	if watcher.LastCommitSHA() == initialSHA {
		t.Error("expected LastCommitSHA() to advance past skipped commit")
	}
}

// TestPollWatcher_ForceCheckNotRunning tests ForceCheck when watcher is not running.
func TestPollWatcher_ForceCheckNotRunning(t *testing.T) {
	tempDir := t.TempDir()
	createTestRepo(t, tempDir)

	cfg := &config.GitSourceConfig{
		Repository: tempDir,
		Branch:     "master",
		Path:       "",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: tempDir,
		},
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("failed to clone repository: %v", err)
	}

	onUpdate := func(commit *CommitInfo, sourceFiles []string) {}

	watcher := NewPollWatcher(repo, 1*time.Second, 5*time.Second, onUpdate)

	// Don't start watcher

	ctx := context.Background()
	if err := watcher.ForceCheck(ctx); err == nil {
		t.Error("expected error when calling ForceCheck() on stopped watcher")
	}
}
