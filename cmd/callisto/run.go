package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cache"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/driver"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/history/recorder"
	"mercator-hq/callisto/pkg/history/retention"
	"mercator-hq/callisto/pkg/server"
	"mercator-hq/callisto/pkg/source/git"
	"mercator-hq/callisto/pkg/telemetry"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/watch"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Callisto compile service",
	Long: `Start the Callisto compile service with the specified configuration.

The service listens on the configured address and compiles programs
submitted over HTTP, recording every compilation in the history ledger.
It can also watch a local directory or poll a Git repository and
recompile source files as they change.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override listen address
  callisto run --listen 0.0.0.0:8484

  # Validate config without starting the service
  callisto run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the service")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, fromFile, err := loadCommandConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	tel, err := telemetry.New(&cfg.Telemetry, Version, GitCommit, BuildDate)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	slog.SetDefault(tel.Logger().Slog())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg, fromFile)

	// A nil collector keeps /metrics unmounted and skips instrumentation
	// in every component.
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = tel.Metrics()
	}

	// History ledger
	var store history.Storage
	var rec *recorder.Recorder
	if cfg.History.Enabled {
		slog.Info("initializing history ledger", "backend", cfg.History.Backend)

		store, err = openHistoryStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()

		recCfg := recorder.DefaultConfig()
		if cfg.History.Recorder.AsyncBuffer > 0 {
			recCfg.AsyncBuffer = cfg.History.Recorder.AsyncBuffer
		}
		if cfg.History.Recorder.WriteTimeout > 0 {
			recCfg.WriteTimeout = cfg.History.Recorder.WriteTimeout
		}
		rec = recorder.NewRecorder(store, recCfg, collector)
		defer rec.Close()

		// Start the retention scheduler if a schedule is configured
		if cfg.History.Retention.PruneSchedule != "" {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.History.Retention.Days,
				PruneSchedule: cfg.History.Retention.PruneSchedule,
				BatchSize:     cfg.History.Retention.BatchSize,
			}, collector)
			if err := pruner.Start(context.Background()); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("history retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ History ledger initialized")
	}

	// Output cache
	c, err := cache.New(&cfg.Cache)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if c != nil {
		defer c.Close()
		fmt.Printf("✓ Cache initialized (%s)\n", cfg.Cache.Backend)
	}

	drv := driver.New(c, rec, collector, tel.Tracer(), slog.Default())

	// Source watchers keep running while the server blocks below;
	// cancelling watchCtx stops them on shutdown.
	watchCtx, stopWatchers := context.WithCancel(context.Background())
	defer stopWatchers()

	switch {
	case cfg.Source.Mode == "git":
		if err := startGitSource(watchCtx, cfg, drv); err != nil {
			return cli.NewCommandError("run", err)
		}
	case cfg.Watch.Enabled:
		if err := startLocalWatch(watchCtx, cfg, drv, collector); err != nil {
			return cli.NewCommandError("run", err)
		}
	}

	srv := server.NewServer(cfg, drv, store, c, collector)
	srv.SetVersionInfo(Version, GitCommit, BuildDate)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Compile endpoint: http://%s/v1/compile\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		path := cfg.Telemetry.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until SIGINT, SIGTERM, or a listener error. Graceful
	// shutdown runs inside Start with the configured timeout.
	if err := srv.Start(context.Background()); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// startLocalWatch watches the configured directory and recompiles source
// files as they change. The watcher stops when ctx is cancelled.
func startLocalWatch(ctx context.Context, cfg *config.Config, drv *driver.Driver, collector *metrics.Collector) error {
	slog.Info("starting file watcher", "path", cfg.Watch.Path)

	watchCfg := watch.DefaultConfig()
	watchCfg.Path = cfg.Watch.Path
	watchCfg.Recursive = cfg.Watch.Recursive
	watchCfg.Extensions = cfg.Compiler.Extensions
	if cfg.Watch.DebounceInterval > 0 {
		watchCfg.DebounceInterval = cfg.Watch.DebounceInterval
	}
	if cfg.Watch.MaxRetries > 0 {
		watchCfg.MaxRetries = cfg.Watch.MaxRetries
	}
	if cfg.Watch.RetryDelay > 0 {
		watchCfg.RetryDelay = cfg.Watch.RetryDelay
	}
	watchCfg.OnChange = func(path string) {
		compileSourceFile(ctx, drv, path, path, history.TriggerWatch)
	}

	fw, err := watch.NewFileWatcher(watchCfg, collector)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Printf("✓ Watching %s\n", cfg.Watch.Path)
	return nil
}

// startGitSource clones the configured repository, compiles the source
// files it contains, and begins polling for new commits when polling is
// enabled. The poller stops when ctx is cancelled.
func startGitSource(ctx context.Context, cfg *config.Config, drv *driver.Driver) error {
	gitCfg := &cfg.Source.Git

	slog.Info("initializing git source",
		"repository", gitCfg.Repository,
		"branch", gitCfg.Branch,
	)

	repo, err := git.NewRepository(gitCfg)
	if err != nil {
		return fmt.Errorf("failed to configure git source: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := repo.Clone(cloneCtx); err != nil {
		return fmt.Errorf("failed to clone %s: %w", gitCfg.Repository, err)
	}

	head, err := repo.HeadCommit()
	if err != nil {
		return fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	fmt.Printf("✓ Source repository cloned (%s @ %.8s)\n", gitCfg.Branch, head.SHA)

	// Ledger records carry repo-relative names so they stay stable
	// across hosts and clone locations.
	compileRepoFiles := func(files []string) {
		for _, file := range files {
			name := file
			if rel, err := filepath.Rel(repo.SourcePath(), file); err == nil {
				name = rel
			}
			compileSourceFile(ctx, drv, file, name, history.TriggerGit)
		}
	}

	files, err := repo.ListSourceFiles()
	if err != nil {
		return fmt.Errorf("failed to list source files: %w", err)
	}
	compileRepoFiles(files)
	if len(files) > 0 {
		fmt.Printf("✓ Compiled %d source files from repository\n", len(files))
	}

	if gitCfg.Poll.Enabled {
		pw := git.NewPollWatcher(repo, gitCfg.Poll.Interval, gitCfg.Poll.Timeout,
			func(commit *git.CommitInfo, files []string) {
				slog.Info("repository updated",
					"commit", commit.SHA,
					"source_files", len(files),
				)
				// The cache turns unchanged files into cheap hits, so
				// recompiling the full listing is fine.
				compileRepoFiles(files)
			})
		if err := pw.Start(ctx); err != nil {
			return fmt.Errorf("failed to start repository poller: %w", err)
		}
		fmt.Printf("✓ Polling repository every %s\n", gitCfg.Poll.Interval)
	}

	return nil
}

// compileSourceFile compiles one watched or synced source file. Outputs
// land in the history ledger rather than on disk; the service is the
// system of record.
func compileSourceFile(ctx context.Context, drv *driver.Driver, path, name, trigger string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read source file", "file", path, "error", err)
		return
	}

	result, err := drv.Compile(ctx, driver.Input{
		Source:   string(data),
		FileName: name,
		Trigger:  trigger,
	})
	if err != nil {
		slog.Error("compilation failed", "file", name, "error", err)
		return
	}

	slog.Info("compiled source file",
		"file", name,
		"trigger", trigger,
		"tokens", result.TokenCount,
		"cache_hit", result.CacheHit,
		"duration", result.Duration,
	)
}

func printBanner(cfg *config.Config, fromFile bool) {
	fmt.Printf("Callisto v%s\n", Version)
	if fromFile {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	} else {
		fmt.Println("No config file found, using defaults")
	}
	fmt.Println("✓ Configuration loaded")

	slog.Debug("source mode", "mode", cfg.Source.Mode)
	if cfg.History.Enabled {
		slog.Debug("history enabled", "backend", cfg.History.Backend)
	}
	if cfg.Cache.Enabled {
		slog.Debug("cache enabled", "backend", cfg.Cache.Backend)
	}
}
