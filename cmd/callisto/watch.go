package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/driver"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/watch"
)

var watchFlags struct {
	outDir string
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Recompile source files on change",
	Long: `Watch a file or directory and recompile source files whenever they
change. Each compiled file is written next to its source with a .c
extension, or under --outdir when given.

Filesystem events are debounced, so editors that write several times per
save trigger a single recompile. Press Ctrl+C to stop.

Examples:
  # Recompile a source tree on change
  callisto watch ./src

  # Write compiled output under build/
  callisto watch ./src --outdir build`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.outDir, "outdir", "", "write .c files under this directory (default: next to sources)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, fromFile, err := loadCommandConfig()
	if err != nil {
		return err
	}
	// The dev loop leaves no ledger database behind unless a config
	// file asks for one.
	if !fromFile {
		cfg.History.Enabled = false
	}
	setupCLILogging()

	drv, cleanup, err := buildDriver(cfg)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer cleanup()

	ctx := cli.SetupSignalHandler()

	watchCfg := watch.DefaultConfig()
	watchCfg.Path = args[0]
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
		compileWatchedFile(ctx, drv, path)
	}

	fw, err := watch.NewFileWatcher(watchCfg, nil)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	if err := fw.Start(ctx); err != nil {
		return cli.NewCommandError("watch", err)
	}

	fmt.Printf("Watching %s (press Ctrl+C to stop)\n", args[0])

	<-ctx.Done()
	fmt.Println("\nStopping watcher")
	if err := fw.Stop(); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// compileWatchedFile compiles one changed source file and writes its
// target file. Failures are reported and do not stop the watch loop.
func compileWatchedFile(ctx context.Context, drv *driver.Driver, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("✗ %s: %v\n", path, err)
		return
	}

	result, err := drv.Compile(ctx, driver.Input{
		Source:   string(data),
		FileName: path,
		Trigger:  history.TriggerWatch,
	})
	if err != nil {
		fmt.Printf("✗ %s: %v\n", path, err)
		return
	}

	outPath := watchedTargetPath(path)
	if err := writeTargetFile(outPath, result.Output); err != nil {
		fmt.Printf("✗ %s: %v\n", path, err)
		return
	}

	if result.CacheHit {
		fmt.Printf("✓ %s → %s (cached)\n", path, outPath)
		return
	}
	fmt.Printf("✓ %s → %s\n", path, outPath)
}

// watchedTargetPath places the target file next to the source, or under
// the --outdir directory when given.
func watchedTargetPath(sourcePath string) string {
	if watchFlags.outDir != "" {
		return filepath.Join(watchFlags.outDir, targetFileName(sourcePath))
	}
	return filepath.Join(filepath.Dir(sourcePath), targetFileName(sourcePath))
}
