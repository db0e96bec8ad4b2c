package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cache"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/driver"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/history/recorder"
)

var compileFlags struct {
	output  string
	outDir  string
	format  string
	noCache bool
}

var compileCmd = &cobra.Command{
	Use:   "compile [files...]",
	Short: "Compile source files or stdin",
	Long: `Compile lisp-like source files into C-style call expressions.

With no arguments the source is read from stdin and the compiled output is
written to stdout. File arguments are compiled in order; directory arguments
are walked for source files (extensions from the compiler config, .lisp and
.sexpr by default).

With --outdir each input is written to its own .c file under the directory;
without it compiled output goes to stdout or the --output file.

Examples:
  # Compile a file to stdout
  callisto compile program.lisp

  # Compile from stdin
  echo '(add 2 (subtract 4 2))' | callisto compile

  # Compile a directory tree into build/
  callisto compile ./src --outdir build

  # Machine-readable results
  callisto compile program.lisp --format json`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileFlags.output, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().StringVar(&compileFlags.outDir, "outdir", "", "write one .c file per input under this directory")
	compileCmd.Flags().StringVar(&compileFlags.format, "format", "text", "output format: text, json")
	compileCmd.Flags().BoolVar(&compileFlags.noCache, "no-cache", false, "bypass the compile cache")
}

// fileResult is one compiled input in machine-readable output.
type fileResult struct {
	File       string `json:"file,omitempty"`
	Output     string `json:"output"`
	TokenCount int    `json:"token_count"`
	CacheHit   bool   `json:"cache_hit"`
	DurationUS int64  `json:"duration_us"`
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, fromFile, err := loadCommandConfig()
	if err != nil {
		return err
	}
	// Ad-hoc compiles leave no ledger database behind unless a config
	// file asks for one.
	if !fromFile {
		cfg.History.Enabled = false
	}
	if compileFlags.noCache {
		cfg.Cache.Enabled = false
	}
	setupCLILogging()

	if compileFlags.output != "" && compileFlags.outDir != "" {
		return cli.NewCommandError("compile", fmt.Errorf("--output and --outdir are mutually exclusive"))
	}
	if len(args) == 0 && compileFlags.outDir != "" {
		return cli.NewCommandError("compile", fmt.Errorf("--outdir requires file arguments"))
	}

	drv, cleanup, err := buildDriver(cfg)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}
	defer cleanup()

	ctx := context.Background()

	if len(args) == 0 {
		return compileStdin(ctx, drv)
	}

	files, err := collectSourceFiles(args, cfg.Compiler.Extensions)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}
	if len(files) == 0 {
		return cli.NewCommandError("compile", fmt.Errorf("no source files found"))
	}
	if compileFlags.output != "" && len(files) > 1 {
		return cli.NewCommandError("compile", fmt.Errorf("--output requires a single input file, got %d", len(files)))
	}

	return compileFiles(ctx, drv, files)
}

func compileStdin(ctx context.Context, drv *driver.Driver) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return cli.NewCommandError("compile", fmt.Errorf("failed to read stdin: %w", err))
	}

	result, err := drv.Compile(ctx, driver.Input{
		Source:  string(data),
		Trigger: history.TriggerCLI,
	})
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	return emitResults([]*fileResult{{
		Output:     result.Output,
		TokenCount: result.TokenCount,
		CacheHit:   result.CacheHit,
		DurationUS: result.Duration.Microseconds(),
	}})
}

func compileFiles(ctx context.Context, drv *driver.Driver, files []string) error {
	useProgress := compileFlags.outDir != "" && compileFlags.format == "text" && len(files) > 1

	var progress cli.ProgressReporter
	if useProgress {
		progress = cli.NewProgressReporter(os.Stderr)
		progress.Start(int64(len(files)))
	}

	results := make([]*fileResult, 0, len(files))
	written := make(map[string]string, len(files))

	for i, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return compileAbort(progress, cli.NewCommandError("compile", fmt.Errorf("cannot read %s: %w", file, err)))
		}

		result, err := drv.Compile(ctx, driver.Input{
			Source:   string(data),
			FileName: file,
			Trigger:  history.TriggerCLI,
		})
		if err != nil {
			return compileAbort(progress, cli.NewCommandError("compile", fmt.Errorf("%s: %w", file, err)))
		}

		results = append(results, &fileResult{
			File:       file,
			Output:     result.Output,
			TokenCount: result.TokenCount,
			CacheHit:   result.CacheHit,
			DurationUS: result.Duration.Microseconds(),
		})

		if compileFlags.outDir != "" {
			outPath := filepath.Join(compileFlags.outDir, targetFileName(file))
			if prev, ok := written[outPath]; ok {
				return compileAbort(progress, cli.NewCommandError("compile",
					fmt.Errorf("%s and %s both compile to %s", prev, file, outPath)))
			}
			written[outPath] = file
			if err := writeTargetFile(outPath, result.Output); err != nil {
				return compileAbort(progress, cli.NewCommandError("compile", err))
			}
		}

		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}

	if progress != nil {
		progress.Finish()
	}

	return emitResults(results)
}

func compileAbort(progress cli.ProgressReporter, err error) error {
	if progress != nil {
		progress.Error(err)
	}
	return err
}

func emitResults(results []*fileResult) error {
	var out io.Writer = os.Stdout
	if compileFlags.output != "" {
		f, err := os.Create(compileFlags.output)
		if err != nil {
			return cli.NewCommandError("compile", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	if compileFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(out, results)
	}

	if compileFlags.outDir != "" {
		fmt.Printf("✓ Compiled %d files to %s\n", len(results), compileFlags.outDir)
		return nil
	}

	for _, r := range results {
		fmt.Fprintln(out, r.Output)
	}
	return nil
}

// collectSourceFiles expands the argument list: files are taken as-is,
// directories are walked for files with a recognized source extension.
// Hidden directories are skipped.
func collectSourceFiles(args []string, extensions []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		root := arg
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if hasSourceExtension(path, extensions) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return files, nil
}

func hasSourceExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// targetFileName maps a source file name to its target file name,
// replacing the source extension with .c.
func targetFileName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".c"
}

func writeTargetFile(path, output string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(output+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// setupCLILogging routes logs to stderr so compiled output on stdout
// stays clean. Verbose enables debug logging.
func setupCLILogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// buildDriver assembles the compile driver from configuration. The
// returned cleanup drains the recorder and closes storage and cache.
func buildDriver(cfg *config.Config) (*driver.Driver, func(), error) {
	var store history.Storage
	var rec *recorder.Recorder
	if cfg.History.Enabled {
		var err error
		store, err = openHistoryStorage(cfg)
		if err != nil {
			return nil, nil, err
		}

		recCfg := recorder.DefaultConfig()
		if cfg.History.Recorder.AsyncBuffer > 0 {
			recCfg.AsyncBuffer = cfg.History.Recorder.AsyncBuffer
		}
		if cfg.History.Recorder.WriteTimeout > 0 {
			recCfg.WriteTimeout = cfg.History.Recorder.WriteTimeout
		}
		rec = recorder.NewRecorder(store, recCfg, nil)
	}

	c, err := cache.New(&cfg.Cache)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	drv := driver.New(c, rec, nil, nil, slog.Default())
	cleanup := func() {
		if rec != nil {
			rec.Close()
		}
		if store != nil {
			store.Close()
		}
		if c != nil {
			c.Close()
		}
	}
	return drv, cleanup, nil
}
