package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/history/export"
	"mercator-hq/callisto/pkg/history/retention"
	"mercator-hq/callisto/pkg/history/storage"
)

// exportPageSize is how many records each storage query fetches while
// streaming an export or report.
const exportPageSize = 500

var historyFlags struct {
	status    string
	trigger   string
	file      string
	limit     int
	offset    int
	format    string
	output    string
	olderThan int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the compilation ledger",
	Long: `Query and maintain the compilation ledger.

Every compilation is recorded with its source hash, outcome, and timing.
The history command reads that ledger.

Subcommands:
  list    - List records with filters
  show    - Show a single record in full
  export  - Export every matching record to CSV or JSON
  report  - Summarize the ledger
  prune   - Delete records older than the retention period

Examples:
  # Last ten failures
  callisto history list --status error --limit 10

  # Everything the watch loop compiled, as CSV
  callisto history list --trigger watch --format csv --output watch.csv

  # One record in full
  callisto history show 6b4f2c1a-52cd-4e5b-9f11-7b8a3f0e2d91

  # Full ledger dump for audit
  callisto history export --output ledger.csv

  # Apply the retention policy now
  callisto history prune`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List compilation records",
	Long: `List compilation records, newest first.

Filters combine with AND. Text output shows a summary per record; use
--format json or --format csv for the full records.`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single compilation record",
	Long:  `Show one compilation record in full, including source and output text.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportFlags struct {
	status  string
	trigger string
	file    string
	format  string
	output  string
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export compilation records",
	Long: `Export every record matching the filters.

Unlike list, export pages through the entire ledger and streams rows to
the output, so it is not bounded by the configured query limit.

Examples:
  # Full ledger as CSV
  callisto history export --output ledger.csv

  # Failed git-triggered compilations as JSON
  callisto history export --status error --trigger git --format json --output failures.json`,
	RunE: runHistoryExport,
}

var historyReportFlags struct {
	output string
}

var historyReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the ledger",
	Long:  `Print summary statistics: outcomes, triggers, failing stages, and token totals.`,
	RunE:  runHistoryReport,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old compilation records",
	Long: `Delete compilation records older than the retention period. The
period comes from the config file; --older-than overrides it.`,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd, historyReportCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.status, "status", "", "filter by status (success, error)")
	historyListCmd.Flags().StringVar(&historyFlags.trigger, "trigger", "", "filter by trigger (cli, server, watch, git)")
	historyListCmd.Flags().StringVar(&historyFlags.file, "file", "", "filter by source file name")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 100, "max records")
	historyListCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
	historyListCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, csv")
	historyListCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "output file (default: stdout)")

	historyShowCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")

	historyExportCmd.Flags().StringVar(&historyExportFlags.status, "status", "", "filter by status (success, error)")
	historyExportCmd.Flags().StringVar(&historyExportFlags.trigger, "trigger", "", "filter by trigger (cli, server, watch, git)")
	historyExportCmd.Flags().StringVar(&historyExportFlags.file, "file", "", "filter by source file name")
	historyExportCmd.Flags().StringVar(&historyExportFlags.format, "format", "csv", "export format: csv, json")
	historyExportCmd.Flags().StringVarP(&historyExportFlags.output, "output", "o", "", "output file (default: stdout)")

	historyReportCmd.Flags().StringVarP(&historyReportFlags.output, "output", "o", "", "output file (default: stdout)")

	historyPruneCmd.Flags().IntVar(&historyFlags.olderThan, "older-than", 0, "delete records older than this many days (default: config retention)")
}

// openHistoryStorage opens the configured ledger backend.
func openHistoryStorage(cfg *config.Config) (history.Storage, error) {
	switch cfg.History.Backend {
	case "sqlite", "":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.History.SQLite.Path,
			MaxOpenConns: cfg.History.SQLite.MaxOpenConns,
			BusyTimeout:  cfg.History.SQLite.BusyTimeout,
		})
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s (supported: sqlite, memory)", cfg.History.Backend)
	}
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadCommandConfig()
	if err != nil {
		return err
	}
	setupCLILogging()

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	limit := historyFlags.limit
	if max := cfg.History.Query.MaxLimit; max > 0 && limit > max {
		limit = max
	}
	query := &history.Query{
		Status:    historyFlags.status,
		Trigger:   historyFlags.trigger,
		FileName:  historyFlags.file,
		Limit:     limit,
		Offset:    historyFlags.offset,
		SortOrder: "desc",
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	var out io.Writer = os.Stdout
	if historyFlags.output != "" {
		f, err := os.Create(historyFlags.output)
		if err != nil {
			return cli.NewCommandError("history", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	switch historyFlags.format {
	case "json", "csv":
		return cli.NewFormatter(cli.OutputFormat(historyFlags.format)).FormatTo(out, records)
	default:
		printRecordList(out, records)
		return nil
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadCommandConfig()
	if err != nil {
		return err
	}
	setupCLILogging()

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	record, err := store.Get(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return cli.NewCommandError("history", fmt.Errorf("no record with id %s", args[0]))
		}
		return cli.NewCommandError("history", err)
	}

	if historyFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, record)
	}
	printRecord(os.Stdout, record)
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadCommandConfig()
	if err != nil {
		return err
	}
	setupCLILogging()

	var stream func(context.Context, <-chan *history.Record, io.Writer) error
	switch historyExportFlags.format {
	case "csv":
		stream = export.NewCSVExporter(true).ExportStream
	case "json":
		stream = export.NewJSONExporter(true).ExportStream
	default:
		return cli.NewCommandError("history", fmt.Errorf("unsupported export format: %s (supported: csv, json)", historyExportFlags.format))
	}

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	var out io.Writer = os.Stdout
	if historyExportFlags.output != "" {
		f, err := os.Create(historyExportFlags.output)
		if err != nil {
			return cli.NewCommandError("history", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	// Cancellation releases the producer if the exporter stops reading
	// before the ledger is drained.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	records := make(chan *history.Record, exportPageSize)

	// The producer pages through storage; closing the channel ends the
	// stream. queryErr is read only after ExportStream returns, which
	// the close orders after the final write.
	var queryErr error
	go func() {
		defer close(records)

		query := &history.Query{
			Status:    historyExportFlags.status,
			Trigger:   historyExportFlags.trigger,
			FileName:  historyExportFlags.file,
			Limit:     exportPageSize,
			SortOrder: "asc",
		}
		for {
			page, err := store.Query(ctx, query)
			if err != nil {
				queryErr = err
				return
			}
			for _, record := range page {
				select {
				case records <- record:
				case <-ctx.Done():
					return
				}
			}
			if len(page) < exportPageSize {
				return
			}
			query.Offset += exportPageSize
		}
	}()

	if err := stream(ctx, records, out); err != nil {
		return cli.NewCommandError("history", fmt.Errorf("export failed: %w", err))
	}
	if queryErr != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", queryErr))
	}
	return nil
}

func runHistoryReport(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadCommandConfig()
	if err != nil {
		return err
	}
	setupCLILogging()

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	ctx := context.Background()
	stats := newLedgerStats()
	query := &history.Query{Limit: exportPageSize, SortOrder: "asc"}
	for {
		page, err := store.Query(ctx, query)
		if err != nil {
			return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
		}
		for _, record := range page {
			stats.add(record)
		}
		if len(page) < exportPageSize {
			break
		}
		query.Offset += exportPageSize
	}

	var out io.Writer = os.Stdout
	if historyReportFlags.output != "" {
		f, err := os.Create(historyReportFlags.output)
		if err != nil {
			return cli.NewCommandError("history", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	printLedgerReport(out, stats)
	return nil
}

// ledgerStats accumulates report counters over one pass of the ledger.
type ledgerStats struct {
	total       int
	succeeded   int
	failed      int
	tokens      int64
	durationSum time.Duration
	triggers    map[string]int
	stages      map[string]int
	firstAt     time.Time
	lastAt      time.Time
}

func newLedgerStats() *ledgerStats {
	return &ledgerStats{
		triggers: make(map[string]int),
		stages:   make(map[string]int),
	}
}

func (s *ledgerStats) add(record *history.Record) {
	s.total++
	switch record.Status {
	case history.StatusSuccess:
		s.succeeded++
	case history.StatusError:
		s.failed++
		s.stages[record.Stage]++
	}
	s.triggers[record.Trigger]++
	s.tokens += int64(record.TokenCount)
	s.durationSum += time.Duration(record.DurationMicros) * time.Microsecond

	if s.firstAt.IsZero() || record.CreatedAt.Before(s.firstAt) {
		s.firstAt = record.CreatedAt
	}
	if record.CreatedAt.After(s.lastAt) {
		s.lastAt = record.CreatedAt
	}
}

func printLedgerReport(out io.Writer, stats *ledgerStats) {
	fmt.Fprintln(out, "Compilation Ledger Report")
	fmt.Fprintln(out, "=========================")
	fmt.Fprintf(out, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(out)

	if stats.total == 0 {
		fmt.Fprintln(out, "The ledger is empty.")
		return
	}

	fmt.Fprintf(out, "Time range: %s to %s\n",
		stats.firstAt.Format(time.RFC3339),
		stats.lastAt.Format(time.RFC3339))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Summary:")
	fmt.Fprintln(out, "--------")
	fmt.Fprintf(out, "Total compilations: %d\n", stats.total)
	fmt.Fprintf(out, "Succeeded: %d (%.0f%%)\n", stats.succeeded,
		float64(stats.succeeded)/float64(stats.total)*100)
	fmt.Fprintf(out, "Failed: %d (%.0f%%)\n", stats.failed,
		float64(stats.failed)/float64(stats.total)*100)
	fmt.Fprintf(out, "Total tokens: %d\n", stats.tokens)
	fmt.Fprintf(out, "Average duration: %s\n", stats.durationSum/time.Duration(stats.total))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "By Trigger:")
	for trigger, count := range stats.triggers {
		pct := float64(count) / float64(stats.total) * 100
		fmt.Fprintf(out, "  %s: %d (%.0f%%)\n", trigger, count, pct)
	}

	if stats.failed > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Failures by Stage:")
		for stage, count := range stats.stages {
			fmt.Fprintf(out, "  %s: %d\n", stage, count)
		}
	}
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadCommandConfig()
	if err != nil {
		return err
	}
	setupCLILogging()

	days := cfg.History.Retention.Days
	if historyFlags.olderThan > 0 {
		days = historyFlags.olderThan
	}
	if days <= 0 {
		return cli.NewCommandError("history", fmt.Errorf("retention is disabled; pass --older-than to prune anyway"))
	}

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: days,
		BatchSize:     cfg.History.Retention.BatchSize,
	}, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("prune failed: %w", err))
	}

	fmt.Printf("✓ Deleted %d records older than %d days\n", deleted, days)
	return nil
}

func printRecordList(out io.Writer, records []*history.Record) {
	fmt.Fprintf(out, "Total records: %d\n", len(records))

	if len(records) == 0 {
		fmt.Fprintln(out, "No records found.")
		return
	}

	for _, record := range records {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Record ID: %s\n", record.ID)
		fmt.Fprintf(out, "Created:   %s\n", record.CreatedAt.Format(time.RFC3339))
		if record.FileName != "" {
			fmt.Fprintf(out, "File:      %s\n", record.FileName)
		}
		fmt.Fprintf(out, "Status:    %s\n", record.Status)
		if record.Stage != "" {
			fmt.Fprintf(out, "Stage:     %s\n", record.Stage)
		}
		fmt.Fprintf(out, "Trigger:   %s\n", record.Trigger)
		fmt.Fprintf(out, "Tokens:    %d\n", record.TokenCount)
		fmt.Fprintf(out, "Duration:  %s\n", time.Duration(record.DurationMicros)*time.Microsecond)
	}
}

func printRecord(out io.Writer, record *history.Record) {
	fmt.Fprintf(out, "Record ID:     %s\n", record.ID)
	fmt.Fprintf(out, "Created:       %s\n", record.CreatedAt.Format(time.RFC3339))
	if record.FileName != "" {
		fmt.Fprintf(out, "File:          %s\n", record.FileName)
	}
	fmt.Fprintf(out, "Status:        %s\n", record.Status)
	if record.Stage != "" {
		fmt.Fprintf(out, "Failed stage:  %s\n", record.Stage)
	}
	if record.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:         %s\n", record.ErrorMessage)
	}
	fmt.Fprintf(out, "Trigger:       %s\n", record.Trigger)
	fmt.Fprintf(out, "Tokens:        %d\n", record.TokenCount)
	fmt.Fprintf(out, "Duration:      %s\n", time.Duration(record.DurationMicros)*time.Microsecond)
	fmt.Fprintf(out, "Source SHA256: %s\n", record.SourceSHA256)
	fmt.Fprintf(out, "Source bytes:  %d\n", record.SourceBytes)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Source:")
	fmt.Fprintln(out, record.Source)
	if record.Output != "" {
		fmt.Fprintln(out, "Output:")
		fmt.Fprintln(out, record.Output)
	}
}
