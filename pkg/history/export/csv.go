package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/callisto/pkg/history"
)

// CSVExporter exports history records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes history records to the provided writer in CSV format.
// Source and output text are carried verbatim; the csv package quotes
// embedded newlines.
func (e *CSVExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return history.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return history.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return history.NewExportError("csv", len(records), err)
	}
	return nil
}

// ExportStream exports history records from a channel to CSV format.
// This is memory-efficient for large ledgers as it streams records one
// at a time instead of loading all records in memory.
//
// The CSV writer flushes periodically so long-running exports make
// visible progress.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *history.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return history.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return history.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return history.NewExportError("csv", recordCount, err)
			}
			recordCount++

			// Flush every 100 records
			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return history.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

// headerRow returns the CSV header row. Column order matches
// recordToRow.
func headerRow() []string {
	return []string{
		"id", "created_at",
		"file_name", "source", "source_sha256", "source_bytes",
		"output", "output_bytes",
		"status", "stage", "error_message",
		"trigger", "duration_micros", "token_count",
	}
}

// recordToRow converts a history record to a CSV row.
func recordToRow(record *history.Record) []string {
	return []string{
		record.ID,
		record.CreatedAt.Format(time.RFC3339Nano),
		record.FileName,
		record.Source,
		record.SourceSHA256,
		strconv.Itoa(record.SourceBytes),
		record.Output,
		strconv.Itoa(record.OutputBytes),
		record.Status,
		record.Stage,
		record.ErrorMessage,
		record.Trigger,
		strconv.FormatInt(record.DurationMicros, 10),
		strconv.Itoa(record.TokenCount),
	}
}
