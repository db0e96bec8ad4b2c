package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"mercator-hq/callisto/pkg/history"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output (for history records).
	FormatCSV OutputFormat = "csv"
)

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats compilation history records as CSV. Source and
// output text are included as quoted fields, so rows survive embedded
// newlines. Data other than history records is rejected.
type CSVFormatter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// Format converts history records to CSV format.
func (f *CSVFormatter) Format(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes history records to writer in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data interface{}) error {
	records, err := historyRecords(data)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	if f.IncludeHeader {
		if err := writer.Write(csvHeaderRow()); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, record := range records {
		if err := writer.Write(csvRecordRow(record)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// historyRecords coerces the supported input shapes to a record slice.
func historyRecords(data interface{}) ([]*history.Record, error) {
	switch v := data.(type) {
	case []*history.Record:
		return v, nil
	case *history.Record:
		return []*history.Record{v}, nil
	case history.Record:
		return []*history.Record{&v}, nil
	default:
		return nil, fmt.Errorf("CSV format supports history records only, got %T", data)
	}
}

// csvHeaderRow returns the CSV header row. Column order matches
// csvRecordRow.
func csvHeaderRow() []string {
	return []string{
		"id", "created_at",
		"file_name", "source", "source_sha256", "source_bytes",
		"output", "output_bytes",
		"status", "stage", "error_message",
		"trigger", "duration_micros", "token_count",
	}
}

// csvRecordRow converts a history record to a CSV row.
func csvRecordRow(record *history.Record) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}

	return []string{
		record.ID,
		formatTime(record.CreatedAt),
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

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{IncludeHeader: true}
	default:
		return &TextFormatter{}
	}
}
