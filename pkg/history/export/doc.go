// Package export provides compilation ledger exporters for various formats.
//
// # Export Formats
//
// The export package provides exporters for:
//
//   - CSV: Flattened schema with header row and proper escaping
//   - JSON: Record array, with optional pretty-printing
//
// # CSV Export
//
// The CSV exporter outputs ledger records in CSV format with proper escaping:
//
//	// Create CSV exporter with header row
//	exporter := export.NewCSVExporter(true)
//
//	// Export records to file
//	f, _ := os.Create("ledger.csv")
//	defer f.Close()
//
//	err := exporter.Export(ctx, records, f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # JSON Export
//
// The JSON exporter outputs ledger records in JSON format:
//
//	// Create JSON exporter with pretty-printing
//	exporter := export.NewJSONExporter(true)
//
//	// Export records to stdout
//	err := exporter.Export(ctx, records, os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Streaming
//
// Both exporters support streaming large result sets without loading all
// records into memory. ExportStream consumes a record channel and writes
// each record as it arrives, so a caller can page through storage while
// the exporter drains the channel.
//
// # Error Handling
//
// Exporters return ExportError if the export fails:
//
//   - JSON encoding errors
//   - CSV escaping errors
//   - Writer errors
package export
