/*
Package cli provides command-line interface utilities for Callisto.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the callisto command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results. CSV formatting is specific to compilation
history records:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, records); err != nil {
		return err
	}

Progress Reporting:

For long-running operations, such as compiling every source file under a
directory, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(int64(len(files)))
	for i, file := range files {
		// Compile file
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown

Errors:

Commands wrap failures in CommandError so the top-level error report names
the command that failed, and in ConfigError when the failure is a bad or
missing configuration value.
*/
package cli
