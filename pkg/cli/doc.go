/*
Package cli provides command-line interface utilities for Talon.

The cli package includes output formatters and common CLI helpers used
by the talon command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output is row-oriented: hand the formatter [][]string cells and an
optional header row, which fits the per-destination key tables the
compile and rules commands print.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be canceled on shutdown
*/
package cli
