package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/config"
	"osprey-hq/talon/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "talon",
	Short: "Talon - ABAC policy compiler for bit-string enforcement fabrics",
	Long: `Talon is an attribute-based access-control (ABAC) policy compiler.

It compiles a policy set, an entity inventory, and an attribute schema
into per-destination 32-bit-per-slot match keys:
  - Destination-only partial evaluation prunes rules per destination
  - Source requirements are extracted, merged, and packed into bit keys
  - Snapshots are content-addressed and persisted for audit
  - The same policies evaluate exactly in the slow path

For more information, visit: https://github.com/osprey-hq/talon`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the configuration file named by --config. Commands
// that work without a config file fall back to defaults when the file
// does not exist and the flag was left at its default value.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if !rootCmd.PersistentFlags().Changed("config") {
			return config.NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("config file %q does not exist", cfgFile)
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// newLogger builds the process logger from the telemetry config. The
// --verbose flag forces debug level regardless of configuration.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logCfg := cfg.Telemetry.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg, w)
}
