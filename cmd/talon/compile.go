package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/cli"
	"osprey-hq/talon/pkg/compiler"
	"osprey-hq/talon/pkg/compiler/snapshot"
	"osprey-hq/talon/pkg/config"
	"osprey-hq/talon/pkg/inventory"
	"osprey-hq/talon/pkg/telemetry/tracing"
)

var compileFlags struct {
	format        string
	output        string
	compress      bool
	save          bool
	fromInventory bool
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile policies into destination match keys",
	Long: `Compile the configured policy set, entity inventory, and schema
into a snapshot of per-destination bit-string match keys.

The snapshot is written to stdout (or --output) in the chosen format.
With --save, or when the snapshot store is enabled in configuration,
the snapshot is also persisted and older snapshots are pruned to the
configured retention count.

Examples:
  # Compile and print the snapshot as JSON
  talon compile

  # Export fabric-loadable CSV rows
  talon compile --format csv --output keys.csv

  # Canonical binary artifact, zstd-compressed
  talon compile --format cbor --compress --output snapshot.cbor.zst

  # Compile from the SQLite inventory instead of the entities file
  talon compile --from-inventory`,
	RunE: compileSnapshot,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVar(&compileFlags.format, "format", "json", "export format: json, csv, cbor")
	compileCmd.Flags().StringVarP(&compileFlags.output, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().BoolVar(&compileFlags.compress, "compress", false, "zstd-compress the export")
	compileCmd.Flags().BoolVar(&compileFlags.save, "save", false, "persist the snapshot to the store")
	compileCmd.Flags().BoolVar(&compileFlags.fromInventory, "from-inventory", false, "load entities from the inventory store")
}

func compileSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("compile", err)
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	ctx := cmd.Context()

	fileSource := compiler.NewFileSource(cfg.Data.PoliciesDir, cfg.Data.EntitiesFile, cfg.Data.SchemaFile, logger)

	opts := compiler.Options{
		Policies:        fileSource,
		Entities:        fileSource,
		Schema:          fileSource,
		AttrOrder:       cfg.Key.AttrOrder,
		TrustThresholds: cfg.Key.TrustThresholds,
		Workers:         cfg.Compiler.Workers,
		Logger:          logger,
	}

	if compileFlags.fromInventory {
		invStore, err := inventory.NewStore(inventory.Config{Path: cfg.Inventory.Path})
		if err != nil {
			return cli.NewCommandError("compile", fmt.Errorf("failed to open inventory: %w", err))
		}
		defer invStore.Close()
		opts.Entities = inventory.NewEntitySource(invStore)
	}

	var store *snapshot.Store
	if compileFlags.save || cfg.Snapshot.Enabled {
		store, err = openSnapshotStore(cfg)
		if err != nil {
			return cli.NewCommandError("compile", err)
		}
		defer store.Close()
		opts.Store = store
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}
	defer tracer.Shutdown(cmd.Context())
	opts.Tracer = tracer

	comp, err := compiler.New(opts)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	snap, err := comp.Recompile(ctx)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}
	logger.Info("compiled snapshot",
		"snapshot_id", snap.ID,
		"destinations", len(snap.Keys),
		"digest", snap.Digest,
	)

	if store != nil && cfg.Snapshot.Keep > 0 {
		pruned, err := store.Prune(ctx, cfg.Snapshot.Keep)
		if err != nil {
			return cli.NewCommandError("compile", err)
		}
		if pruned > 0 {
			logger.Info("pruned old snapshots", "count", pruned, "keep", cfg.Snapshot.Keep)
		}
	}

	return exportSnapshot(cmd, snap, compileFlags.format, compileFlags.output, compileFlags.compress)
}

func openSnapshotStore(cfg *config.Config) (*snapshot.Store, error) {
	storeCfg := snapshot.DefaultStoreConfig()
	storeCfg.Path = cfg.Snapshot.Path
	store, err := snapshot.NewStore(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return store, nil
}

// exportSnapshot writes one snapshot in the requested format, optionally
// zstd-compressed, to a file or stdout.
func exportSnapshot(cmd *cobra.Command, snap *snapshot.Snapshot, format, output string, compress bool) error {
	exporter, err := snapshot.NewExporter(format)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return cli.NewCommandError("compile", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		w = f
	}

	cw, err := snapshot.CompressWriter(w, compress)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	if err := exporter.Export(cmd.Context(), snap, cw); err != nil {
		cw.Close()
		return cli.NewCommandError("compile", err)
	}
	if err := cw.Close(); err != nil {
		return cli.NewCommandError("compile", err)
	}

	if output != "" {
		fmt.Fprintf(os.Stderr, "wrote %s snapshot to %s\n", format, output)
	}
	return nil
}
