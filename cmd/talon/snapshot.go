package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/cli"
	"osprey-hq/talon/pkg/compiler/snapshot"
	"osprey-hq/talon/pkg/config"
)

var snapshotFlags struct {
	limit    int
	format   string
	output   string
	compress bool
	keep     int
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect the snapshot store",
	Long: `Inspect and manage persisted compile snapshots.

Subcommands:
  list    - List stored snapshots, newest first
  show    - Show one snapshot's summary and verify its digest
  export  - Export a stored snapshot (json, csv, or cbor)
  prune   - Delete all but the newest N snapshots

Examples:
  # List the ten newest snapshots
  talon snapshot list --limit 10

  # Verify and summarize the latest snapshot
  talon snapshot show latest

  # Export a specific snapshot as compressed CBOR
  talon snapshot export 6a1f... --format cbor --compress -o snap.cbor.zst

  # Keep only the twenty newest snapshots
  talon snapshot prune --keep 20`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE:  listSnapshots,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [id|latest]",
	Short: "Show one snapshot's summary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showSnapshot,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export [id|latest]",
	Short: "Export a stored snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE:  exportStoredSnapshot,
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	RunE:  pruneSnapshots,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotListCmd, snapshotShowCmd, snapshotExportCmd, snapshotPruneCmd)

	snapshotListCmd.Flags().IntVar(&snapshotFlags.limit, "limit", 0, "max snapshots to list (0 = all)")
	snapshotListCmd.Flags().StringVar(&snapshotFlags.format, "format", "text", "output format: text, json")

	snapshotExportCmd.Flags().StringVar(&snapshotFlags.format, "format", "json", "export format: json, csv, cbor")
	snapshotExportCmd.Flags().StringVarP(&snapshotFlags.output, "output", "o", "", "output file (default: stdout)")
	snapshotExportCmd.Flags().BoolVar(&snapshotFlags.compress, "compress", false, "zstd-compress the export")

	snapshotPruneCmd.Flags().IntVar(&snapshotFlags.keep, "keep", 0, "snapshots to retain (default: configured keep)")
}

func snapshotStoreFromConfig() (*snapshot.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openSnapshotStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	store, _, err := snapshotStoreFromConfig()
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}
	defer store.Close()

	infos, err := store.List(cmd.Context(), snapshotFlags.limit)
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}

	if snapshotFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, infos)
	}

	if len(infos) == 0 {
		fmt.Println("no snapshots stored")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  %s\n", info.ID, info.CreatedAt.UTC().Format(time.RFC3339), info.Digest)
	}
	return nil
}

// resolveSnapshot fetches a snapshot by ID, with "latest" (or no
// argument) selecting the newest one.
func resolveSnapshot(cmd *cobra.Command, store *snapshot.Store, args []string) (*snapshot.Snapshot, error) {
	if len(args) == 0 || args[0] == "latest" {
		return store.Latest(cmd.Context())
	}
	return store.Get(cmd.Context(), args[0])
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	store, _, err := snapshotStoreFromConfig()
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}
	defer store.Close()

	snap, err := resolveSnapshot(cmd, store, args)
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}

	valid, err := snap.Verify()
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}

	fmt.Printf("ID:               %s\n", snap.ID)
	fmt.Printf("Created:          %s\n", snap.CreatedAt.UTC().Format(time.RFC3339Nano))
	fmt.Printf("Digest:           %s\n", snap.Digest)
	fmt.Printf("Digest valid:     %t\n", valid)
	fmt.Printf("Policies:         %d\n", len(snap.PolicyNames))
	for _, name := range snap.PolicyNames {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("Attr order:       %v\n", snap.AttrOrder)
	fmt.Printf("Trust thresholds: %v\n", snap.TrustThresholds)
	fmt.Printf("Destinations:     %d\n", len(snap.Keys))
	fmt.Printf("Threshold keys:   %t\n", snap.UsesTrustThreshold())

	if !valid {
		return cli.NewCommandError("snapshot", fmt.Errorf("digest mismatch, snapshot %s is corrupt", snap.ID))
	}
	return nil
}

func exportStoredSnapshot(cmd *cobra.Command, args []string) error {
	store, _, err := snapshotStoreFromConfig()
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}
	defer store.Close()

	snap, err := resolveSnapshot(cmd, store, args)
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}

	return exportSnapshot(cmd, snap, snapshotFlags.format, snapshotFlags.output, snapshotFlags.compress)
}

func pruneSnapshots(cmd *cobra.Command, args []string) error {
	store, cfg, err := snapshotStoreFromConfig()
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}
	defer store.Close()

	keep := snapshotFlags.keep
	if keep <= 0 {
		keep = cfg.Snapshot.Keep
	}
	if keep <= 0 {
		return cli.NewCommandError("snapshot", fmt.Errorf("--keep must be positive (or set snapshot.keep in config)"))
	}

	pruned, err := store.Prune(cmd.Context(), keep)
	if err != nil {
		return cli.NewCommandError("snapshot", err)
	}
	fmt.Printf("pruned %d snapshot(s), kept the newest %d\n", pruned, keep)
	return nil
}
