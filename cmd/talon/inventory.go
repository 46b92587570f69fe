package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/abac"
	"osprey-hq/talon/pkg/cli"
	"osprey-hq/talon/pkg/inventory"
)

var inventoryFlags struct {
	file   string
	kind   string
	format string
}

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the entity inventory store",
	Long: `Manage the SQLite-backed entity inventory.

The inventory holds the source and destination entities the compiler
operates on, as an alternative to the flat entities file. Attribute
values round-trip through the same strict parser as file loading, so
unknown keys and malformed values are rejected on write.

Subcommands:
  import  - Load an entities document into the inventory
  list    - List stored entities
  delete  - Delete one entity by IP

Examples:
  # Import the configured entities file
  talon inventory import

  # Import a specific document
  talon inventory import --file entities.json

  # List destinations as JSON
  talon inventory list --kind destination --format json

  # Delete a source entity
  talon inventory delete --kind source 10.0.0.8`,
}

var inventoryImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load an entities document into the inventory",
	RunE:  importInventory,
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored entities",
	RunE:  listInventory,
}

var inventoryDeleteCmd = &cobra.Command{
	Use:   "delete <ip>",
	Short: "Delete one entity by IP",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteInventoryEntity,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryImportCmd, inventoryListCmd, inventoryDeleteCmd)

	inventoryImportCmd.Flags().StringVarP(&inventoryFlags.file, "file", "f", "", "entities document (default: configured entities file)")

	inventoryListCmd.Flags().StringVar(&inventoryFlags.kind, "kind", "all", "entity kind: source, destination, all")
	inventoryListCmd.Flags().StringVar(&inventoryFlags.format, "format", "text", "output format: text, json")

	inventoryDeleteCmd.Flags().StringVar(&inventoryFlags.kind, "kind", "source", "entity kind: source, destination")
}

func openInventory() (*inventory.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := inventory.NewStore(inventory.Config{Path: cfg.Inventory.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	return store, nil
}

func importInventory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("inventory", err)
	}

	path := inventoryFlags.file
	if path == "" {
		path = cfg.Data.EntitiesFile
	}

	schemaMap, err := abac.LoadSchema(cfg.Data.SchemaFile)
	if err != nil {
		return cli.NewCommandError("inventory", fmt.Errorf("failed to load schema: %w", err))
	}
	set, err := abac.LoadEntities(path, schemaMap)
	if err != nil {
		return cli.NewCommandError("inventory", fmt.Errorf("failed to load entities: %w", err))
	}

	store, err := inventory.NewStore(inventory.Config{Path: cfg.Inventory.Path})
	if err != nil {
		return cli.NewCommandError("inventory", fmt.Errorf("failed to open inventory: %w", err))
	}
	defer store.Close()

	sources, dests, err := store.Import(cmd.Context(), set)
	if err != nil {
		return cli.NewCommandError("inventory", err)
	}

	fmt.Printf("imported %d source(s) and %d destination(s) from %s\n", sources, dests, path)
	return nil
}

// entityRow is the list output form of one stored entity.
type entityRow struct {
	Kind        string            `json:"kind"`
	IP          string            `json:"ip"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes"`
}

func listInventory(cmd *cobra.Command, args []string) error {
	store, err := openInventory()
	if err != nil {
		return cli.NewCommandError("inventory", err)
	}
	defer store.Close()

	var rows []entityRow

	if inventoryFlags.kind == "source" || inventoryFlags.kind == "all" {
		sources, err := store.ListSources(cmd.Context())
		if err != nil {
			return cli.NewCommandError("inventory", err)
		}
		for _, src := range sources {
			attrs := make(map[string]string, len(src.Keys()))
			for _, key := range src.Keys() {
				v, _ := src.Attribute(key)
				attrs[string(key)] = v.String()
			}
			rows = append(rows, entityRow{Kind: "source", IP: src.IP, Description: src.Description, Attributes: attrs})
		}
	}

	if inventoryFlags.kind == "destination" || inventoryFlags.kind == "all" {
		dests, err := store.ListDestinations(cmd.Context())
		if err != nil {
			return cli.NewCommandError("inventory", err)
		}
		for _, dst := range dests {
			attrs := make(map[string]string, len(dst.Keys()))
			for _, key := range dst.Keys() {
				v, _ := dst.Attribute(key)
				attrs[string(key)] = v.String()
			}
			rows = append(rows, entityRow{Kind: "destination", IP: dst.IP, Description: dst.Description, Attributes: attrs})
		}
	}

	if inventoryFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, rows)
	}

	if len(rows) == 0 {
		fmt.Println("inventory is empty")
		return nil
	}
	for _, row := range rows {
		fmt.Printf("%-12s %-16s %s\n", row.Kind, row.IP, row.Description)
		for _, key := range sortedBitAttrs(row.Attributes) {
			fmt.Printf("  %-20s %s\n", key, row.Attributes[key])
		}
	}
	return nil
}

func deleteInventoryEntity(cmd *cobra.Command, args []string) error {
	store, err := openInventory()
	if err != nil {
		return cli.NewCommandError("inventory", err)
	}
	defer store.Close()

	ip := args[0]
	switch inventoryFlags.kind {
	case "source":
		err = store.DeleteSource(cmd.Context(), ip)
	case "destination":
		err = store.DeleteDestination(cmd.Context(), ip)
	default:
		return cli.NewCommandError("inventory", fmt.Errorf("unknown entity kind %q", inventoryFlags.kind))
	}
	if err != nil {
		return cli.NewCommandError("inventory", err)
	}

	fmt.Printf("deleted %s %s\n", inventoryFlags.kind, ip)
	return nil
}
