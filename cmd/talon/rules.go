package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/abac/classify"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/eval"
	"osprey-hq/talon/pkg/cli"
	"osprey-hq/talon/pkg/compiler"
)

var rulesFlags struct {
	destIP   string
	showKeys bool
	concat   bool
	format   string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List applicable rules per destination",
	Long: `List the rules still in play for each destination after
destination-only partial evaluation.

A rule is applicable when its condition does not reference the
destination at all, or when the destination-only projection of the
condition is not definitively false. With --keys, the compiled
per-attribute requirement bits are shown alongside.

Examples:
  # Rules for every destination
  talon rules

  # One destination, with its compiled key bits
  talon rules --dest 10.1.0.20 --keys

  # Concatenated single-string keys, JSON output
  talon rules --keys --concat --format json`,
	RunE: listRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesFlags.destIP, "dest", "d", "", "restrict to one destination IP")
	rulesCmd.Flags().BoolVarP(&rulesFlags.showKeys, "keys", "k", false, "show compiled requirement key bits")
	rulesCmd.Flags().BoolVar(&rulesFlags.concat, "concat", false, "render keys as one concatenated bit string")
	rulesCmd.Flags().StringVar(&rulesFlags.format, "format", "text", "output format: text, json")
}

// DestinationReport is one destination's applicable rules and,
// optionally, its compiled requirement key.
type DestinationReport struct {
	DestinationIP string            `json:"dest_ip"`
	Rules         []string          `json:"rules"`
	Bits          map[string]string `json:"bits,omitempty"`
	Key           string            `json:"key,omitempty"`
}

func listRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("rules", err)
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}

	ctx := cmd.Context()
	source := compiler.NewFileSource(cfg.Data.PoliciesDir, cfg.Data.EntitiesFile, cfg.Data.SchemaFile, logger)

	schemaMap, err := source.LoadSchema(ctx)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}
	entities, err := source.LoadEntities(ctx, schemaMap)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}
	policies, err := source.LoadPolicies(ctx)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}

	dests := entities.Destinations
	if rulesFlags.destIP != "" {
		dst := entities.DestinationByIP(rulesFlags.destIP)
		if dst == nil {
			return cli.NewCommandError("rules", fmt.Errorf("unknown destination entity %q", rulesFlags.destIP))
		}
		dests = []*entity.Destination{dst}
	}

	classifier := classify.New(&classify.Config{Workers: cfg.Compiler.Workers}, eval.New(logger), logger)

	ruleSets, err := classifier.ApplicableRules(ctx, policies, dests)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}

	reports := make([]DestinationReport, len(ruleSets))
	for i, rs := range ruleSets {
		refs := make([]string, len(rs.Rules))
		for j, ref := range rs.Rules {
			refs[j] = ref.Policy + "/" + ref.RuleID
		}
		reports[i] = DestinationReport{DestinationIP: rs.DestinationIP, Rules: refs}
	}

	if rulesFlags.showKeys {
		if rulesFlags.concat {
			keys, err := classifier.ConcatenatedKeys(ctx, policies, dests, schemaMap, cfg.Key.AttrOrder, cfg.Key.TrustThresholds)
			if err != nil {
				return cli.NewCommandError("rules", err)
			}
			for i, k := range keys {
				reports[i].Key = k.Key
			}
		} else {
			keys, err := classifier.RequirementKeys(ctx, policies, dests, schemaMap, cfg.Key.AttrOrder, cfg.Key.TrustThresholds)
			if err != nil {
				return cli.NewCommandError("rules", err)
			}
			for i, k := range keys {
				reports[i].Bits = k.Bits
			}
		}
	}

	if rulesFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, reports)
	}

	for _, r := range reports {
		fmt.Printf("%s\n", r.DestinationIP)
		if len(r.Rules) == 0 {
			fmt.Println("  (no applicable rules)")
		}
		for _, ref := range r.Rules {
			fmt.Printf("  %s\n", ref)
		}
		if r.Key != "" {
			fmt.Printf("  key: %s\n", r.Key)
		}
		for _, attr := range sortedBitAttrs(r.Bits) {
			fmt.Printf("  %-28s %s\n", attr, r.Bits[attr])
		}
		fmt.Println()
	}
	return nil
}

func sortedBitAttrs(bits map[string]string) []string {
	attrs := make([]string, 0, len(bits))
	for attr := range bits {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return attrs
}
