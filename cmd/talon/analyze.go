package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/analysis"
	"osprey-hq/talon/pkg/cli"
	"osprey-hq/talon/pkg/compiler"
	"osprey-hq/talon/pkg/config"
	"osprey-hq/talon/pkg/dataset"
)

var analyzeFlags struct {
	dataset string
	target  string
	format  string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze attribute distributions",
	Long: `Analyze the attribute distributions of an entity population.

Subcommands:
  entropy - Shannon entropy per attribute
  tree    - ID3 decision tree over a lab dataset

By default the configured entity inventory is analyzed. With
--dataset, a textual lab dataset (userAttrib/resourceAttrib/rule
lines) is analyzed instead.

Examples:
  # Entropy of the configured entity population
  talon analyze entropy

  # Entropy of a lab dataset
  talon analyze entropy --dataset lab.abac

  # Train a decision tree predicting a user attribute
  talon analyze tree --dataset lab.abac --target position`,
}

var analyzeEntropyCmd = &cobra.Command{
	Use:   "entropy",
	Short: "Shannon entropy per attribute",
	RunE:  analyzeEntropy,
}

var analyzeTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "ID3 decision tree over a lab dataset",
	RunE:  analyzeTree,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeEntropyCmd, analyzeTreeCmd)

	analyzeEntropyCmd.Flags().StringVar(&analyzeFlags.dataset, "dataset", "", "lab dataset file (.abac)")
	analyzeEntropyCmd.Flags().StringVar(&analyzeFlags.format, "format", "text", "output format: text, json")

	analyzeTreeCmd.Flags().StringVar(&analyzeFlags.dataset, "dataset", "", "lab dataset file (.abac, required)")
	analyzeTreeCmd.Flags().StringVar(&analyzeFlags.target, "target", string(dataset.UserPosition), "user attribute to predict")
	analyzeTreeCmd.MarkFlagRequired("dataset")
}

// AttributeEntropy is one attribute's Shannon entropy over a
// population.
type AttributeEntropy struct {
	Population string  `json:"population"`
	Attribute  string  `json:"attribute"`
	Entropy    float64 `json:"entropy"`
}

func analyzeEntropy(cmd *cobra.Command, args []string) error {
	var rows []AttributeEntropy
	var err error
	if analyzeFlags.dataset != "" {
		rows, err = datasetEntropy(analyzeFlags.dataset)
	} else {
		var cfg *config.Config
		cfg, err = loadConfig()
		if err != nil {
			return cli.NewCommandError("analyze", err)
		}
		rows, err = entityEntropy(cmd.Context(), cfg)
	}
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	if analyzeFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, rows)
	}
	for _, row := range rows {
		fmt.Printf("%-12s %-20s %.4f\n", row.Population, row.Attribute, row.Entropy)
	}
	return nil
}

func entityEntropy(ctx context.Context, cfg *config.Config) ([]AttributeEntropy, error) {
	source := compiler.NewFileSource(cfg.Data.PoliciesDir, cfg.Data.EntitiesFile, cfg.Data.SchemaFile, nil)
	schemaMap, err := source.LoadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	entities, err := source.LoadEntities(ctx, schemaMap)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}

	var rows []AttributeEntropy
	for _, key := range entity.SourceKeys() {
		rows = append(rows, AttributeEntropy{
			Population: "source",
			Attribute:  string(key),
			Entropy:    analysis.SourceAttributeEntropy(entities.Sources, key),
		})
	}
	for _, key := range entity.DestinationKeys() {
		rows = append(rows, AttributeEntropy{
			Population: "destination",
			Attribute:  string(key),
			Entropy:    analysis.DestinationAttributeEntropy(entities.Destinations, key),
		})
	}
	return rows, nil
}

func datasetEntropy(path string) ([]AttributeEntropy, error) {
	ds, err := dataset.ParseFile(path)
	if err != nil {
		return nil, err
	}

	var rows []AttributeEntropy
	for _, key := range dataset.UserKeys() {
		rows = append(rows, AttributeEntropy{
			Population: "user",
			Attribute:  string(key),
			Entropy:    analysis.UserAttributeEntropy(ds.Users, key),
		})
	}
	for _, key := range dataset.ResourceKeys() {
		rows = append(rows, AttributeEntropy{
			Population: "resource",
			Attribute:  string(key),
			Entropy:    analysis.ResourceAttributeEntropy(ds.Resources, key),
		})
	}
	return rows, nil
}

func analyzeTree(cmd *cobra.Command, args []string) error {
	target, err := dataset.ParseUserKey(analyzeFlags.target)
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	ds, err := dataset.ParseFile(analyzeFlags.dataset)
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	samples, attrs := userSamples(ds.Users, target)
	if len(samples) == 0 {
		return cli.NewCommandError("analyze", fmt.Errorf("no users carry attribute %q", target))
	}

	tree := analysis.BuildTree(samples, attrs)

	correct := 0
	for _, s := range samples {
		if tree.Classify(s.Attributes) == s.Decision {
			correct++
		}
	}

	fmt.Printf("dataset:           %s\n", analyzeFlags.dataset)
	fmt.Printf("target attribute:  %s\n", target)
	fmt.Printf("training samples:  %d\n", len(samples))
	fmt.Printf("tree depth:        %d\n", tree.Depth())
	fmt.Printf("training accuracy: %d/%d\n", correct, len(samples))
	return nil
}

// userSamples projects the users onto labeled ID3 samples: the target
// attribute becomes the decision, every other carried attribute a
// split candidate. Users missing the target are skipped.
func userSamples(users []dataset.User, target dataset.UserKey) ([]analysis.Sample, []string) {
	var samples []analysis.Sample
	attrSet := make(map[string]bool)

	for _, user := range users {
		targetValue, ok := user.Attributes[target]
		if !ok {
			continue
		}
		attrs := make(map[string]string, len(user.Attributes)-1)
		for key, value := range user.Attributes {
			if key == target {
				continue
			}
			attrs[string(key)] = analysis.Label(value)
			attrSet[string(key)] = true
		}
		samples = append(samples, analysis.Sample{
			Attributes: attrs,
			Decision:   analysis.Label(targetValue),
		})
	}

	attrs := make([]string, 0, len(attrSet))
	for attr := range attrSet {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return samples, attrs
}
