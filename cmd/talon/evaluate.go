package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/eval"
	"osprey-hq/talon/pkg/cli"
	"osprey-hq/talon/pkg/compiler"
	"osprey-hq/talon/pkg/config"
	"osprey-hq/talon/pkg/telemetry/tracing"
)

var evaluateFlags struct {
	sourceIP string
	destIP   string
	env      []string
	policy   string
	format   string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate policies for one source/destination pair",
	Long: `Evaluate the configured policy set for one source and destination.

This is the slow path: the same semantics the compiled bit keys encode,
executed exactly. Each policy reports the effect of its first matching
rule, or its default effect when no rule matches.

Environment values are passed as key=value pairs: "true"/"false" parse
as booleans, integers as numbers, comma-separated lists as sets, and
everything else as strings. Keys are prefixed with "Env." when the
prefix is omitted.

Examples:
  # Evaluate a pair against every policy
  talon evaluate --source 10.0.0.8 --dest 10.1.0.20

  # Provide environment attributes
  talon evaluate --source 10.0.0.8 --dest 10.1.0.20 --env MFA=true

  # Restrict to one policy, JSON output
  talon evaluate --source 10.0.0.8 --dest 10.1.0.20 --policy lab-access --format json`,
	RunE: evaluatePolicies,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.sourceIP, "source", "s", "", "source entity IP (required)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.destIP, "dest", "d", "", "destination entity IP (required)")
	evaluateCmd.Flags().StringArrayVarP(&evaluateFlags.env, "env", "e", nil, "environment attribute (key=value, repeatable)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.policy, "policy", "p", "", "evaluate only the named policy")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "text", "output format: text, json")

	evaluateCmd.MarkFlagRequired("source")
	evaluateCmd.MarkFlagRequired("dest")
}

// PolicyDecision is the evaluation outcome of one policy for one
// source/destination pair.
type PolicyDecision struct {
	Policy      string `json:"policy"`
	Effect      string `json:"effect"`
	MatchedRule string `json:"matched_rule,omitempty"`
	Default     bool   `json:"default"`
}

func evaluatePolicies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	env, err := parseEnvFlags(evaluateFlags.env)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(ctx, "cli.evaluate")
	decisions, err := evaluatePair(ctx, cfg, logger, nil, evaluateFlags.sourceIP, evaluateFlags.destIP, env, evaluateFlags.policy)
	if err != nil {
		tracing.SetError(span, err)
		span.End()
		return cli.NewCommandError("evaluate", err)
	}
	span.End()

	if evaluateFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, decisions)
	}
	for _, d := range decisions {
		if d.Default {
			fmt.Printf("%-24s %-5s (default effect)\n", d.Policy, d.Effect)
			continue
		}
		fmt.Printf("%-24s %-5s (rule %s)\n", d.Policy, d.Effect, d.MatchedRule)
	}
	return nil
}

// evaluatePair loads the configured inputs and evaluates every policy
// (or the one named) for the given source/destination pair. This is the
// slow path shared by the evaluate command and the run service's
// evaluate endpoint. A nil entitySource loads entities from the
// configured files.
func evaluatePair(ctx context.Context, cfg *config.Config, logger *slog.Logger, entitySource compiler.EntitySource, sourceIP, destIP string, env entity.Environment, onlyPolicy string) ([]PolicyDecision, error) {
	source := compiler.NewFileSource(cfg.Data.PoliciesDir, cfg.Data.EntitiesFile, cfg.Data.SchemaFile, logger)
	if entitySource == nil {
		entitySource = source
	}

	schemaMap, err := source.LoadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	entities, err := entitySource.LoadEntities(ctx, schemaMap)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}
	policies, err := source.LoadPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	src := entities.SourceByIP(sourceIP)
	if src == nil {
		return nil, fmt.Errorf("unknown source entity %q", sourceIP)
	}
	dst := entities.DestinationByIP(destIP)
	if dst == nil {
		return nil, fmt.Errorf("unknown destination entity %q", destIP)
	}

	if onlyPolicy != "" {
		policies = filterPolicies(policies, onlyPolicy)
		if len(policies) == 0 {
			return nil, fmt.Errorf("unknown policy %q", onlyPolicy)
		}
	}

	evaluator := eval.New(logger)
	decisions := make([]PolicyDecision, 0, len(policies))
	for _, p := range policies {
		decision, err := evaluator.Policy(p, src, dst, env)
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", p.Name, err)
		}
		pd := PolicyDecision{
			Policy:  p.Name,
			Effect:  string(decision.Effect),
			Default: decision.MatchedRule == nil,
		}
		if decision.MatchedRule != nil {
			pd.MatchedRule = decision.MatchedRule.ID
		}
		decisions = append(decisions, pd)
	}
	return decisions, nil
}

func filterPolicies(policies []*ast.Policy, name string) []*ast.Policy {
	var out []*ast.Policy
	for _, p := range policies {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// parseEnvFlags turns repeated key=value flags into an environment map.
func parseEnvFlags(pairs []string) (entity.Environment, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(entity.Environment, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --env %q, want key=value", pair)
		}
		if !strings.HasPrefix(key, ast.EnvPrefix) {
			key = ast.EnvPrefix + key
		}
		env[key] = parseEnvValue(raw)
	}
	return env, nil
}

func parseEnvValue(raw string) entity.Value {
	switch raw {
	case "true":
		return entity.Bool(true)
	case "false":
		return entity.Bool(false)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return entity.Number(n)
	}
	if strings.Contains(raw, ",") {
		return entity.Set(strings.Split(raw, ",")...)
	}
	return entity.String(raw)
}
