package main

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/config"
)

func TestParseEnvValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.Value
	}{
		{name: "true", raw: "true", want: entity.Bool(true)},
		{name: "false", raw: "false", want: entity.Bool(false)},
		{name: "integer", raw: "42", want: entity.Number(42)},
		{name: "negative integer", raw: "-7", want: entity.Number(-7)},
		{name: "string", raw: "office", want: entity.String("office")},
		{name: "set", raw: "it,helpdesk", want: entity.Set("it", "helpdesk")},
		{name: "capitalized bool is a string", raw: "True", want: entity.String("True")},
		{name: "float is a string", raw: "3.5", want: entity.String("3.5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseEnvValue(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("parseEnvValue(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseEnvFlags(t *testing.T) {
	env, err := parseEnvFlags([]string{"MFA=true", "Env.Location=office", "SessionRisk=3"})
	if err != nil {
		t.Fatalf("parseEnvFlags() error = %v", err)
	}

	want := entity.Environment{
		"Env.MFA":         entity.Bool(true),
		"Env.Location":    entity.String("office"),
		"Env.SessionRisk": entity.Number(3),
	}
	if len(env) != len(want) {
		t.Fatalf("parseEnvFlags() produced %d entries, want %d", len(env), len(want))
	}
	for key, wantValue := range want {
		got, ok := env[key]
		if !ok {
			t.Errorf("parseEnvFlags() missing key %q", key)
			continue
		}
		if !got.Equal(wantValue) {
			t.Errorf("parseEnvFlags()[%q] = %v, want %v", key, got, wantValue)
		}
	}
}

func TestParseEnvFlagsMalformed(t *testing.T) {
	if _, err := parseEnvFlags([]string{"MFA"}); err == nil {
		t.Error("parseEnvFlags(no equals) error = nil, want error")
	}
}

func TestParseEnvFlagsEmpty(t *testing.T) {
	env, err := parseEnvFlags(nil)
	if err != nil {
		t.Fatalf("parseEnvFlags(nil) error = %v", err)
	}
	if env != nil {
		t.Errorf("parseEnvFlags(nil) = %v, want nil", env)
	}
}

func TestFilterPolicies(t *testing.T) {
	policies := []*ast.Policy{
		{Name: "lab-access"},
		{Name: "printer-access"},
	}

	got := filterPolicies(policies, "printer-access")
	if len(got) != 1 || got[0].Name != "printer-access" {
		t.Errorf("filterPolicies() = %v, want only printer-access", got)
	}

	if got := filterPolicies(policies, "absent"); len(got) != 0 {
		t.Errorf("filterPolicies(absent) = %v, want empty", got)
	}
}

func exampleDataConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Data.PoliciesDir = "../../examples/data/policies"
	cfg.Data.EntitiesFile = "../../examples/data/entities.json"
	cfg.Data.SchemaFile = "../../examples/data/schema.json"
	return cfg
}

func TestEvaluatePairExampleData(t *testing.T) {
	cfg := exampleDataConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	decisions, err := evaluatePair(context.Background(), cfg, logger, nil, "10.0.10.21", "10.1.20.11", nil, "")
	if err != nil {
		t.Fatalf("evaluatePair() error = %v", err)
	}
	if len(decisions) != 3 {
		t.Fatalf("evaluatePair() produced %d decisions, want 3", len(decisions))
	}

	want := []PolicyDecision{
		{Policy: "lab-access", Effect: "allow", MatchedRule: "it-group-servers"},
		{Policy: "printer-access", Effect: "allow", Default: true},
		{Policy: "trust-ladder", Effect: "allow", MatchedRule: "sensitive-tier"},
	}
	if !reflect.DeepEqual(decisions, want) {
		t.Errorf("evaluatePair() = %+v, want %+v", decisions, want)
	}
}

func TestEvaluatePairSinglePolicy(t *testing.T) {
	cfg := exampleDataConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	decisions, err := evaluatePair(context.Background(), cfg, logger, nil, "10.0.30.7", "10.1.10.5", nil, "printer-access")
	if err != nil {
		t.Fatalf("evaluatePair() error = %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("evaluatePair() produced %d decisions, want 1", len(decisions))
	}

	// Contractor trust score 30: printing is denied by the low-trust
	// carve-out.
	want := PolicyDecision{Policy: "printer-access", Effect: "deny", MatchedRule: "low-trust-printers"}
	if !reflect.DeepEqual(decisions[0], want) {
		t.Errorf("evaluatePair() = %+v, want %+v", decisions[0], want)
	}
}

func TestEvaluatePairUnknownEntities(t *testing.T) {
	cfg := exampleDataConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := evaluatePair(context.Background(), cfg, logger, nil, "10.9.9.9", "10.1.10.5", nil, ""); err == nil {
		t.Error("evaluatePair(unknown source) error = nil, want error")
	}
	if _, err := evaluatePair(context.Background(), cfg, logger, nil, "10.0.10.21", "10.9.9.9", nil, ""); err == nil {
		t.Error("evaluatePair(unknown destination) error = nil, want error")
	}
	if _, err := evaluatePair(context.Background(), cfg, logger, nil, "10.0.10.21", "10.1.10.5", nil, "absent"); err == nil {
		t.Error("evaluatePair(unknown policy) error = nil, want error")
	}
}
