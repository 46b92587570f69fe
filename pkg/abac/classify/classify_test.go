package classify

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/encoding"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/eval"
	"osprey-hq/talon/pkg/abac/schema"
)

var (
	testAttrOrder   = []string{"Src.Role", "Src.Dept", "Src.TrustScore", "Src.Groups"}
	testTrustLadder = []int64{0, 50, 80}
)

func int64Ptr(v int64) *int64 { return &v }

func newTestSchema(t *testing.T) *schema.Map {
	t.Helper()

	role, err := schema.NewTableEntry(schema.ValueTypeSingle, map[uint32]string{
		0: "student", 1: "faculty", 2: "admin",
	})
	if err != nil {
		t.Fatalf("NewTableEntry(Src.Role) error = %v", err)
	}
	dept, err := schema.NewTableEntry(schema.ValueTypeSingle, map[uint32]string{
		0: "cs", 1: "ee",
	})
	if err != nil {
		t.Fatalf("NewTableEntry(Src.Dept) error = %v", err)
	}
	groups, err := schema.NewTableEntry(schema.ValueTypeMultiple, map[uint32]string{
		0: "lab-a", 1: "lab-b", 2: "gpu",
	})
	if err != nil {
		t.Fatalf("NewTableEntry(Src.Groups) error = %v", err)
	}
	trust, err := schema.NewNumericEntry(int64Ptr(0), int64Ptr(100))
	if err != nil {
		t.Fatalf("NewNumericEntry(Src.TrustScore) error = %v", err)
	}

	return schema.NewMap(map[string]*schema.Entry{
		"Src.Role":       role,
		"Src.Dept":       dept,
		"Src.Groups":     groups,
		"Src.TrustScore": trust,
	})
}

func newTestPolicies() []*ast.Policy {
	return []*ast.Policy{
		{
			Name:          "core",
			DefaultEffect: ast.EffectDeny,
			Rules: []*ast.Rule{
				{
					ID:     "r-server-faculty",
					Effect: ast.EffectAllow,
					Condition: &ast.And{Operands: []ast.Condition{
						&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "server"}},
						&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "faculty"}},
						&ast.Gte{LHS: &ast.AttrRef{Name: "Src.TrustScore"}, RHS: &ast.NumberLit{Value: 50}},
					}},
				},
				{
					ID:     "r-printer-student",
					Effect: ast.EffectAllow,
					Condition: &ast.And{Operands: []ast.Condition{
						&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
						&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "student"}},
					}},
				},
				{
					ID:        "r-cs-anywhere",
					Effect:    ast.EffectAllow,
					Condition: &ast.Eq{LHS: &ast.AttrRef{Name: "Src.Dept"}, RHS: &ast.StringLit{Value: "cs"}},
				},
			},
		},
	}
}

func newTestDestinations() []*entity.Destination {
	return []*entity.Destination{
		entity.NewDestination("10.1.0.20", "file server", map[entity.DestinationKey]entity.Value{
			entity.DestinationType:        entity.String("server"),
			entity.DestinationSensitivity: entity.Number(90),
		}),
		entity.NewDestination("10.1.0.30", "floor printer", map[entity.DestinationKey]entity.Value{
			entity.DestinationType:        entity.String("printer"),
			entity.DestinationSensitivity: entity.Number(10),
		}),
	}
}

func TestApplicableRules(t *testing.T) {
	c := New(&Config{Workers: 1}, eval.New(nil), nil)

	got, err := c.ApplicableRules(context.Background(), newTestPolicies(), newTestDestinations())
	if err != nil {
		t.Fatalf("ApplicableRules() error = %v", err)
	}

	want := []DestinationRules{
		{
			DestinationIP: "10.1.0.20",
			Rules: []RuleRef{
				{Policy: "core", RuleID: "r-server-faculty"},
				{Policy: "core", RuleID: "r-cs-anywhere"},
			},
		},
		{
			DestinationIP: "10.1.0.30",
			Rules: []RuleRef{
				{Policy: "core", RuleID: "r-printer-student"},
				{Policy: "core", RuleID: "r-cs-anywhere"},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ApplicableRules() = %+v, want %+v", got, want)
	}
}

func TestApplicableRulesPolicyOrder(t *testing.T) {
	policies := []*ast.Policy{
		{
			Name:          "first",
			DefaultEffect: ast.EffectDeny,
			Rules: []*ast.Rule{
				{ID: "a", Effect: ast.EffectAllow, Condition: &ast.Eq{LHS: &ast.AttrRef{Name: "Src.Dept"}, RHS: &ast.StringLit{Value: "cs"}}},
				{ID: "b", Effect: ast.EffectAllow, Condition: &ast.Eq{LHS: &ast.AttrRef{Name: "Src.Dept"}, RHS: &ast.StringLit{Value: "ee"}}},
			},
		},
		{
			Name:          "second",
			DefaultEffect: ast.EffectAllow,
			Rules: []*ast.Rule{
				{ID: "c", Effect: ast.EffectDeny, Condition: &ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "student"}}},
			},
		},
	}
	dests := []*entity.Destination{entity.NewDestination("10.2.0.1", "", nil)}

	c := New(nil, eval.New(nil), nil)
	got, err := c.ApplicableRules(context.Background(), policies, dests)
	if err != nil {
		t.Fatalf("ApplicableRules() error = %v", err)
	}

	want := []RuleRef{
		{Policy: "first", RuleID: "a"},
		{Policy: "first", RuleID: "b"},
		{Policy: "second", RuleID: "c"},
	}
	if !reflect.DeepEqual(got[0].Rules, want) {
		t.Errorf("ApplicableRules() rules = %+v, want %+v", got[0].Rules, want)
	}
}

func TestApplicableRulesPropagatesErrors(t *testing.T) {
	policies := []*ast.Policy{
		{
			Name:          "broken",
			DefaultEffect: ast.EffectDeny,
			Rules: []*ast.Rule{
				{
					ID:     "bad-compare",
					Effect: ast.EffectAllow,
					// References the destination so partial evaluation
					// must actually run the comparison, which fails on
					// the string operand.
					Condition: &ast.Gte{LHS: &ast.AttrRef{Name: "Dst.Sensitivity"}, RHS: &ast.StringLit{Value: "high"}},
				},
			},
		},
	}

	c := New(nil, eval.New(nil), nil)
	_, err := c.ApplicableRules(context.Background(), policies, newTestDestinations())
	if err == nil {
		t.Fatal("ApplicableRules() error = nil, want evaluation error")
	}
	if !strings.Contains(err.Error(), "bad-compare") {
		t.Errorf("error %q does not name the offending rule", err)
	}
}

func TestRequirementKeysSingleRule(t *testing.T) {
	role, err := schema.NewTableEntry(schema.ValueTypeSingle, map[uint32]string{
		0: "student", 1: "faculty",
	})
	if err != nil {
		t.Fatalf("NewTableEntry() error = %v", err)
	}
	m := schema.NewMap(map[string]*schema.Entry{"Src.Role": role})

	policies := []*ast.Policy{
		{
			Name:          "single",
			DefaultEffect: ast.EffectDeny,
			Rules: []*ast.Rule{
				{
					ID:        "faculty-only",
					Effect:    ast.EffectAllow,
					Condition: &ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "faculty"}},
				},
			},
		},
	}
	dests := []*entity.Destination{entity.NewDestination("10.3.0.9", "", nil)}

	c := New(nil, eval.New(nil), nil)
	got, err := c.RequirementKeys(context.Background(), policies, dests, m, []string{"Src.Role"}, testTrustLadder)
	if err != nil {
		t.Fatalf("RequirementKeys() error = %v", err)
	}

	if want := encoding.BitString(1 << 1); got[0].Bits["Src.Role"] != want {
		t.Errorf("Src.Role bits = %q, want %q", got[0].Bits["Src.Role"], want)
	}
	if got[0].Semantics.UseTrustScoreThreshold {
		t.Error("UseTrustScoreThreshold = true, want false")
	}
}

func TestRequirementKeys(t *testing.T) {
	m := newTestSchema(t)
	c := New(&Config{Workers: 2}, eval.New(nil), nil)

	got, err := c.RequirementKeys(context.Background(), newTestPolicies(), newTestDestinations(), m, testAttrOrder, testTrustLadder)
	if err != nil {
		t.Fatalf("RequirementKeys() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RequirementKeys() returned %d destinations, want 2", len(got))
	}

	server := got[0]
	if server.DestinationIP != "10.1.0.20" {
		t.Fatalf("first destination = %s, want 10.1.0.20", server.DestinationIP)
	}
	if want := encoding.BitString(1 << 1); server.Bits["Src.Role"] != want {
		t.Errorf("server Src.Role bits = %q, want %q", server.Bits["Src.Role"], want)
	}
	if want := encoding.BitString(1 << 0); server.Bits["Src.Dept"] != want {
		t.Errorf("server Src.Dept bits = %q, want %q", server.Bits["Src.Dept"], want)
	}
	if want := encoding.BitString(0); server.Bits["Src.TrustScore"] != want {
		t.Errorf("server Src.TrustScore bits = %q, want all zeros", server.Bits["Src.TrustScore"])
	}
	// ge 50 against ladder [0,50,80] reaches buckets 50 and 80.
	if want := encoding.BitString(0b110); server.Bits[encoding.ThresholdKey] != want {
		t.Errorf("server threshold bits = %q, want %q", server.Bits[encoding.ThresholdKey], want)
	}
	if !server.Semantics.UseTrustScoreThreshold {
		t.Error("server UseTrustScoreThreshold = false, want true")
	}

	printer := got[1]
	if printer.DestinationIP != "10.1.0.30" {
		t.Fatalf("second destination = %s, want 10.1.0.30", printer.DestinationIP)
	}
	if want := encoding.BitString(1 << 0); printer.Bits["Src.Role"] != want {
		t.Errorf("printer Src.Role bits = %q, want %q", printer.Bits["Src.Role"], want)
	}
	if _, ok := printer.Bits[encoding.ThresholdKey]; ok {
		t.Error("printer key carries a threshold slot, want none")
	}
	if printer.Semantics.UseTrustScoreThreshold {
		t.Error("printer UseTrustScoreThreshold = true, want false")
	}
	if len(printer.Bits) != len(testAttrOrder) {
		t.Errorf("printer key has %d slots, want %d", len(printer.Bits), len(testAttrOrder))
	}
}

func TestConcatenatedKeys(t *testing.T) {
	m := newTestSchema(t)
	c := New(nil, eval.New(nil), nil)

	concat, err := c.ConcatenatedKeys(context.Background(), newTestPolicies(), newTestDestinations(), m, testAttrOrder, testTrustLadder)
	if err != nil {
		t.Fatalf("ConcatenatedKeys() error = %v", err)
	}
	perAttr, err := c.RequirementKeys(context.Background(), newTestPolicies(), newTestDestinations(), m, testAttrOrder, testTrustLadder)
	if err != nil {
		t.Fatalf("RequirementKeys() error = %v", err)
	}

	for i, dest := range concat {
		if want := 32 * (len(testAttrOrder) + 1); len(dest.Key) != want {
			t.Errorf("destination %s key length = %d, want %d", dest.DestinationIP, len(dest.Key), want)
		}

		var sb strings.Builder
		for _, name := range testAttrOrder {
			sb.WriteString(perAttr[i].Bits[name])
		}
		if th, ok := perAttr[i].Bits[encoding.ThresholdKey]; ok {
			sb.WriteString(th)
		} else {
			sb.WriteString(encoding.BitString(0))
		}
		if dest.Key != sb.String() {
			t.Errorf("destination %s concatenated key disagrees with per-attr form", dest.DestinationIP)
		}
		if dest.Semantics != perAttr[i].Semantics {
			t.Errorf("destination %s semantics disagree: %+v vs %+v", dest.DestinationIP, dest.Semantics, perAttr[i].Semantics)
		}
	}
}

func TestRequirementKeysPropagatesCollectErrors(t *testing.T) {
	m := newTestSchema(t)
	policies := []*ast.Policy{
		{
			Name:          "broken",
			DefaultEffect: ast.EffectDeny,
			Rules: []*ast.Rule{
				{
					ID:     "needs-missing-attr",
					Effect: ast.EffectAllow,
					// The threshold side reads a destination attribute
					// the fixture destination does not carry.
					Condition: &ast.Gte{LHS: &ast.AttrRef{Name: "Src.TrustScore"}, RHS: &ast.AttrRef{Name: "Dst.Sensitivity"}},
				},
			},
		},
	}
	dests := []*entity.Destination{entity.NewDestination("10.9.0.1", "bare", nil)}

	c := New(nil, eval.New(nil), nil)
	_, err := c.RequirementKeys(context.Background(), policies, dests, m, testAttrOrder, testTrustLadder)
	if err == nil {
		t.Fatal("RequirementKeys() error = nil, want missing attribute error")
	}
	if !strings.Contains(err.Error(), "10.9.0.1") {
		t.Errorf("error %q does not name the destination", err)
	}
}

func TestClassifierWorkerCountsAgree(t *testing.T) {
	m := newTestSchema(t)

	serial := New(&Config{Workers: 1}, eval.New(nil), nil)
	parallel := New(&Config{Workers: 8}, eval.New(nil), nil)

	got1, err := serial.RequirementKeys(context.Background(), newTestPolicies(), newTestDestinations(), m, testAttrOrder, testTrustLadder)
	if err != nil {
		t.Fatalf("RequirementKeys(workers=1) error = %v", err)
	}
	got8, err := parallel.RequirementKeys(context.Background(), newTestPolicies(), newTestDestinations(), m, testAttrOrder, testTrustLadder)
	if err != nil {
		t.Fatalf("RequirementKeys(workers=8) error = %v", err)
	}
	if !reflect.DeepEqual(got1, got8) {
		t.Errorf("worker counts disagree:\n 1: %+v\n 8: %+v", got1, got8)
	}
}

func TestClassifierCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(nil, eval.New(nil), nil)
	_, err := c.ApplicableRules(ctx, newTestPolicies(), newTestDestinations())
	if err != context.Canceled {
		t.Errorf("ApplicableRules(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestClassifierNoDestinations(t *testing.T) {
	c := New(nil, eval.New(nil), nil)
	got, err := c.ApplicableRules(context.Background(), newTestPolicies(), nil)
	if err != nil {
		t.Fatalf("ApplicableRules(no destinations) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ApplicableRules(no destinations) = %+v, want empty", got)
	}
}
