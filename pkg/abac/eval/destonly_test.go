package eval

import (
	"errors"
	"testing"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
)

// TestConditionDestOnly tests three-valued partial evaluation
func TestConditionDestOnly(t *testing.T) {
	dst := testDestination()

	tests := []struct {
		name string
		cond ast.Condition
		want Ternary
	}{
		{
			name: "pure destination leaf true",
			cond: &ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "db"}},
			want: True,
		},
		{
			name: "pure destination leaf false",
			cond: &ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
			want: False,
		},
		{
			name: "source leaf is unknown",
			cond: &ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "faculty"}},
			want: Unknown,
		},
		{
			name: "env leaf is unknown",
			cond: &ast.Eq{LHS: &ast.EnvRef{Name: "Env.MFA"}, RHS: &ast.StringLit{Value: "on"}},
			want: Unknown,
		},
		{
			name: "mixed leaf is unknown",
			cond: &ast.Eq{LHS: &ast.AttrRef{Name: "Src.Dept"}, RHS: &ast.AttrRef{Name: "Dst.OwnerDept"}},
			want: Unknown,
		},
		{
			name: "literal-only leaf evaluates concretely",
			cond: &ast.Gte{LHS: &ast.NumberLit{Value: 3}, RHS: &ast.NumberLit{Value: 5}},
			want: False,
		},
		{
			name: "and with false destination branch",
			cond: &ast.And{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "faculty"}},
			}},
			want: False,
		},
		{
			name: "and with true destination branch and unknown branch",
			cond: &ast.And{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "db"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "faculty"}},
			}},
			want: Unknown,
		},
		{
			name: "and of definite truths",
			cond: &ast.And{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "db"}},
				&ast.Gte{LHS: &ast.AttrRef{Name: "Dst.Sensitivity"}, RHS: &ast.NumberLit{Value: 50}},
			}},
			want: True,
		},
		{
			name: "or with satisfied destination branch",
			cond: &ast.Or{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "db"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "admin"}},
			}},
			want: True,
		},
		{
			name: "or of false destination branch and source branch stays open",
			cond: &ast.Or{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "admin"}},
			}},
			want: Unknown,
		},
		{
			name: "or with every destination branch false",
			cond: &ast.Or{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.OwnerDept"}, RHS: &ast.StringLit{Value: "hr"}},
			}},
			want: False,
		},
		{
			name: "empty and",
			cond: &ast.And{},
			want: True,
		},
		{
			name: "empty or",
			cond: &ast.Or{},
			want: False,
		},
	}

	ev := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.ConditionDestOnly(tt.cond, dst)
			if err != nil {
				t.Fatalf("ConditionDestOnly() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ConditionDestOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestConditionDestOnlyErrors tests that concrete leaf failures propagate
func TestConditionDestOnlyErrors(t *testing.T) {
	ev := New(nil)
	bare := entity.NewDestination("10.9.0.99", "bare", nil)

	cond := &ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "db"}}
	_, err := ev.ConditionDestOnly(cond, bare)
	var missing *MissingAttributeError
	if !errors.As(err, &missing) {
		t.Fatalf("ConditionDestOnly() error = %v, want *MissingAttributeError", err)
	}
}

// TestRuleApplicable tests the destination-scoped applicability filter
func TestRuleApplicable(t *testing.T) {
	dst := testDestination()

	tests := []struct {
		name string
		cond ast.Condition
		want bool
	}{
		{
			name: "no destination references applies everywhere",
			cond: &ast.Gte{LHS: &ast.AttrRef{Name: "Src.TrustScore"}, RHS: &ast.NumberLit{Value: 50}},
			want: true,
		},
		{
			name: "matching destination gate",
			cond: &ast.And{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "db"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "faculty"}},
			}},
			want: true,
		},
		{
			name: "failing destination gate prunes the rule",
			cond: &ast.And{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "faculty"}},
			}},
			want: false,
		},
		{
			name: "open or branch keeps the rule",
			cond: &ast.Or{Operands: []ast.Condition{
				&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
				&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "admin"}},
			}},
			want: true,
		},
	}

	ev := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &ast.Rule{ID: "r", Effect: ast.EffectAllow, Condition: tt.cond}
			got, err := ev.RuleApplicable(rule, dst)
			if err != nil {
				t.Fatalf("RuleApplicable() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("RuleApplicable() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestApplicabilitySoundness tests that the filter never prunes a rule
// some source could match
func TestApplicabilitySoundness(t *testing.T) {
	dst := testDestination()

	sources := []*entity.Source{
		testSource(),
		entity.NewSource("10.0.4.8", "student laptop", map[entity.SourceKey]entity.Value{
			entity.SourceRole:       entity.String("student"),
			entity.SourceDept:       entity.String("hr"),
			entity.SourceTrustScore: entity.Number(20),
			entity.SourceGroups:     entity.Set("guests"),
		}),
		entity.NewSource("10.0.4.9", "admin console", map[entity.SourceKey]entity.Value{
			entity.SourceRole:       entity.String("admin"),
			entity.SourceDept:       entity.String("eng"),
			entity.SourceTrustScore: entity.Number(95),
			entity.SourceGroups:     entity.Set("eng-core", "ops"),
		}),
	}

	conds := []ast.Condition{
		&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Role"}, RHS: &ast.StringLit{Value: "admin"}},
		&ast.And{Operands: []ast.Condition{
			&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "db"}},
			&ast.Gte{LHS: &ast.AttrRef{Name: "Src.TrustScore"}, RHS: &ast.NumberLit{Value: 90}},
		}},
		&ast.Or{Operands: []ast.Condition{
			&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.Type"}, RHS: &ast.StringLit{Value: "printer"}},
			&ast.Eq{LHS: &ast.AttrRef{Name: "Src.Dept"}, RHS: &ast.StringLit{Value: "hr"}},
		}},
		&ast.Or{Operands: []ast.Condition{
			&ast.Eq{LHS: &ast.AttrRef{Name: "Dst.OwnerDept"}, RHS: &ast.AttrRef{Name: "Src.Dept"}},
			&ast.InSet{Value: &ast.StringLit{Value: "ops"}, Set: &ast.AttrRef{Name: "Src.Groups"}},
		}},
	}

	ev := New(nil)
	for i, cond := range conds {
		rule := &ast.Rule{ID: "r", Effect: ast.EffectAllow, Condition: cond}
		applicable, err := ev.RuleApplicable(rule, dst)
		if err != nil {
			t.Fatalf("RuleApplicable(cond %d) failed: %v", i, err)
		}
		for _, src := range sources {
			matched, err := ev.Condition(cond, src, dst, nil)
			if err != nil {
				t.Fatalf("Condition(cond %d, src %s) failed: %v", i, src.IP, err)
			}
			if matched && !applicable {
				t.Errorf("cond %d: source %s matches but filter pruned the rule", i, src.IP)
			}
		}
	}
}
