package ast

import "testing"

// TestReferencePredicates tests Src/Dst/Env reference detection
func TestReferencePredicates(t *testing.T) {
	tests := []struct {
		name       string
		cond       Condition
		wantDst    bool
		wantSrcEnv bool
	}{
		{
			name:       "pure source leaf",
			cond:       &Eq{LHS: &AttrRef{Name: "Src.Role"}, RHS: &StringLit{Value: "faculty"}},
			wantDst:    false,
			wantSrcEnv: true,
		},
		{
			name:       "pure destination leaf",
			cond:       &Eq{LHS: &AttrRef{Name: "Dst.Type"}, RHS: &StringLit{Value: "db"}},
			wantDst:    true,
			wantSrcEnv: false,
		},
		{
			name:       "env reference",
			cond:       &Eq{LHS: &EnvRef{Name: "Env.MFA"}, RHS: &StringLit{Value: "on"}},
			wantDst:    false,
			wantSrcEnv: true,
		},
		{
			name:       "literals only",
			cond:       &Gte{LHS: &NumberLit{Value: 3}, RHS: &NumberLit{Value: 2}},
			wantDst:    false,
			wantSrcEnv: false,
		},
		{
			name:       "mixed comparison",
			cond:       &Eq{LHS: &AttrRef{Name: "Src.Dept"}, RHS: &AttrRef{Name: "Dst.OwnerDept"}},
			wantDst:    true,
			wantSrcEnv: true,
		},
		{
			name: "reference nested under arithmetic",
			cond: &Gte{
				LHS: &Add{Operands: []Expr{&NumberLit{Value: 10}, &AttrRef{Name: "Dst.Sensitivity"}}},
				RHS: &NumberLit{Value: 50},
			},
			wantDst:    true,
			wantSrcEnv: false,
		},
		{
			name: "reference nested under logical nodes",
			cond: &And{Operands: []Condition{
				&Or{Operands: []Condition{
					&In{Target: &StringLit{Value: "v10"}, CheckAgainst: &AttrRef{Name: "Dst.AllowedVLANs"}},
				}},
			}},
			wantDst:    true,
			wantSrcEnv: false,
		},
		{
			name:       "inset with source set side",
			cond:       &InSet{Value: &StringLit{Value: "eng-core"}, Set: &AttrRef{Name: "Src.Groups"}},
			wantDst:    false,
			wantSrcEnv: true,
		},
		{
			name:       "empty and",
			cond:       &And{},
			wantDst:    false,
			wantSrcEnv: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReferencesDestination(tt.cond); got != tt.wantDst {
				t.Errorf("ReferencesDestination() = %v, want %v", got, tt.wantDst)
			}
			if got := ReferencesSourceOrEnv(tt.cond); got != tt.wantSrcEnv {
				t.Errorf("ReferencesSourceOrEnv() = %v, want %v", got, tt.wantSrcEnv)
			}
		})
	}
}

// TestIsSourceRef tests bare reference detection used by extraction
func TestIsSourceRef(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want bool
	}{
		{name: "source ref", expr: &AttrRef{Name: "Src.Role"}, want: true},
		{name: "destination ref", expr: &AttrRef{Name: "Dst.Type"}, want: false},
		{name: "env ref", expr: &EnvRef{Name: "Env.MFA"}, want: false},
		{name: "literal", expr: &StringLit{Value: "Src.Role"}, want: false},
		{
			name: "source ref under add is not bare",
			expr: &Add{Operands: []Expr{&AttrRef{Name: "Src.TrustScore"}}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSourceRef(tt.expr); got != tt.want {
				t.Errorf("IsSourceRef() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestParseEffect tests effect parsing
func TestParseEffect(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Effect
		wantErr bool
	}{
		{name: "allow", input: "allow", want: EffectAllow},
		{name: "deny", input: "deny", want: EffectDeny},
		{name: "capitalized", input: "Allow", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "audit", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEffect(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEffect(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseEffect(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestConditionString tests the diagnostic rendering
func TestConditionString(t *testing.T) {
	cond := &And{Operands: []Condition{
		&Eq{LHS: &AttrRef{Name: "Src.Role"}, RHS: &StringLit{Value: "faculty"}},
		&Gte{LHS: &AttrRef{Name: "Src.TrustScore"}, RHS: &Add{Operands: []Expr{
			&NumberLit{Value: 40},
			&NumberLit{Value: 10},
		}}},
	}}

	want := `and(eq(Src.Role, "faculty"), gte(Src.TrustScore, add(40, 10)))`
	if got := cond.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
