package main

import (
	"testing"
)

func TestLintPoliciesValidFile(t *testing.T) {
	lintFlags.file = "../../examples/data/policies/lab-access.json"
	lintFlags.dir = ""
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err != nil {
		t.Errorf("lintPolicies() with valid file returned error: %v", err)
	}
}

func TestLintPoliciesValidDirectory(t *testing.T) {
	lintFlags.file = ""
	lintFlags.dir = "../../examples/data/policies"
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err != nil {
		t.Errorf("lintPolicies() with valid directory returned error: %v", err)
	}
}

func TestLintPoliciesInvalidFile(t *testing.T) {
	lintFlags.file = "testdata/invalid-policy.json"
	lintFlags.dir = ""
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies() with invalid file should return error")
	}
}

func TestLintPoliciesNonexistentFile(t *testing.T) {
	lintFlags.file = "testdata/nonexistent.json"
	lintFlags.dir = ""
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies() with nonexistent file should return error")
	}
}

func TestLintPoliciesNoFileOrDir(t *testing.T) {
	lintFlags.file = ""
	lintFlags.dir = ""

	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies() without file or dir should return error")
	}
}

func TestValidatePolicyFile(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantValid bool
	}{
		{name: "valid json", path: "../../examples/data/policies/lab-access.json", wantValid: true},
		{name: "valid jsonc", path: "../../examples/data/policies/printer-access.jsonc", wantValid: true},
		{name: "valid yaml", path: "../../examples/data/policies/trust-ladder.yaml", wantValid: true},
		{name: "bad default effect", path: "testdata/invalid-policy.json", wantValid: false},
		{name: "duplicate rule ids", path: "testdata/dup-rule-policy.json", wantValid: false},
		{name: "missing file", path: "testdata/nope.json", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lintFlags.strict = false
			result := validatePolicyFile(tt.path)
			if result.Valid != tt.wantValid {
				t.Errorf("validatePolicyFile(%s).Valid = %v, want %v (errors: %v)",
					tt.path, result.Valid, tt.wantValid, result.Errors)
			}
			if !tt.wantValid && len(result.Errors) == 0 {
				t.Error("invalid result carries no errors")
			}
		})
	}
}
