package validator

import (
	"fmt"

	"osprey-hq/talon/pkg/abac/ast"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

// maxConditionDepth bounds condition nesting. The parser enforces its own
// limit while loading; this one covers policies assembled in code.
const maxConditionDepth = 10

// StructuralValidator validates the structural integrity of a policy.
// It checks required fields, effect values, duplicate rule ids, and the
// shape of every condition tree.
type StructuralValidator struct {
	errors *abacErrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{
		errors: abacErrors.NewErrorList(),
	}
}

// Validate performs structural validation on a policy.
// It returns an ErrorList containing all structural errors found.
func (v *StructuralValidator) Validate(policy *ast.Policy) error {
	v.errors = abacErrors.NewErrorList()

	v.validateMetadata(policy)
	v.validateRules(policy)

	return v.errors.ToError()
}

// validateMetadata validates policy-level fields. An empty rule list is
// legal; such a policy always produces its default effect.
func (v *StructuralValidator) validateMetadata(policy *ast.Policy) {
	if policy.Name == "" {
		v.errors.AddErrorWithSuggestion(
			abacErrors.ErrorTypeStructural,
			"Missing required field 'policy_name'",
			abacErrors.Location{},
			abacErrors.SuggestMissingField("policy_name", `"lab-access"`),
		)
	}

	if !policy.DefaultEffect.Valid() {
		v.errors.AddErrorWithSuggestion(
			abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Policy %q has invalid default effect %q", policy.Name, policy.DefaultEffect),
			abacErrors.Location{},
			fmt.Sprintf("Use %q or %q", ast.EffectAllow, ast.EffectDeny),
		)
	}
}

// validateRules validates all rules in the policy.
func (v *StructuralValidator) validateRules(policy *ast.Policy) {
	ruleIDs := make(map[string]bool)

	for i, rule := range policy.Rules {
		if rule == nil {
			v.errors.AddError(
				abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule at index %d is nil", i),
				abacErrors.Location{},
			)
			continue
		}

		// Rule id is required
		if rule.ID == "" {
			v.errors.AddErrorWithSuggestion(
				abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule at index %d missing required field 'id'", i),
				abacErrors.Location{},
				"Add a unique id for this rule",
			)
			continue
		}

		// Rule ids must be unique within a policy
		if ruleIDs[rule.ID] {
			v.errors.AddError(
				abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate rule id %q", rule.ID),
				abacErrors.Location{},
			)
		}
		ruleIDs[rule.ID] = true

		if !rule.Effect.Valid() {
			v.errors.AddErrorWithSuggestion(
				abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule %q has invalid effect %q", rule.ID, rule.Effect),
				abacErrors.Location{},
				fmt.Sprintf("Use %q or %q", ast.EffectAllow, ast.EffectDeny),
			)
		}

		if rule.Condition == nil {
			v.errors.AddError(
				abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule %q has no condition", rule.ID),
				abacErrors.Location{},
			)
			continue
		}

		v.validateConditionStructure(rule.Condition, rule.ID, 0)
	}
}

// validateConditionStructure validates the shape of a condition tree:
// no nil nodes, no nil expression sides, bounded nesting depth. Empty
// AND/OR operand lists pass; their evaluation is well defined (AND of
// nothing is true, OR of nothing is false).
func (v *StructuralValidator) validateConditionStructure(cond ast.Condition, ruleID string, depth int) {
	if depth > maxConditionDepth {
		v.errors.AddError(
			abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q exceeds maximum condition nesting depth of %d", ruleID, maxConditionDepth),
			abacErrors.Location{},
		)
		return
	}

	switch c := cond.(type) {
	case *ast.And:
		v.validateOperandList(c.Operands, "AND", ruleID, depth)
	case *ast.Or:
		v.validateOperandList(c.Operands, "OR", ruleID, depth)

	case *ast.Eq:
		v.validateExprStructure(c.LHS, "EQ lhs", ruleID, depth)
		v.validateExprStructure(c.RHS, "EQ rhs", ruleID, depth)
	case *ast.Gte:
		v.validateExprStructure(c.LHS, "GTE lhs", ruleID, depth)
		v.validateExprStructure(c.RHS, "GTE rhs", ruleID, depth)
	case *ast.Gt:
		v.validateExprStructure(c.LHS, "GT lhs", ruleID, depth)
		v.validateExprStructure(c.RHS, "GT rhs", ruleID, depth)
	case *ast.Lt:
		v.validateExprStructure(c.LHS, "LT lhs", ruleID, depth)
		v.validateExprStructure(c.RHS, "LT rhs", ruleID, depth)

	case *ast.In:
		v.validateExprStructure(c.Target, "IN target", ruleID, depth)
		v.validateExprStructure(c.CheckAgainst, "IN check_against", ruleID, depth)
	case *ast.InSet:
		v.validateExprStructure(c.Value, "IN value", ruleID, depth)
		v.validateExprStructure(c.Set, "IN set", ruleID, depth)

	default:
		v.errors.AddError(
			abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q has condition of unknown type %T", ruleID, cond),
			abacErrors.Location{},
		)
	}
}

func (v *StructuralValidator) validateOperandList(operands []ast.Condition, op, ruleID string, depth int) {
	for i, child := range operands {
		if child == nil {
			v.errors.AddError(
				abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule %q has nil %s operand at index %d", ruleID, op, i),
				abacErrors.Location{},
			)
			continue
		}
		v.validateConditionStructure(child, ruleID, depth+1)
	}
}

// validateExprStructure validates the shape of an expression tree.
func (v *StructuralValidator) validateExprStructure(expr ast.Expr, where, ruleID string, depth int) {
	if depth > maxConditionDepth {
		v.errors.AddError(
			abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q exceeds maximum condition nesting depth of %d", ruleID, maxConditionDepth),
			abacErrors.Location{},
		)
		return
	}

	if expr == nil {
		v.errors.AddError(
			abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q has nil expression in %s", ruleID, where),
			abacErrors.Location{},
		)
		return
	}

	switch e := expr.(type) {
	case *ast.StringLit, *ast.NumberLit, *ast.AttrRef, *ast.EnvRef:
		// Leaf nodes carry no structure to check here.

	case *ast.Add:
		for i, operand := range e.Operands {
			v.validateExprStructure(operand, fmt.Sprintf("ADD operand %d", i), ruleID, depth+1)
		}
	case *ast.Multiply:
		for i, operand := range e.Operands {
			v.validateExprStructure(operand, fmt.Sprintf("MULTIPLY operand %d", i), ruleID, depth+1)
		}

	default:
		v.errors.AddError(
			abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q has expression of unknown type %T in %s", ruleID, expr, where),
			abacErrors.Location{},
		)
	}
}
