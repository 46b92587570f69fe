package validator

import (
	"fmt"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

// SemanticValidator validates semantic correctness of policies. It checks
// attribute references against the data model and flags expressions whose
// static kind guarantees an evaluation error: a string where an ordering
// comparison, arithmetic operation, or set is required. Kind mismatches
// that merely evaluate to false, such as EQ between a number and a
// string, are legal and not flagged. Environment references resolve at
// evaluation time and carry no static kind.
type SemanticValidator struct {
	errors *abacErrors.ErrorList
}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{
		errors: abacErrors.NewErrorList(),
	}
}

// Validate performs semantic validation on a policy.
func (v *SemanticValidator) Validate(policy *ast.Policy) error {
	v.errors = abacErrors.NewErrorList()

	for _, rule := range policy.Rules {
		if rule == nil || rule.Condition == nil {
			continue
		}
		v.validateCondition(rule.Condition, rule.ID)
	}

	return v.errors.ToError()
}

// validateCondition validates a condition node.
func (v *SemanticValidator) validateCondition(cond ast.Condition, ruleID string) {
	switch c := cond.(type) {
	case *ast.And:
		for _, child := range c.Operands {
			if child != nil {
				v.validateCondition(child, ruleID)
			}
		}
	case *ast.Or:
		for _, child := range c.Operands {
			if child != nil {
				v.validateCondition(child, ruleID)
			}
		}

	case *ast.Eq:
		// Equality is defined for every kind pair; mismatches are false.
		v.validateExpr(c.LHS, ruleID)
		v.validateExpr(c.RHS, ruleID)

	case *ast.Gte:
		v.validateOrdering("GTE", c.LHS, c.RHS, ruleID)
	case *ast.Gt:
		v.validateOrdering("GT", c.LHS, c.RHS, ruleID)
	case *ast.Lt:
		v.validateOrdering("LT", c.LHS, c.RHS, ruleID)

	case *ast.In:
		v.validateMembership(c.Target, c.CheckAgainst, ruleID)
	case *ast.InSet:
		v.validateMembership(c.Value, c.Set, ruleID)
	}
}

// validateExpr validates attribute references and arithmetic operands
// anywhere in an expression tree.
func (v *SemanticValidator) validateExpr(expr ast.Expr, ruleID string) {
	switch e := expr.(type) {
	case *ast.AttrRef:
		if _, ok := LookupAttr(e.Name); !ok {
			v.errors.AddErrorWithSuggestion(
				abacErrors.ErrorTypeSemantic,
				fmt.Sprintf("Rule %q references undefined attribute %q", ruleID, e.Name),
				abacErrors.Location{},
				abacErrors.SuggestAttributeKey(e.Name, AllAttrNames()),
			)
		}

	case *ast.Add:
		v.validateArithmetic("ADD", e.Operands, ruleID)
	case *ast.Multiply:
		v.validateArithmetic("MULTIPLY", e.Operands, ruleID)
	}
}

// validateOrdering checks both sides of a GTE/GT/LT comparison.
func (v *SemanticValidator) validateOrdering(op string, lhs, rhs ast.Expr, ruleID string) {
	v.validateExpr(lhs, ruleID)
	v.validateExpr(rhs, ruleID)
	v.requireNumeric(lhs, ruleID, op)
	v.requireNumeric(rhs, ruleID, op)
}

// validateArithmetic checks the operands of an ADD/MULTIPLY expression.
func (v *SemanticValidator) validateArithmetic(op string, operands []ast.Expr, ruleID string) {
	for _, operand := range operands {
		if operand == nil {
			continue
		}
		v.validateExpr(operand, ruleID)
		v.requireNumeric(operand, ruleID, op)
	}
}

// validateMembership checks the element and collection sides of an IN
// condition. The element must be a string, the collection a set.
func (v *SemanticValidator) validateMembership(element, collection ast.Expr, ruleID string) {
	v.validateExpr(element, ruleID)
	v.validateExpr(collection, ruleID)

	if kind, known := staticExprKind(element); known && kind != entity.KindString {
		v.errors.AddError(
			abacErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q tests membership of %s; the element must be a string",
				ruleID, describeExpr(element)),
			abacErrors.Location{},
		)
	}

	if kind, known := staticExprKind(collection); known && kind != entity.KindSet {
		v.errors.AddError(
			abacErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q tests membership against %s; a set is required",
				ruleID, describeExpr(collection)),
			abacErrors.Location{},
		)
	}
}

// requireNumeric flags an expression whose static kind is known and is
// not a number.
func (v *SemanticValidator) requireNumeric(expr ast.Expr, ruleID, op string) {
	if kind, known := staticExprKind(expr); known && kind != entity.KindNumber {
		v.errors.AddError(
			abacErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q applies %s to %s; a number is required",
				ruleID, op, describeExpr(expr)),
			abacErrors.Location{},
		)
	}
}

// staticExprKind reports the kind an expression is guaranteed to produce,
// when that is decidable without evaluating. Environment references and
// undefined attributes have no static kind.
func staticExprKind(expr ast.Expr) (entity.Kind, bool) {
	switch e := expr.(type) {
	case *ast.StringLit:
		return entity.KindString, true
	case *ast.NumberLit:
		return entity.KindNumber, true
	case *ast.Add, *ast.Multiply:
		return entity.KindNumber, true
	case *ast.AttrRef:
		if info, ok := LookupAttr(e.Name); ok {
			return info.Kind, true
		}
		return entity.KindString, false
	default:
		return entity.KindString, false
	}
}

// describeExpr names an expression for error messages.
func describeExpr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StringLit:
		return "a string literal"
	case *ast.NumberLit:
		return "a number literal"
	case *ast.AttrRef:
		if info, ok := LookupAttr(e.Name); ok {
			return fmt.Sprintf("attribute %q of kind %s", e.Name, info.Kind)
		}
		return fmt.Sprintf("attribute %q", e.Name)
	case *ast.EnvRef:
		return fmt.Sprintf("environment value %q", e.Name)
	case *ast.Add:
		return "an ADD expression"
	case *ast.Multiply:
		return "a MULTIPLY expression"
	default:
		return fmt.Sprintf("expression of type %T", expr)
	}
}
