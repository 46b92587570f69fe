package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"osprey-hq/talon/pkg/abac/ast"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

// Wire operator tags understood by the condition and expression builders.
const (
	opAnd      = "AND"
	opOr       = "OR"
	opEq       = "EQ"
	opGte      = "GTE"
	opGt       = "GT"
	opLt       = "LT"
	opIn       = "IN"
	opAdd      = "ADD"
	opMultiply = "MULTIPLY"
)

func conditionOperators() []string {
	return []string{opAnd, opOr, opEq, opGte, opGt, opLt, opIn}
}

func expressionOperators() []string {
	return []string{opAdd, opMultiply}
}

// unknownOperatorError is returned when a condition or expression object
// carries an operator tag outside the wire vocabulary.
type unknownOperatorError struct {
	Op    string
	Valid []string
}

func (e *unknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Op)
}

// builder constructs AST nodes from a decoded document tree.
// It handles type conversion and accumulates structural errors so a single
// pass reports every problem in the document.
type builder struct {
	sourcePath string
	maxDepth   int
	strict     bool
	errors     *abacErrors.ErrorList
}

// newBuilder creates a new AST builder for the given source file.
func newBuilder(sourcePath string, maxDepth int, strict bool) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
		strict:     strict,
		errors:     abacErrors.NewErrorList(),
	}
}

func (b *builder) location() abacErrors.Location {
	return abacErrors.Location{
		File:   b.sourcePath,
		Line:   1,
		Column: 1,
	}
}

// buildPolicy transforms a decoded document into an ast.Policy.
func (b *builder) buildPolicy(doc interface{}) (*ast.Policy, error) {
	root, ok := doc.(map[string]interface{})
	if !ok {
		b.errors.AddError(abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Policy document must be an object, got %T", doc),
			b.location())
		return nil, b.errors
	}

	if err := b.checkUnknownKeys(root, "policy_name", "description", "default_effect", "rules"); err != nil {
		b.errors.AddError(abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Invalid policy document: %v", err),
			b.location())
	}

	policy := &ast.Policy{}

	name, err := requireString(root, "policy_name")
	if err != nil {
		b.errors.AddErrorWithSuggestion(abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Invalid policy document: %v", err),
			b.location(),
			abacErrors.SuggestMissingField("policy_name", `"lab-access"`))
	}
	policy.Name = name

	description, err := requireString(root, "description")
	if err != nil {
		b.errors.AddError(abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Invalid policy document: %v", err),
			b.location())
	}
	policy.Description = description

	effectStr, err := requireString(root, "default_effect")
	if err != nil {
		b.errors.AddErrorWithSuggestion(abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Invalid policy document: %v", err),
			b.location(),
			abacErrors.SuggestMissingField("default_effect", `"deny"`))
	}
	// Effect validity is the structural validator's job.
	policy.DefaultEffect = ast.Effect(effectStr)

	rulesRaw, ok := root["rules"]
	if !ok {
		b.errors.AddErrorWithSuggestion(abacErrors.ErrorTypeStructural,
			"Missing required field 'rules'",
			b.location(),
			abacErrors.SuggestMissingField("rules", "[]"))
		return nil, b.errors
	}

	rulesArr, ok := rulesRaw.([]interface{})
	if !ok {
		b.errors.AddError(abacErrors.ErrorTypeStructural,
			fmt.Sprintf("Field 'rules' must be an array, got %T", rulesRaw),
			b.location())
		return nil, b.errors
	}

	policy.Rules = make([]*ast.Rule, 0, len(rulesArr))
	for i, rv := range rulesArr {
		rule, err := b.buildRule(rv)
		if err != nil {
			b.addRuleError(i, err)
			continue
		}
		policy.Rules = append(policy.Rules, rule)
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}

	return policy, nil
}

// addRuleError records a rule construction failure, attaching an operator
// suggestion when the cause was an unknown operator tag.
func (b *builder) addRuleError(index int, err error) {
	message := fmt.Sprintf("Invalid rule at index %d: %v", index, err)

	var opErr *unknownOperatorError
	if errors.As(err, &opErr) {
		b.errors.AddErrorWithSuggestion(abacErrors.ErrorTypeStructural,
			message,
			b.location(),
			abacErrors.SuggestOperator(opErr.Op, opErr.Valid))
		return
	}

	b.errors.AddError(abacErrors.ErrorTypeStructural, message, b.location())
}

// buildRule transforms a decoded rule object into an ast.Rule.
func (b *builder) buildRule(v interface{}) (*ast.Rule, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("rule must be an object, got %T", v)
	}

	if err := b.checkUnknownKeys(m, "id", "description", "effect", "condition"); err != nil {
		return nil, err
	}

	id, err := requireString(m, "id")
	if err != nil {
		return nil, err
	}

	description, err := optionalString(m, "description")
	if err != nil {
		return nil, err
	}

	effectStr, err := requireString(m, "effect")
	if err != nil {
		return nil, err
	}

	condRaw, ok := m["condition"]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", "condition")
	}

	cond, err := b.buildCondition(condRaw, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid condition: %w", err)
	}

	return &ast.Rule{
		ID:          id,
		Description: description,
		Effect:      ast.Effect(effectStr),
		Condition:   cond,
	}, nil
}

// buildCondition transforms a decoded condition object into an
// ast.Condition. Dispatch is on the "operator" tag:
//
//	AND, OR           - "operands" array of conditions
//	EQ, GTE, GT, LT   - "lhs" and "rhs" expressions
//	IN                - either "target"/"check_against" or "value"/"set"
func (b *builder) buildCondition(v interface{}, depth int) (ast.Condition, error) {
	if depth > b.maxDepth {
		return nil, fmt.Errorf("condition exceeds maximum nesting depth of %d", b.maxDepth)
	}

	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("condition must be an object, got %T", v)
	}

	op, err := requireString(m, "operator")
	if err != nil {
		return nil, err
	}

	switch op {
	case opAnd, opOr:
		if err := b.checkUnknownKeys(m, "operator", "operands"); err != nil {
			return nil, err
		}
		operands, err := b.buildConditionOperands(m, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if op == opAnd {
			return &ast.And{Operands: operands}, nil
		}
		return &ast.Or{Operands: operands}, nil

	case opEq, opGte, opGt, opLt:
		if err := b.checkUnknownKeys(m, "operator", "lhs", "rhs"); err != nil {
			return nil, err
		}
		lhs, rhs, err := b.buildComparisonSides(m, op, depth)
		if err != nil {
			return nil, err
		}
		switch op {
		case opEq:
			return &ast.Eq{LHS: lhs, RHS: rhs}, nil
		case opGte:
			return &ast.Gte{LHS: lhs, RHS: rhs}, nil
		case opGt:
			return &ast.Gt{LHS: lhs, RHS: rhs}, nil
		default:
			return &ast.Lt{LHS: lhs, RHS: rhs}, nil
		}

	case opIn:
		if err := b.checkUnknownKeys(m, "operator", "target", "check_against", "value", "set"); err != nil {
			return nil, err
		}
		return b.buildMembership(m, depth)

	default:
		return nil, &unknownOperatorError{Op: op, Valid: conditionOperators()}
	}
}

// buildConditionOperands builds the operand list of an AND/OR node.
func (b *builder) buildConditionOperands(m map[string]interface{}, depth int) ([]ast.Condition, error) {
	raw, ok := m["operands"]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", "operands")
	}

	arr, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q must be an array, got %T", "operands", raw)
	}

	operands := make([]ast.Condition, 0, len(arr))
	for i, cv := range arr {
		cond, err := b.buildCondition(cv, depth+1)
		if err != nil {
			return nil, fmt.Errorf("operand at index %d: %w", i, err)
		}
		operands = append(operands, cond)
	}
	return operands, nil
}

// buildComparisonSides builds the lhs/rhs expressions of a comparison node.
func (b *builder) buildComparisonSides(m map[string]interface{}, op string, depth int) (ast.Expr, ast.Expr, error) {
	lhsRaw, ok := m["lhs"]
	if !ok {
		return nil, nil, fmt.Errorf("%s: missing required field %q", op, "lhs")
	}
	rhsRaw, ok := m["rhs"]
	if !ok {
		return nil, nil, fmt.Errorf("%s: missing required field %q", op, "rhs")
	}

	lhs, err := b.buildExpr(lhsRaw, depth+1)
	if err != nil {
		return nil, nil, fmt.Errorf("%s lhs: %w", op, err)
	}
	rhs, err := b.buildExpr(rhsRaw, depth+1)
	if err != nil {
		return nil, nil, fmt.Errorf("%s rhs: %w", op, err)
	}
	return lhs, rhs, nil
}

// buildMembership builds an IN node. The wire format accepts two shapes:
// {target, check_against} and {value, set}. They evaluate identically but
// requirement extraction treats them differently, so both survive as
// distinct AST nodes.
func (b *builder) buildMembership(m map[string]interface{}, depth int) (ast.Condition, error) {
	if targetRaw, ok := m["target"]; ok {
		caRaw, ok := m["check_against"]
		if !ok {
			return nil, fmt.Errorf("IN with %q requires %q", "target", "check_against")
		}
		target, err := b.buildExpr(targetRaw, depth+1)
		if err != nil {
			return nil, fmt.Errorf("IN target: %w", err)
		}
		checkAgainst, err := b.buildExpr(caRaw, depth+1)
		if err != nil {
			return nil, fmt.Errorf("IN check_against: %w", err)
		}
		return &ast.In{Target: target, CheckAgainst: checkAgainst}, nil
	}

	if valueRaw, ok := m["value"]; ok {
		setRaw, ok := m["set"]
		if !ok {
			return nil, fmt.Errorf("IN with %q requires %q", "value", "set")
		}
		value, err := b.buildExpr(valueRaw, depth+1)
		if err != nil {
			return nil, fmt.Errorf("IN value: %w", err)
		}
		set, err := b.buildExpr(setRaw, depth+1)
		if err != nil {
			return nil, fmt.Errorf("IN set: %w", err)
		}
		return &ast.InSet{Value: value, Set: set}, nil
	}

	return nil, fmt.Errorf("IN requires either %q/%q or %q/%q fields",
		"target", "check_against", "value", "set")
}

// buildExpr transforms a decoded expression into an ast.Expr. Strings
// dispatch on their prefix: "Src." and "Dst." become attribute references,
// "Env." becomes an environment reference, anything else is a string
// literal. Numbers must be integers. Objects are arithmetic nodes.
func (b *builder) buildExpr(v interface{}, depth int) (ast.Expr, error) {
	if depth > b.maxDepth {
		return nil, fmt.Errorf("expression exceeds maximum nesting depth of %d", b.maxDepth)
	}

	switch val := v.(type) {
	case string:
		return buildExprString(val), nil

	case map[string]interface{}:
		return b.buildArithmetic(val, depth)

	case bool:
		return nil, fmt.Errorf("boolean literals are not valid expressions")

	case []interface{}:
		return nil, fmt.Errorf("array literals are not valid expressions")

	case nil:
		return nil, fmt.Errorf("expression must not be null")

	default:
		n, err := scalarInt64(v)
		if err != nil {
			return nil, err
		}
		return &ast.NumberLit{Value: n}, nil
	}
}

func buildExprString(s string) ast.Expr {
	switch {
	case strings.HasPrefix(s, ast.SourcePrefix), strings.HasPrefix(s, ast.DestinationPrefix):
		return &ast.AttrRef{Name: s}
	case strings.HasPrefix(s, ast.EnvPrefix):
		return &ast.EnvRef{Name: s}
	default:
		return &ast.StringLit{Value: s}
	}
}

// buildArithmetic builds an ADD/MULTIPLY expression node.
func (b *builder) buildArithmetic(m map[string]interface{}, depth int) (ast.Expr, error) {
	op, err := requireString(m, "operator")
	if err != nil {
		return nil, err
	}

	switch op {
	case opAdd, opMultiply:
		if err := b.checkUnknownKeys(m, "operator", "operands"); err != nil {
			return nil, err
		}
		raw, ok := m["operands"]
		if !ok {
			return nil, fmt.Errorf("%s: missing required field %q", op, "operands")
		}
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: field %q must be an array, got %T", op, "operands", raw)
		}

		operands := make([]ast.Expr, 0, len(arr))
		for i, ev := range arr {
			expr, err := b.buildExpr(ev, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s operand at index %d: %w", op, i, err)
			}
			operands = append(operands, expr)
		}

		if op == opAdd {
			return &ast.Add{Operands: operands}, nil
		}
		return &ast.Multiply{Operands: operands}, nil

	default:
		return nil, &unknownOperatorError{Op: op, Valid: expressionOperators()}
	}
}

// checkUnknownKeys rejects object keys outside the allowed set. It is a
// no-op unless the parser runs in strict mode.
func (b *builder) checkUnknownKeys(m map[string]interface{}, allowed ...string) error {
	if !b.strict {
		return nil
	}

	var unknown []string
	for key := range m {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, key)
		}
	}

	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown field(s): %s", strings.Join(unknown, ", "))
}

// requireString fetches a mandatory string field from a decoded object.
func requireString(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string, got %T", key, v)
	}
	return s, nil
}

// optionalString fetches an optional string field from a decoded object.
// A missing field yields the empty string.
func optionalString(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string, got %T", key, v)
	}
	return s, nil
}
