package require

import (
	"strings"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/eval"
)

// emptySource backs "other side" evaluation. A side that references the
// source never gets evaluated, so its attributes are never read.
var emptySource = entity.NewSource("", "", nil)

// Collect extracts the atomic source-side requirements of a condition for
// a fixed destination. And and Or operands are pooled identically; the
// extractor deliberately does not distinguish conjunction from
// disjunction, because the downstream key matcher treats the merged set
// permissively. Leaves that do not fit a recognized shape (both sides
// source references, destination-only comparisons, non-numeric bounds)
// contribute nothing. Evaluation errors on the concrete side propagate.
func Collect(ev *eval.Evaluator, cond ast.Condition, dst *entity.Destination) ([]Requirement, error) {
	switch x := cond.(type) {
	case *ast.And:
		return collectOperands(ev, x.Operands, dst)
	case *ast.Or:
		return collectOperands(ev, x.Operands, dst)

	case *ast.Eq:
		return collectEq(ev, x, dst)

	case *ast.Gte:
		// attr >= t and t >= attr both pin t as the recorded bound.
		return collectOrdered(ev, x.LHS, x.RHS, dst, boundGE, boundGE, 0)
	case *ast.Gt:
		// attr > t tightens to attr >= t+1; t > attr to attr < t+1.
		return collectOrdered(ev, x.LHS, x.RHS, dst, boundGE, boundLT, 1)
	case *ast.Lt:
		return collectOrdered(ev, x.LHS, x.RHS, dst, boundLT, boundLT, 0)

	case *ast.In:
		return collectIn(ev, x, dst)
	case *ast.InSet:
		return collectInSet(ev, x, dst)

	default:
		return nil, nil
	}
}

func collectOperands(ev *eval.Evaluator, operands []ast.Condition, dst *entity.Destination) ([]Requirement, error) {
	var out []Requirement
	for _, operand := range operands {
		reqs, err := Collect(ev, operand, dst)
		if err != nil {
			return nil, err
		}
		out = append(out, reqs...)
	}
	return out, nil
}

func collectEq(ev *eval.Evaluator, c *ast.Eq, dst *entity.Destination) ([]Requirement, error) {
	var attr string
	var other ast.Expr

	if name, ok := srcAttrName(c.LHS); ok {
		if ast.ExprReferencesSourceOrEnv(c.RHS) {
			return nil, nil
		}
		attr, other = name, c.RHS
	} else if name, ok := srcAttrName(c.RHS); ok {
		if ast.ExprReferencesSourceOrEnv(c.LHS) {
			return nil, nil
		}
		attr, other = name, c.LHS
	} else {
		return nil, nil
	}

	value, err := evalAgainstDest(ev, other, dst)
	if err != nil {
		return nil, err
	}
	return []Requirement{&Exact{Attr: attr, Value: value}}, nil
}

type bound int

const (
	boundGE bound = iota
	boundLT
)

// collectOrdered handles Gte, Gt and Lt. lhsBound applies when the source
// reference is on the left, rhsBound when it is on the right; shift is
// added to the evaluated threshold to normalize strict comparisons to
// inclusive ones.
func collectOrdered(ev *eval.Evaluator, lhs, rhs ast.Expr, dst *entity.Destination, lhsBound, rhsBound bound, shift int64) ([]Requirement, error) {
	if attr, ok := srcAttrName(lhs); ok && !ast.ExprReferencesSourceOrEnv(rhs) {
		v, err := evalAgainstDest(ev, rhs, dst)
		if err != nil {
			return nil, err
		}
		if t, isNumber := v.AsNumber(); isNumber {
			return []Requirement{numericBound(attr, lhsBound, t+shift)}, nil
		}
	}

	if attr, ok := srcAttrName(rhs); ok && !ast.ExprReferencesSourceOrEnv(lhs) {
		v, err := evalAgainstDest(ev, lhs, dst)
		if err != nil {
			return nil, err
		}
		if t, isNumber := v.AsNumber(); isNumber {
			return []Requirement{numericBound(attr, rhsBound, t+shift)}, nil
		}
	}

	return nil, nil
}

func collectIn(ev *eval.Evaluator, c *ast.In, dst *entity.Destination) ([]Requirement, error) {
	attr, ok := srcAttrName(c.Target)
	if !ok || ast.ExprReferencesSourceOrEnv(c.CheckAgainst) {
		return nil, nil
	}

	v, err := evalAgainstDest(ev, c.CheckAgainst, dst)
	if err != nil {
		return nil, err
	}
	if members, isSet := v.AsSet(); isSet {
		return []Requirement{&Containment{Attr: attr, AllowedSet: members}}, nil
	}
	return nil, nil
}

func collectInSet(ev *eval.Evaluator, c *ast.InSet, dst *entity.Destination) ([]Requirement, error) {
	attr, ok := srcAttrName(c.Set)
	if !ok || ast.ExprReferencesSourceOrEnv(c.Value) {
		return nil, nil
	}

	v, err := evalAgainstDest(ev, c.Value, dst)
	if err != nil {
		return nil, err
	}
	if s, isString := v.AsString(); isString {
		return []Requirement{&Containment{Attr: attr, AllowedSet: []string{s}}}, nil
	}
	return nil, nil
}

func numericBound(attr string, b bound, t int64) *Numeric {
	if b == boundGE {
		return &Numeric{Attr: attr, RequiredGE: []int64{t}}
	}
	return &Numeric{Attr: attr, RequiredLT: []int64{t}}
}

func srcAttrName(e ast.Expr) (string, bool) {
	ref, ok := e.(*ast.AttrRef)
	if !ok || !strings.HasPrefix(ref.Name, ast.SourcePrefix) {
		return "", false
	}
	return ref.Name, true
}

func evalAgainstDest(ev *eval.Evaluator, e ast.Expr, dst *entity.Destination) (entity.Value, error) {
	return ev.Expr(e, emptySource, dst, nil)
}
