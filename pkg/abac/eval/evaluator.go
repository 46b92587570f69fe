package eval

import (
	"fmt"
	"log/slog"
	"strings"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
)

// Evaluator evaluates policy conditions against fully bound source and
// destination entities. It holds no mutable state and caches nothing;
// every call recomputes from its inputs, so a single Evaluator is safe
// for concurrent use.
type Evaluator struct {
	logger *slog.Logger
}

// New creates an Evaluator. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Decision is the outcome of evaluating one policy for one source and
// destination pair.
type Decision struct {
	Effect      ast.Effect
	PolicyName  string
	MatchedRule *ast.Rule
}

// Policy evaluates the policy's rules in order and returns the effect of
// the first rule whose condition matches. When no rule matches, the
// policy's default effect applies and Decision.MatchedRule is nil.
//
// A rule that fails to evaluate aborts the scan: the error is returned
// and is never interpreted as an implicit deny.
func (ev *Evaluator) Policy(p *ast.Policy, src *entity.Source, dst *entity.Destination, env entity.Environment) (*Decision, error) {
	for _, rule := range p.Rules {
		matched, err := ev.Rule(rule, src, dst, env)
		if err != nil {
			return nil, fmt.Errorf("policy %q rule %q: %w", p.Name, rule.ID, err)
		}
		if matched {
			ev.logger.Debug("rule matched",
				"policy", p.Name,
				"rule", rule.ID,
				"effect", rule.Effect,
				"src", src.IP,
				"dst", dst.IP)
			return &Decision{Effect: rule.Effect, PolicyName: p.Name, MatchedRule: rule}, nil
		}
	}

	ev.logger.Debug("default effect applied",
		"policy", p.Name,
		"effect", p.DefaultEffect,
		"src", src.IP,
		"dst", dst.IP)
	return &Decision{Effect: p.DefaultEffect, PolicyName: p.Name}, nil
}

// Rule evaluates a single rule's condition.
func (ev *Evaluator) Rule(r *ast.Rule, src *entity.Source, dst *entity.Destination, env entity.Environment) (bool, error) {
	if r.Condition == nil {
		return false, fmt.Errorf("rule %q has no condition", r.ID)
	}
	return ev.Condition(r.Condition, src, dst, env)
}

// Condition evaluates a condition tree. And short-circuits on the first
// unsatisfied operand, Or on the first satisfied one; an empty And is
// satisfied, an empty Or is not. Errors abort evaluation immediately.
func (ev *Evaluator) Condition(c ast.Condition, src *entity.Source, dst *entity.Destination, env entity.Environment) (bool, error) {
	switch x := c.(type) {
	case *ast.And:
		for _, operand := range x.Operands {
			ok, err := ev.Condition(operand, src, dst, env)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case *ast.Or:
		for _, operand := range x.Operands {
			ok, err := ev.Condition(operand, src, dst, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case *ast.Eq:
		lhs, err := ev.Expr(x.LHS, src, dst, env)
		if err != nil {
			return false, err
		}
		rhs, err := ev.Expr(x.RHS, src, dst, env)
		if err != nil {
			return false, err
		}
		// Kind disagreement is inequality, not an error.
		return lhs.Equal(rhs), nil

	case *ast.Gte:
		return ev.compareNumeric("gte", x.LHS, x.RHS, src, dst, env)
	case *ast.Gt:
		return ev.compareNumeric("gt", x.LHS, x.RHS, src, dst, env)
	case *ast.Lt:
		return ev.compareNumeric("lt", x.LHS, x.RHS, src, dst, env)

	case *ast.In:
		return ev.membership(x.Target, x.CheckAgainst, src, dst, env)
	case *ast.InSet:
		return ev.membership(x.Value, x.Set, src, dst, env)

	default:
		return false, fmt.Errorf("unsupported condition type %T", c)
	}
}

// Expr evaluates an expression tree to a value. Add and Multiply require
// every operand to be a number; an empty Add is 0 and an empty Multiply
// is 1.
func (ev *Evaluator) Expr(e ast.Expr, src *entity.Source, dst *entity.Destination, env entity.Environment) (entity.Value, error) {
	switch x := e.(type) {
	case *ast.StringLit:
		return entity.String(x.Value), nil

	case *ast.NumberLit:
		return entity.Number(x.Value), nil

	case *ast.AttrRef:
		return resolveAttr(x.Name, src, dst)

	case *ast.EnvRef:
		v, ok := env.Lookup(x.Name)
		if !ok {
			return entity.Value{}, &MissingEnvVarError{Name: x.Name}
		}
		return v, nil

	case *ast.Add:
		var sum int64
		for _, operand := range x.Operands {
			n, err := ev.numericOperand("add", operand, src, dst, env)
			if err != nil {
				return entity.Value{}, err
			}
			sum += n
		}
		return entity.Number(sum), nil

	case *ast.Multiply:
		product := int64(1)
		for _, operand := range x.Operands {
			n, err := ev.numericOperand("mul", operand, src, dst, env)
			if err != nil {
				return entity.Value{}, err
			}
			product *= n
		}
		return entity.Number(product), nil

	default:
		return entity.Value{}, fmt.Errorf("unsupported expression type %T", e)
	}
}

func (ev *Evaluator) numericOperand(op string, e ast.Expr, src *entity.Source, dst *entity.Destination, env entity.Environment) (int64, error) {
	v, err := ev.Expr(e, src, dst, env)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, &TypeMismatchError{Op: op, Expected: "number", Actual: v.Kind().String()}
	}
	return n, nil
}

func (ev *Evaluator) compareNumeric(op string, lhsExpr, rhsExpr ast.Expr, src *entity.Source, dst *entity.Destination, env entity.Environment) (bool, error) {
	lhs, err := ev.numericOperand(op, lhsExpr, src, dst, env)
	if err != nil {
		return false, err
	}
	rhs, err := ev.numericOperand(op, rhsExpr, src, dst, env)
	if err != nil {
		return false, err
	}

	switch op {
	case "gte":
		return lhs >= rhs, nil
	case "gt":
		return lhs > rhs, nil
	case "lt":
		return lhs < rhs, nil
	default:
		return false, fmt.Errorf("unsupported comparison %q", op)
	}
}

func (ev *Evaluator) membership(elemExpr, setExpr ast.Expr, src *entity.Source, dst *entity.Destination, env entity.Environment) (bool, error) {
	elem, err := ev.Expr(elemExpr, src, dst, env)
	if err != nil {
		return false, err
	}
	member, ok := elem.AsString()
	if !ok {
		return false, &TypeMismatchError{Op: "in", Expected: "string element", Actual: elem.Kind().String()}
	}

	collection, err := ev.Expr(setExpr, src, dst, env)
	if err != nil {
		return false, err
	}
	if collection.Kind() != entity.KindSet {
		return false, &TypeMismatchError{Op: "in", Expected: "set", Actual: collection.Kind().String()}
	}

	return collection.Contains(member), nil
}

func resolveAttr(name string, src *entity.Source, dst *entity.Destination) (entity.Value, error) {
	switch {
	case strings.HasPrefix(name, ast.SourcePrefix):
		key, err := entity.ParseSourceKey(name)
		if err != nil {
			return entity.Value{}, err
		}
		v, ok := src.Attribute(key)
		if !ok {
			return entity.Value{}, &MissingAttributeError{Name: name}
		}
		return v, nil

	case strings.HasPrefix(name, ast.DestinationPrefix):
		key, err := entity.ParseDestinationKey(name)
		if err != nil {
			return entity.Value{}, err
		}
		v, ok := dst.Attribute(key)
		if !ok {
			return entity.Value{}, &MissingAttributeError{Name: name}
		}
		return v, nil

	default:
		return entity.Value{}, fmt.Errorf("attribute reference %q must begin with %q or %q", name, ast.SourcePrefix, ast.DestinationPrefix)
	}
}
