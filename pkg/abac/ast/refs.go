package ast

import "strings"

// ExprReferencesDestination reports whether any node of the expression
// reads a destination attribute.
func ExprReferencesDestination(e Expr) bool {
	switch x := e.(type) {
	case *AttrRef:
		return strings.HasPrefix(x.Name, DestinationPrefix)
	case *Add:
		return anyExpr(x.Operands, ExprReferencesDestination)
	case *Multiply:
		return anyExpr(x.Operands, ExprReferencesDestination)
	default:
		return false
	}
}

// ExprReferencesSourceOrEnv reports whether any node of the expression
// reads a source attribute or an environment value.
func ExprReferencesSourceOrEnv(e Expr) bool {
	switch x := e.(type) {
	case *AttrRef:
		return strings.HasPrefix(x.Name, SourcePrefix)
	case *EnvRef:
		return true
	case *Add:
		return anyExpr(x.Operands, ExprReferencesSourceOrEnv)
	case *Multiply:
		return anyExpr(x.Operands, ExprReferencesSourceOrEnv)
	default:
		return false
	}
}

// ReferencesDestination reports whether any leaf of the condition reads a
// destination attribute.
func ReferencesDestination(c Condition) bool {
	return condRefs(c, ExprReferencesDestination)
}

// ReferencesSourceOrEnv reports whether any leaf of the condition reads a
// source attribute or an environment value.
func ReferencesSourceOrEnv(c Condition) bool {
	return condRefs(c, ExprReferencesSourceOrEnv)
}

func condRefs(c Condition, pred func(Expr) bool) bool {
	switch x := c.(type) {
	case *And:
		return anyCond(x.Operands, pred)
	case *Or:
		return anyCond(x.Operands, pred)
	case *Eq:
		return pred(x.LHS) || pred(x.RHS)
	case *Gte:
		return pred(x.LHS) || pred(x.RHS)
	case *Gt:
		return pred(x.LHS) || pred(x.RHS)
	case *Lt:
		return pred(x.LHS) || pred(x.RHS)
	case *In:
		return pred(x.Target) || pred(x.CheckAgainst)
	case *InSet:
		return pred(x.Value) || pred(x.Set)
	default:
		return false
	}
}

func anyExpr(operands []Expr, pred func(Expr) bool) bool {
	for _, o := range operands {
		if pred(o) {
			return true
		}
	}
	return false
}

func anyCond(operands []Condition, pred func(Expr) bool) bool {
	for _, o := range operands {
		if condRefs(o, pred) {
			return true
		}
	}
	return false
}
