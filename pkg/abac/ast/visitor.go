package ast

// Visitor provides an interface for traversing the AST.
// Implement this interface to perform operations on AST nodes
// (validation, analysis, rendering, etc.).
type Visitor interface {
	VisitPolicy(*Policy) error
	VisitRule(*Rule) error
	VisitCondition(Condition) error
	VisitExpr(Expr) error
}

// Walk traverses the AST starting from the policy node and calls the visitor
// for each node. It returns the first error encountered, or nil if traversal
// completes.
func Walk(policy *Policy, visitor Visitor) error {
	if err := visitor.VisitPolicy(policy); err != nil {
		return err
	}

	for _, rule := range policy.Rules {
		if err := visitor.VisitRule(rule); err != nil {
			return err
		}
		if rule.Condition != nil {
			if err := WalkCondition(rule.Condition, visitor); err != nil {
				return err
			}
		}
	}

	return nil
}

// WalkCondition recursively walks a condition tree, visiting conditions in
// pre-order and each leaf's expressions left to right.
func WalkCondition(cond Condition, visitor Visitor) error {
	if err := visitor.VisitCondition(cond); err != nil {
		return err
	}

	switch c := cond.(type) {
	case *And:
		for _, child := range c.Operands {
			if err := WalkCondition(child, visitor); err != nil {
				return err
			}
		}
	case *Or:
		for _, child := range c.Operands {
			if err := WalkCondition(child, visitor); err != nil {
				return err
			}
		}
	case *Eq:
		return walkExprs(visitor, c.LHS, c.RHS)
	case *Gte:
		return walkExprs(visitor, c.LHS, c.RHS)
	case *Gt:
		return walkExprs(visitor, c.LHS, c.RHS)
	case *Lt:
		return walkExprs(visitor, c.LHS, c.RHS)
	case *In:
		return walkExprs(visitor, c.Target, c.CheckAgainst)
	case *InSet:
		return walkExprs(visitor, c.Value, c.Set)
	}

	return nil
}

// WalkExpr recursively walks an expression tree in pre-order.
func WalkExpr(expr Expr, visitor Visitor) error {
	if err := visitor.VisitExpr(expr); err != nil {
		return err
	}

	switch e := expr.(type) {
	case *Add:
		for _, operand := range e.Operands {
			if err := WalkExpr(operand, visitor); err != nil {
				return err
			}
		}
	case *Multiply:
		for _, operand := range e.Operands {
			if err := WalkExpr(operand, visitor); err != nil {
				return err
			}
		}
	}

	return nil
}

func walkExprs(visitor Visitor, exprs ...Expr) error {
	for _, e := range exprs {
		if err := WalkExpr(e, visitor); err != nil {
			return err
		}
	}
	return nil
}
