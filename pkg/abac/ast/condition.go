package ast

import "strings"

// Condition is a node of a policy condition tree. The set of
// implementations is closed: And, Or, Eq, Gte, Gt, Lt, In and InSet.
type Condition interface {
	condNode()
	// String renders the condition for diagnostics.
	String() string
}

// And is satisfied when every operand is satisfied. An empty operand list
// is satisfied.
type And struct {
	Operands []Condition
}

// Or is satisfied when at least one operand is satisfied. An empty
// operand list is not satisfied.
type Or struct {
	Operands []Condition
}

// Eq compares two expressions for structural equality. Values of
// different kinds are unequal, never an error.
type Eq struct {
	LHS Expr
	RHS Expr
}

// Gte is numeric greater-or-equal. Both sides must evaluate to numbers.
type Gte struct {
	LHS Expr
	RHS Expr
}

// Gt is numeric strictly-greater. Both sides must evaluate to numbers.
type Gt struct {
	LHS Expr
	RHS Expr
}

// Lt is numeric strictly-less. Both sides must evaluate to numbers.
type Lt struct {
	LHS Expr
	RHS Expr
}

// In is membership: Target must evaluate to a string and CheckAgainst to
// a set. It evaluates exactly like InSet; the two shapes differ only in
// which side requirement extraction expects to find the source reference.
type In struct {
	Target       Expr
	CheckAgainst Expr
}

// InSet is membership: Value must evaluate to a string and Set to a set.
type InSet struct {
	Value Expr
	Set   Expr
}

func (*And) condNode()   {}
func (*Or) condNode()    {}
func (*Eq) condNode()    {}
func (*Gte) condNode()   {}
func (*Gt) condNode()    {}
func (*Lt) condNode()    {}
func (*In) condNode()    {}
func (*InSet) condNode() {}

func (c *And) String() string { return renderJunction("and", c.Operands) }
func (c *Or) String() string  { return renderJunction("or", c.Operands) }

func (c *Eq) String() string  { return "eq(" + c.LHS.String() + ", " + c.RHS.String() + ")" }
func (c *Gte) String() string { return "gte(" + c.LHS.String() + ", " + c.RHS.String() + ")" }
func (c *Gt) String() string  { return "gt(" + c.LHS.String() + ", " + c.RHS.String() + ")" }
func (c *Lt) String() string  { return "lt(" + c.LHS.String() + ", " + c.RHS.String() + ")" }

func (c *In) String() string {
	return "in(" + c.Target.String() + ", " + c.CheckAgainst.String() + ")"
}

func (c *InSet) String() string {
	return "in(" + c.Value.String() + ", " + c.Set.String() + ")"
}

func renderJunction(op string, operands []Condition) string {
	parts := make([]string, len(operands))
	for i, o := range operands {
		parts[i] = o.String()
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}
