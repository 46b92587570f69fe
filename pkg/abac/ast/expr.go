package ast

import (
	"fmt"
	"strings"
)

// Reference name prefixes. An expression string beginning with one of
// these parses as a reference; anything else is a literal.
const (
	SourcePrefix      = "Src."
	DestinationPrefix = "Dst."
	EnvPrefix         = "Env."
)

// Expr is a node of an expression tree: a literal, an attribute or
// environment reference, or an n-ary arithmetic node. The set of
// implementations is closed.
type Expr interface {
	exprNode()
	// String renders the expression for diagnostics.
	String() string
}

// StringLit is a literal string.
type StringLit struct {
	Value string
}

// NumberLit is a literal signed 64-bit integer.
type NumberLit struct {
	Value int64
}

// AttrRef references an entity attribute by its full wire name, e.g.
// "Src.Role" or "Dst.Type".
type AttrRef struct {
	Name string
}

// EnvRef references an environment value by its full wire name, e.g.
// "Env.MFA".
type EnvRef struct {
	Name string
}

// Add is an n-ary integer sum. An empty operand list evaluates to 0.
type Add struct {
	Operands []Expr
}

// Multiply is an n-ary integer product. An empty operand list evaluates
// to 1.
type Multiply struct {
	Operands []Expr
}

func (*StringLit) exprNode() {}
func (*NumberLit) exprNode() {}
func (*AttrRef) exprNode()   {}
func (*EnvRef) exprNode()    {}
func (*Add) exprNode()       {}
func (*Multiply) exprNode()  {}

func (e *StringLit) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *NumberLit) String() string { return fmt.Sprintf("%d", e.Value) }
func (e *AttrRef) String() string   { return e.Name }
func (e *EnvRef) String() string    { return e.Name }

func (e *Add) String() string      { return renderNary("add", e.Operands) }
func (e *Multiply) String() string { return renderNary("mul", e.Operands) }

func renderNary(op string, operands []Expr) string {
	parts := make([]string, len(operands))
	for i, o := range operands {
		parts[i] = o.String()
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}

// IsSourceRef reports whether e is a bare attribute reference into the
// source entity.
func IsSourceRef(e Expr) bool {
	ref, ok := e.(*AttrRef)
	return ok && strings.HasPrefix(ref.Name, SourcePrefix)
}

// IsDestinationRef reports whether e is a bare attribute reference into
// the destination entity.
func IsDestinationRef(e Expr) bool {
	ref, ok := e.(*AttrRef)
	return ok && strings.HasPrefix(ref.Name, DestinationPrefix)
}
