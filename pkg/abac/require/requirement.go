package require

import (
	"fmt"
	"strings"

	"osprey-hq/talon/pkg/abac/entity"
)

// Requirement is an atomic demand a condition places on the source side
// once the destination is fixed. The set of implementations is closed:
// Exact, Containment and Numeric.
type Requirement interface {
	requirement()
	// String renders the requirement for diagnostics.
	String() string
}

// Exact demands that an attribute equal one concrete value.
type Exact struct {
	Attr  string
	Value entity.Value
}

// Containment demands that an attribute's value lie in AllowedSet (for
// string attributes) or that the attribute's set contain the allowed
// values (for set attributes such as Src.Groups).
type Containment struct {
	Attr       string
	AllowedSet []string
}

// Numeric demands inclusive lower bounds (RequiredGE) and exclusive upper
// bounds (RequiredLT) on an integer attribute. Strict lower bounds are
// normalized away at extraction time: attr > t arrives here as
// RequiredGE=[t+1].
type Numeric struct {
	Attr       string
	RequiredGE []int64
	RequiredLT []int64
}

func (*Exact) requirement()       {}
func (*Containment) requirement() {}
func (*Numeric) requirement()     {}

func (r *Exact) String() string {
	return fmt.Sprintf("%s == %s", r.Attr, r.Value)
}

func (r *Containment) String() string {
	return fmt.Sprintf("%s in {%s}", r.Attr, strings.Join(r.AllowedSet, ", "))
}

func (r *Numeric) String() string {
	var parts []string
	for _, t := range r.RequiredGE {
		parts = append(parts, fmt.Sprintf("%s >= %d", r.Attr, t))
	}
	for _, t := range r.RequiredLT {
		parts = append(parts, fmt.Sprintf("%s < %d", r.Attr, t))
	}
	if len(parts) == 0 {
		return r.Attr + " unconstrained"
	}
	return strings.Join(parts, " and ")
}
