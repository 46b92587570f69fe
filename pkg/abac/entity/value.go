package entity

import (
	"fmt"
	"strings"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	// KindString is a single opaque string such as a role or department name.
	KindString Kind = iota
	// KindNumber is a signed 64-bit integer.
	KindNumber
	// KindSet is a collection of strings. Storage order is preserved but
	// carries no meaning; equality still compares element-wise.
	KindSet
	// KindBool is a boolean flag.
	KindBool
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindSet:
		return "set"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is an attribute value: a string, a signed integer, a set of
// strings, or a boolean. Values are immutable after construction and
// compare structurally; there is no coercion between kinds, so
// Number(5) never equals String("5").
type Value struct {
	kind Kind
	str  string
	num  int64
	set  []string
	b    bool
}

// String returns a Value holding a string.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a Value holding a signed 64-bit integer.
func Number(n int64) Value {
	return Value{kind: KindNumber, num: n}
}

// Set returns a Value holding a set of strings. The members are copied.
func Set(members ...string) Value {
	copied := make([]string, len(members))
	copy(copied, members)
	return Value{kind: KindSet, set: copied}
}

// Bool returns a Value holding a boolean.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload. The second result is false when the
// value is not a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the integer payload. The second result is false when the
// value is not a number.
func (v Value) AsNumber() (int64, bool) {
	return v.num, v.kind == KindNumber
}

// AsSet returns a copy of the set members. The second result is false when
// the value is not a set.
func (v Value) AsSet() ([]string, bool) {
	if v.kind != KindSet {
		return nil, false
	}
	members := make([]string, len(v.set))
	copy(members, v.set)
	return members, true
}

// AsBool returns the boolean payload. The second result is false when the
// value is not a boolean.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Contains reports whether the value is a set containing member.
func (v Value) Contains(member string) bool {
	if v.kind != KindSet {
		return false
	}
	for _, m := range v.set {
		if m == member {
			return true
		}
	}
	return false
}

// Equal reports structural equality. Values of different kinds are never
// equal. Sets compare element-wise in stored order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindSet:
		if len(v.set) != len(other.set) {
			return false
		}
		for i := range v.set {
			if v.set[i] != other.set[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindNumber:
		return fmt.Sprintf("%d", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindSet:
		return "{" + strings.Join(v.set, ", ") + "}"
	default:
		return "<invalid>"
	}
}
