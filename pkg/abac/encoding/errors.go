package encoding

import (
	"fmt"

	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/schema"
)

// TypeMismatchError reports an attribute value whose variant does not
// match the schema's declared type for that attribute.
type TypeMismatchError struct {
	Attr     string
	Expected schema.ValueType
	Actual   entity.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("attribute %q expects a %s value, got %s", e.Attr, e.Expected, e.Actual)
}

// RangeError reports a number that cannot be packed into its 32-bit
// slot or lies outside the bounds the schema declares.
type RangeError struct {
	Attr   string
	Value  int64
	Detail string
}

func (e *RangeError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("value %d %s", e.Value, e.Detail)
	}
	return fmt.Sprintf("attribute %q: value %d %s", e.Attr, e.Value, e.Detail)
}
