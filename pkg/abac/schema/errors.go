package schema

import "fmt"

// UnknownAttributeError is returned when a lookup names a destination
// attribute the schema does not define.
type UnknownAttributeError struct {
	Attr string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q in schema", e.Attr)
}

// UnknownValueError is returned when a value lookup on a single or
// multiple typed attribute finds no entry in the value table.
type UnknownValueError struct {
	Attr  string
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown value %q for attribute %q", e.Value, e.Attr)
}

// InvalidEntryError is returned by the entry constructors when the
// declared value type and the supplied data cannot form a valid entry,
// for example a duplicate value in an id table or inverted numeric
// bounds.
type InvalidEntryError struct {
	Attr   string
	Reason string
}

func (e *InvalidEntryError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("invalid schema entry: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema entry for attribute %q: %s", e.Attr, e.Reason)
}
