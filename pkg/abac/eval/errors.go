package eval

import "fmt"

// TypeMismatchError reports an operator applied to values of the wrong
// kind. Comparisons never coerce: gte over a string is an error, not a
// failed match.
type TypeMismatchError struct {
	Op       string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: type mismatch: want %s, got %s", e.Op, e.Expected, e.Actual)
}

// MissingAttributeError reports a reference to an attribute the entity
// does not carry. Name is the full reference, e.g. "Src.Role".
type MissingAttributeError struct {
	Name string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("entity has no attribute %q", e.Name)
}

// MissingEnvVarError reports a reference to a value absent from the
// caller-supplied environment.
type MissingEnvVarError struct {
	Name string
}

func (e *MissingEnvVarError) Error() string {
	return fmt.Sprintf("environment has no value %q", e.Name)
}
