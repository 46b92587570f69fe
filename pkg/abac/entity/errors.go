package entity

import "fmt"

// UnknownKeyError reports an attribute key outside the closed vocabulary.
// It is a hard error at construction and load time; unknown keys are never
// skipped.
type UnknownKeyError struct {
	Key    string
	Entity string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s attribute key %q", e.Entity, e.Key)
}
