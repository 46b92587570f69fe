package snapshot

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// StorageError wraps a failure in the snapshot store.
type StorageError struct {
	Backend   string
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("snapshot storage (%s) %s: %v", e.Backend, e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a storage error for the given backend and
// operation.
func NewStorageError(backend, operation string, err error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Err: err}
}

// ExportError wraps a failure while writing a snapshot export.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("snapshot export (%s): %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates an export error for the given format.
func NewExportError(format string, err error) *ExportError {
	return &ExportError{Format: format, Err: err}
}
