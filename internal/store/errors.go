package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is the generic version of the entity-specific not found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrTareaNotFound indicates that the requested tarea does not exist
	// in the key-value table.
	ErrTareaNotFound = fmt.Errorf("%w: tarea", ErrNotFound)

	// ErrFileNotFound indicates that the requested attachment either is
	// not referenced by the tarea or is missing from the object store.
	// Kept distinct from ErrTareaNotFound so clients can tell the two
	// apart.
	ErrFileNotFound = fmt.Errorf("%w: archivo", ErrNotFound)

	// ErrInvalidCursor is returned when a pagination cursor cannot be
	// decoded back into a scan position.
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific failures with
// additional context. The raw backend error stays wrapped inside and is
// only ever logged server-side, never sent to a client.
type StoreError struct {
	Entity    string // The entity type (e.g., "tarea", "object")
	Operation string // The operation that failed (e.g., "put", "scan")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
