package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tarea-api/internal/store"
)

// TareaServiceError wraps errors from the tarea service with context.
type TareaServiceError struct {
	// Operation is the workflow that failed (e.g., "create", "download")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TareaServiceError.
func (e *TareaServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tarea service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("tarea service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TareaServiceError) Unwrap() error {
	return e.Err
}

// NewTareaServiceError creates a new TareaServiceError. Sentinel errors
// the API layer maps to status codes pass through unwrapped so
// errors.Is keeps working at the boundary.
func NewTareaServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if store.IsNotFoundError(err) || errors.Is(err, store.ErrInvalidCursor) {
		return err
	}

	return &TareaServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
