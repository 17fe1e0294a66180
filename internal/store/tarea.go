package store

import (
	"context"

	"github.com/phrazzld/tarea-api/internal/domain"
)

// TareaStore defines the interface for tarea record persistence over a
// key-value table keyed by tarea ID.
//
// All operations are single-item; there is no conditional-write
// primitive, so concurrent updates to the same tarea are last-write-wins.
type TareaStore interface {
	// Put writes the full record, overwriting any previous version.
	Put(ctx context.Context, tarea *domain.Tarea) error

	// GetByID retrieves a tarea by its unique ID.
	// Returns ErrTareaNotFound if the tarea does not exist.
	GetByID(ctx context.Context, id string) (*domain.Tarea, error)

	// Delete removes the record. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// ScanAll returns every tarea in the table in a single pass,
	// following continuation keys internally. Only acceptable at small
	// record counts; prefer List for anything user-facing.
	ScanAll(ctx context.Context) ([]*domain.Tarea, error)

	// List returns one page of tareas starting after the given cursor.
	// An empty cursor starts from the beginning. The returned cursor is
	// empty when there are no further pages.
	// Returns ErrInvalidCursor if the cursor cannot be decoded.
	List(ctx context.Context, cursor string, limit int32) ([]*domain.Tarea, string, error)
}
