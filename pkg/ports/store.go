package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// CursorStore defines the interface for persisting traversal cursors.
// This enables "Stop & Resume" traversals across requests and processes.
type CursorStore interface {
	// Save persists the cursor under cursor.ID.
	Save(ctx context.Context, cursor *domain.Cursor) error

	// Load retrieves a cursor by traversal ID.
	// Returns domain.ErrTraversalNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Cursor, error)

	// Delete removes a cursor. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored cursors.
	List(ctx context.Context) ([]string, error)
}
