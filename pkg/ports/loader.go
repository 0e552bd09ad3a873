package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// TreeLoader defines how the engine retrieves menu trees.
// This allows the storage layer (Loam, files, memory) to be decoupled.
type TreeLoader interface {
	// Load resolves the subtree rooted at id.
	// Returns domain.ErrNodeNotFound if id (or any referenced child) does not exist.
	Load(ctx context.Context, id string) (domain.Node, error)

	// List returns the IDs of every node the loader knows about.
	// This is used for introspection and validation tools (e.g. 'arbor validate').
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload and cache invalidation.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed node.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
