package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
)

// Loader implements ports.TreeLoader using an in-memory map of trees.
type Loader struct {
	trees map[string]domain.Node
}

// NewLoader creates a Loader from JSON-encoded trees (see domain.UnmarshalNode).
func NewLoader(data map[string]string) (*Loader, error) {
	trees := make(map[string]domain.Node, len(data))
	for id, raw := range data {
		n, err := domain.UnmarshalNode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode tree %s: %w", id, err)
		}
		trees[id] = n
	}
	return NewFromNodes(trees)
}

// NewFromNodes creates a Loader from domain objects.
// Every tree is validated up front.
func NewFromNodes(trees map[string]domain.Node) (*Loader, error) {
	copied := make(map[string]domain.Node, len(trees))
	for id, n := range trees {
		if id == "" {
			return nil, fmt.Errorf("tree missing ID")
		}
		if err := domain.Validate(n); err != nil {
			return nil, fmt.Errorf("invalid tree %s: %w", id, err)
		}
		copied[id] = n
	}
	return &Loader{trees: copied}, nil
}

// Load returns the tree registered under id.
func (l *Loader) Load(_ context.Context, id string) (domain.Node, error) {
	n, ok := l.trees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// List returns all registered tree IDs.
func (l *Loader) List(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.trees))
	for k := range l.trees {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
