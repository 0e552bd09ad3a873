package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder collects named trees.
type Builder struct {
	trees map[string]domain.Node
	order []string
}

// New creates a new tree set builder.
func New() *Builder {
	return &Builder{
		trees: make(map[string]domain.Node),
	}
}

// Tree registers a menu under id. Registering an id twice replaces the tree.
func (b *Builder) Tree(id string, m *MenuBuilder) *Builder {
	return b.Node(id, m.Build())
}

// Node registers an already built node (e.g. a lone item) under id.
func (b *Builder) Node(id string, n domain.Node) *Builder {
	if _, ok := b.trees[id]; !ok {
		b.order = append(b.order, id)
	}
	b.trees[id] = n
	return b
}

// IDs returns the registered ids in registration order.
func (b *Builder) IDs() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Build compiles the trees into a memory Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	loader, err := memory.NewFromNodes(b.trees)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
