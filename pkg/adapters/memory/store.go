package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.CursorStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Cursor
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Cursor),
	}
}

// Save persists a copy of the cursor.
func (s *Store) Save(_ context.Context, cursor *domain.Cursor) error {
	if cursor == nil || cursor.ID == "" {
		return fmt.Errorf("cursor missing ID")
	}
	copied := cursor.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[cursor.ID] = copied
	return nil
}

// Load returns a copy so callers can't mutate the stored cursor.
func (s *Store) Load(_ context.Context, id string) (*domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cursor, ok := s.data[id]
	if !ok {
		return nil, domain.ErrTraversalNotFound
	}
	return cursor.Clone(), nil
}

// Delete removes the cursor.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored traversal IDs in sorted order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
