package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCursorStoreContract runs a suite of tests to verify that a CursorStore implementation
// adheres to the defined interface contract.
func RunCursorStoreContract(t *testing.T, store CursorStore) {
	ctx := context.Background()
	id := "contract-test-traversal-" + time.Now().Format("20060102150405")
	now := time.Now().UTC().Truncate(time.Millisecond)

	newCursor := func(id string) *domain.Cursor {
		return &domain.Cursor{
			ID:        id,
			Tree:      "menu",
			Digest:    0xdeadbeefcafe,
			Positions: []int{1, 2, 0},
			State:     domain.StateInProgress,
			Visited:   3,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		cursor := newCursor(id)
		require.NoError(t, store.Save(ctx, cursor), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cursor.Tree, loaded.Tree)
		assert.Equal(t, cursor.Digest, loaded.Digest)
		assert.Equal(t, cursor.Positions, loaded.Positions)
		assert.Equal(t, cursor.State, loaded.State)
		assert.Equal(t, cursor.Visited, loaded.Visited)
		assert.True(t, cursor.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Load Returns A Copy", func(t *testing.T) {
		cursor := newCursor(id)
		require.NoError(t, store.Save(ctx, cursor))
		cursor.Positions[0] = 99

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Positions[1] = 99

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 0}, again.Positions)
	})

	t.Run("Overwrite", func(t *testing.T) {
		cursor := newCursor(id)
		cursor.State = domain.StateExhausted
		cursor.Positions = []int{}
		require.NoError(t, store.Save(ctx, cursor))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StateExhausted, loaded.State)
		assert.Empty(t, loaded.Positions)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrTraversalNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newCursor(id)))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrTraversalNotFound, "Load after Delete should return ErrTraversalNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, newCursor(id1)))
		require.NoError(t, store.Save(ctx, newCursor(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
