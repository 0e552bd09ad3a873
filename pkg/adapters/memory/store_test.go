package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunCursorStoreContract(t, store)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("t-%02d", i)
			_ = store.Save(ctx, &domain.Cursor{ID: id, State: domain.StateReady, Positions: []int{0}})
			_, _ = store.Load(ctx, id)
		}()
	}
	wg.Wait()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 20)
	assert.Equal(t, "t-00", ids[0])
}

func TestMemoryStore_RejectsMissingID(t *testing.T) {
	assert.Error(t, memory.NewStore().Save(context.Background(), &domain.Cursor{}))
}
