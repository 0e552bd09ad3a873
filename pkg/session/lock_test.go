package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	root := domain.NewItem("x", "", false, 1)

	for i := 0; i < 1000; i++ {
		cursor, err := mgr.Start(ctx, fmt.Sprintf("tree-%d", i), root)
		if err != nil {
			t.Fatal(err)
		}
		_, _, _ = mgr.Next(ctx, cursor.ID, root)
		_ = mgr.Delete(ctx, cursor.ID)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", n)
	}
}
