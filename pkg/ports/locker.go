package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes steps of one traversal across processes that
// share a CursorStore, so two replicas never hand out the same item twice.
type DistributedLocker interface {
	// Lock blocks until key (a traversal ID) is held or ctx is done.
	// The lock expires after ttl if the holder never releases it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
