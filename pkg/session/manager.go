package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/traverse"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock is held if the holder dies.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates persisted traversals, ensuring safe concurrent operations.
// Each step loads the cursor, resumes an iterator over the caller's tree,
// advances it and saves the new cursor while holding the traversal lock.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.CursorStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new traversal Manager with the given persistence store.
func NewManager(store ports.CursorStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Start creates and persists a new traversal over root.
func (m *Manager) Start(ctx context.Context, treeID string, root domain.Node) (*domain.Cursor, error) {
	if root == nil {
		return nil, fmt.Errorf("cannot start traversal of %s: nil tree", treeID)
	}
	now := m.now().UTC()
	cursor := traverse.New(root).Snapshot()
	cursor.ID = uuid.NewString()
	cursor.Tree = treeID
	cursor.Digest = domain.Fingerprint(root)
	cursor.CreatedAt = now
	cursor.UpdatedAt = now

	err := m.WithLock(ctx, cursor.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, &cursor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start traversal: %w", err)
	}

	m.logger.Debug("traversal started", "traversal", cursor.ID, "tree", treeID)
	if m.hooks.OnTraversalStart != nil {
		m.hooks.OnTraversalStart(ctx, m.event(domain.EventTraversalStart, &cursor, ""))
	}
	return &cursor, nil
}

// Next advances the traversal and returns the item it produced with the saved cursor.
// An exhausted traversal stays stored and keeps failing with domain.ErrExhausted.
func (m *Manager) Next(ctx context.Context, id string, root domain.Node) (*domain.Item, *domain.Cursor, error) {
	var (
		item   *domain.Item
		cursor *domain.Cursor
	)
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var (
			it  *traverse.Iterator
			err error
		)
		cursor, it, err = m.resume(ctx, id, root)
		if err != nil {
			return err
		}
		before := cursor.State

		item, err = it.Next()
		if err != nil {
			if before != domain.StateExhausted {
				// First failed Next on a tree that ran out during this call.
				if saveErr := m.save(ctx, cursor, it); saveErr != nil {
					return saveErr
				}
				m.exhausted(ctx, cursor)
			}
			return err
		}

		// Settle so the stored cursor reports exhaustion right after the last item.
		it.HasNext()
		if err := m.save(ctx, cursor, it); err != nil {
			return err
		}
		if m.hooks.OnItem != nil {
			m.hooks.OnItem(ctx, m.event(domain.EventItem, cursor, item.Name()))
		}
		if cursor.State == domain.StateExhausted {
			m.exhausted(ctx, cursor)
		}
		return nil
	})
	if err != nil {
		return nil, cursor, err
	}
	return item, cursor, nil
}

// HasNext reports whether the traversal has another item.
func (m *Manager) HasNext(ctx context.Context, id string, root domain.Node) (bool, error) {
	var more bool
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		cursor, it, err := m.resume(ctx, id, root)
		if err != nil {
			return err
		}
		before := cursor.State
		more = it.HasNext()
		if it.State() == before {
			return nil
		}
		if err := m.save(ctx, cursor, it); err != nil {
			return err
		}
		if cursor.State == domain.StateExhausted {
			m.exhausted(ctx, cursor)
		}
		return nil
	})
	return more, err
}

// Get returns the stored cursor.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Cursor, error) {
	var cursor *domain.Cursor
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		cursor, err = m.store.Load(ctx, id)
		return err
	})
	return cursor, err
}

// Delete removes the traversal from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying cursor store.
func (m *Manager) Store() ports.CursorStore {
	return m.store
}

// WithLock executes a function while holding the lock for the traversal.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"traversal", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) resume(ctx context.Context, id string, root domain.Node) (*domain.Cursor, *traverse.Iterator, error) {
	cursor, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if root == nil {
		return cursor, nil, fmt.Errorf("traversal %s: nil tree", id)
	}
	if digest := domain.Fingerprint(root); digest != cursor.Digest {
		return cursor, nil, fmt.Errorf("%w: traversal %s of tree %s", domain.ErrStaleCursor, id, cursor.Tree)
	}
	it, err := traverse.Resume(root, *cursor)
	if err != nil {
		return cursor, nil, fmt.Errorf("traversal %s: %w", id, err)
	}
	return cursor, it, nil
}

// save copies the iterator position into cursor and persists it.
func (m *Manager) save(ctx context.Context, cursor *domain.Cursor, it *traverse.Iterator) error {
	snap := it.Snapshot()
	cursor.Positions = snap.Positions
	cursor.State = snap.State
	cursor.Visited = snap.Visited
	cursor.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, cursor); err != nil {
		return fmt.Errorf("failed to save traversal %s: %w", cursor.ID, err)
	}
	return nil
}

func (m *Manager) exhausted(ctx context.Context, cursor *domain.Cursor) {
	m.logger.Debug("traversal exhausted", "traversal", cursor.ID, "tree", cursor.Tree, "visited", cursor.Visited)
	if m.hooks.OnExhausted != nil {
		m.hooks.OnExhausted(ctx, m.event(domain.EventTraversalExhaust, cursor, ""))
	}
}

func (m *Manager) event(typ domain.EventType, cursor *domain.Cursor, item string) *domain.TraversalEvent {
	return &domain.TraversalEvent{
		EventBase: domain.EventBase{
			Timestamp: m.now(),
			Type:      typ,
			Tree:      cursor.Tree,
		},
		TraversalID: cursor.ID,
		Item:        item,
		Visited:     cursor.Visited,
	}
}

// IsClientError reports whether err was caused by the caller (unknown or
// finished traversal, stale or invalid cursor) rather than by the backend.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrTraversalNotFound) ||
		errors.Is(err, domain.ErrExhausted) ||
		errors.Is(err, domain.ErrStaleCursor) ||
		errors.Is(err, domain.ErrInvalidCursor)
}
