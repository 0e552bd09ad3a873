package arbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/file"
	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/query"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/traverse"
	"github.com/aretw0/loam"
	"github.com/jellydator/ttlcache/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRoot is the tree id served when WithRoot is not given.
const DefaultRoot = "menu"

// ErrWatchUnsupported is returned by Watch when the loader cannot report changes.
var ErrWatchUnsupported = errors.New("current loader does not support watching")

// Engine is the high-level entry point for the Arbor library.
// It loads trees through a ports.TreeLoader and runs persisted traversals over them.
type Engine struct {
	loader   ports.TreeLoader
	root     string
	rootSet  bool
	store    ports.CursorStore
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	tracer   trace.Tracer
	cacheTTL time.Duration

	cache     *ttlcache.Cache[string, domain.Node]
	sessions  *session.Manager
	closeOnce sync.Once
	Name      string
}

// TreeInfo summarizes a tree known to the loader.
type TreeInfo struct {
	ID     string `json:"id"`
	Menus  int    `json:"menus"`
	Items  int    `json:"items"`
	Digest uint64 `json:"digest"`
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom TreeLoader, bypassing path based detection.
func WithLoader(l ports.TreeLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithRoot configures the tree id served by Tree, Items and StartTraversal (default: "menu").
func WithRoot(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.root = id
			e.rootSet = true
		}
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStore persists traversals in s instead of process memory.
func WithStore(s ports.CursorStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker serializes traversal steps across processes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithCacheTTL keeps loaded trees in memory for d. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = d
	}
}

// WithTracer sets the OpenTelemetry tracer used for load and step spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New initializes a new Arbor Engine.
// A directory is read as a Loam repository of node documents; a single file
// (.menu, .yaml, .json) holds one whole tree, which becomes the default root
// unless WithRoot is given. If WithLoader is provided, path is only used as a label.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{root: DefaultRoot}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}
		loader, err := detectLoader(path)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
		if single, ok := loader.(*file.Loader); ok && !eng.rootSet {
			ids, err := single.List(context.Background())
			if err == nil && len(ids) == 1 {
				eng.root = ids[0]
			}
		}
	}
	if path != "" {
		eng.Name = filepath.Base(path)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("source", eng.Name)
	}
	if eng.tracer == nil {
		eng.tracer = observability.Tracer()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	if eng.cacheTTL > 0 {
		eng.cache = ttlcache.New[string, domain.Node](
			ttlcache.WithTTL[string, domain.Node](eng.cacheTTL),
			ttlcache.WithDisableTouchOnHit[string, domain.Node](),
		)
	}

	sessionOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithLifecycleHooks(eng.hooks),
	}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

func detectLoader(path string) (ports.TreeLoader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if !info.IsDir() {
		return file.NewLoader(absPath)
	}

	// Strict keeps numbers as json.Number across adapters; the engine never writes.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return loamAdapter.New(loam.NewTypedRepository[loamAdapter.NodeMetadata](repo)), nil
}

// Root returns the id of the default tree.
func (e *Engine) Root() string {
	return e.root
}

// Tree loads the default tree.
func (e *Engine) Tree(ctx context.Context) (domain.Node, error) {
	return e.Load(ctx, e.root)
}

// Load resolves the tree rooted at id, serving it from the cache when enabled.
func (e *Engine) Load(ctx context.Context, id string) (node domain.Node, err error) {
	if e.cache != nil {
		if hit := e.cache.Get(id); hit != nil {
			return hit.Value(), nil
		}
	}

	ctx, span := observability.StartSpan(ctx, e.tracer, "arbor.Load", id)
	defer func() { observability.EndSpan(span, err) }()

	node, err = e.loader.Load(ctx, id)
	if err == nil {
		err = domain.Validate(node)
	}

	event := &domain.TreeEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventTreeLoad,
			Tree:      id,
		},
		Err: err,
	}
	if err != nil {
		e.logger.Debug("tree load failed", "tree", id, "err", err)
		if e.hooks.OnTreeLoad != nil {
			e.hooks.OnTreeLoad(ctx, event)
		}
		return nil, fmt.Errorf("failed to load tree %s: %w", id, err)
	}

	event.Menus, event.Items = domain.Count(node)
	span.SetAttributes(
		attribute.Int("arbor.menus", event.Menus),
		attribute.Int("arbor.items", event.Items),
	)
	e.logger.Debug("tree loaded", "tree", id, "menus", event.Menus, "items", event.Items)
	if e.hooks.OnTreeLoad != nil {
		e.hooks.OnTreeLoad(ctx, event)
	}

	if e.cache != nil {
		// No janitor goroutine runs; expired trees are evicted here.
		e.cache.DeleteExpired()
		e.cache.Set(id, node, ttlcache.DefaultTTL)
	}
	return node, nil
}

// Iterator returns a fresh in-memory iterator over the default tree.
func (e *Engine) Iterator(ctx context.Context) (*traverse.Iterator, error) {
	root, err := e.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return traverse.New(root), nil
}

// Items returns the items of the default tree, in traversal order, that pass every filter.
func (e *Engine) Items(ctx context.Context, filters ...query.Filter) ([]*domain.Item, error) {
	root, err := e.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return query.Collect(root, filters...), nil
}

// Inspect lists every tree the loader knows with its size and fingerprint.
// Documents that fail to resolve are reported through the returned error.
func (e *Engine) Inspect(ctx context.Context) ([]TreeInfo, error) {
	ids, err := e.loader.List(ctx)
	if err != nil {
		return nil, err
	}
	var (
		infos []TreeInfo
		errs  []error
	)
	for _, id := range ids {
		node, err := e.Load(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		menus, items := domain.Count(node)
		infos = append(infos, TreeInfo{
			ID:     id,
			Menus:  menus,
			Items:  items,
			Digest: domain.Fingerprint(node),
		})
	}
	return infos, errors.Join(errs...)
}

// StartTraversal persists a new traversal over treeID, or the default tree when empty.
func (e *Engine) StartTraversal(ctx context.Context, treeID string) (*domain.Cursor, error) {
	if treeID == "" {
		treeID = e.root
	}
	root, err := e.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	return e.sessions.Start(ctx, treeID, root)
}

// NextItem advances a persisted traversal.
// It returns domain.ErrExhausted once every item was produced.
func (e *Engine) NextItem(ctx context.Context, id string) (item *domain.Item, cursor *domain.Cursor, err error) {
	root, treeID, err := e.traversalTree(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ctx, span := observability.StartSpan(ctx, e.tracer, "arbor.NextItem", treeID,
		attribute.String("arbor.traversal", id))
	defer func() {
		if errors.Is(err, domain.ErrExhausted) {
			span.End()
			return
		}
		observability.EndSpan(span, err)
	}()

	item, cursor, err = e.sessions.Next(ctx, id, root)
	if cursor != nil {
		span.SetAttributes(attribute.Int("arbor.visited", cursor.Visited))
	}
	return item, cursor, err
}

// HasNextItem reports whether a persisted traversal has another item.
func (e *Engine) HasNextItem(ctx context.Context, id string) (bool, error) {
	root, _, err := e.traversalTree(ctx, id)
	if err != nil {
		return false, err
	}
	return e.sessions.HasNext(ctx, id, root)
}

// Traversal returns the stored cursor of a traversal.
func (e *Engine) Traversal(ctx context.Context, id string) (*domain.Cursor, error) {
	return e.sessions.Get(ctx, id)
}

// Traversals lists the ids of stored traversals.
func (e *Engine) Traversals(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// StopTraversal deletes a traversal.
func (e *Engine) StopTraversal(ctx context.Context, id string) error {
	return e.sessions.Delete(ctx, id)
}

func (e *Engine) traversalTree(ctx context.Context, id string) (domain.Node, string, error) {
	cursor, err := e.sessions.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	root, err := e.Load(ctx, cursor.Tree)
	if err != nil {
		return nil, cursor.Tree, err
	}
	return root, cursor.Tree, nil
}

// Watch returns a channel that signals when the underlying documents change.
// Every change drops the cached trees, since a child edit changes its ancestors.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	src, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-src:
				if !ok {
					return
				}
				if e.cache != nil {
					e.cache.DeleteAll()
				}
				e.logger.Debug("document changed", "id", id)
				select {
				case out <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Loader returns the underlying TreeLoader used by the engine.
func (e *Engine) Loader() ports.TreeLoader {
	return e.loader
}

// Store returns the cursor store backing persisted traversals.
func (e *Engine) Store() ports.CursorStore {
	return e.store
}

// Close drops the cached trees. It does not close injected stores.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.cache != nil {
			e.cache.DeleteAll()
		}
	})
	return nil
}
