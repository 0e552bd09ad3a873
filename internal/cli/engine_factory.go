package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Options are the settings a command passes on top of the configuration file.
type Options struct {
	Source     string // Directory or single menu file
	ConfigPath string
	Root       string
	LogLevel   string
	LogOutput  io.Writer // Defaults to Stderr
	RedisAddr  string

	// Store overrides the configured traversal store.
	Store ports.CursorStore
}

// Env is everything a command needs to talk to the engine.
type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *arbor.Engine
	Registry *prometheus.Registry

	locker  ports.DistributedLocker
	closers []func() error
}

// NewEnv loads the configuration for opts.Source and builds an engine from it.
func NewEnv(ctx context.Context, opts Options) (*Env, error) {
	if opts.Source == "" {
		opts.Source = "."
	}
	cfg, err := config.Load(opts.Source, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Root != "" {
		cfg.Root = opts.Root
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.RedisAddr != "" {
		cfg.Redis.Addr = opts.RedisAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg, opts.LogOutput)
	if err != nil {
		return nil, err
	}

	env := &Env{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	metrics, err := observability.NewMetrics(env.Registry)
	if err != nil {
		return nil, err
	}

	engineOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithLifecycleHooks(metrics.Hooks().Merge(DebugHooks(logger))),
		arbor.WithCacheTTL(cfg.CacheTTL),
	}

	if root := resolveRoot(opts.Source, cfg.Root); root != "" {
		engineOpts = append(engineOpts, arbor.WithRoot(root))
	}

	store, err := env.store(ctx, opts.Store)
	if err != nil {
		env.Close()
		return nil, err
	}
	if store != nil {
		engineOpts = append(engineOpts, arbor.WithStore(store))
	}
	if env.locker != nil {
		engineOpts = append(engineOpts, arbor.WithLocker(env.locker))
	}

	engine, err := arbor.New(opts.Source, engineOpts...)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	env.Engine = engine
	return env, nil
}

// Close releases the engine and any store connections.
func (e *Env) Close() error {
	var errs []error
	if e.Engine != nil {
		errs = append(errs, e.Engine.Close())
	}
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// store picks the traversal store: explicit, then Redis, else nil for the
// engine's in-memory default. Persisted stores are sealed when a key is configured.
func (e *Env) store(ctx context.Context, explicit ports.CursorStore) (ports.CursorStore, error) {
	cfg := e.Config
	store := explicit
	if store == nil && cfg.Redis.Addr != "" {
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(cfg.Redis.TTL), redis.WithPrefix(cfg.Redis.Prefix))
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Redis.Addr, err)
		}
		e.closers = append(e.closers, rs.Close)
		e.locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
		e.Logger.Debug("Traversals stored in Redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		store = rs
	}
	if store == nil {
		return nil, nil
	}

	keys, err := cfg.Encryption.Keys()
	if err != nil || keys == nil {
		return store, err
	}
	seal, err := middleware.NewEncryptionMiddleware(*keys)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug("Traversals are encrypted", "fallback_keys", len(keys.FallbackKeys))
	return middleware.Chain(store, seal), nil
}

// NewLogger builds the process logger from the configuration.
// A nil w means Stderr.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return logging.NewWithWriter(w, level, cfg.LogFormat == "json"), nil
}

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTreeLoad: func(_ context.Context, e *domain.TreeEvent) {
			if e.Err != nil {
				logger.Debug("Tree load failed", "tree", e.Tree, "err", e.Err)
				return
			}
			logger.Debug("Tree loaded", "tree", e.Tree, "menus", e.Menus, "items", e.Items)
		},
		OnTraversalStart: func(_ context.Context, e *domain.TraversalEvent) {
			logger.Debug("Traversal started", "tree", e.Tree, "traversal_id", e.TraversalID)
		},
		OnItem: func(_ context.Context, e *domain.TraversalEvent) {
			logger.Debug("Item served", "traversal_id", e.TraversalID, "item", e.Item, "visited", e.Visited)
		},
		OnExhausted: func(_ context.Context, e *domain.TraversalEvent) {
			logger.Debug("Traversal exhausted", "traversal_id", e.TraversalID, "visited", e.Visited)
		},
	}
}

// resolveRoot returns the tree id to pass to the engine, or "" to keep its default.
// An explicit root always wins. A directory without a "menu" document falls back
// to "index" and then to a document named after the directory.
func resolveRoot(source, configured string) string {
	if configured != arbor.DefaultRoot {
		return configured
	}
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return ""
	}
	return DetermineRoot(source)
}

// DetermineRoot picks the root document of a directory by convention.
func DetermineRoot(dir string) string {
	candidates := []string{arbor.DefaultRoot, "index"}
	if abs, err := filepath.Abs(dir); err == nil {
		candidates = append(candidates, filepath.Base(abs))
	}
	for _, id := range candidates {
		if hasDocument(dir, id) {
			return id
		}
	}
	return arbor.DefaultRoot
}

func hasDocument(dir, id string) bool {
	for _, ext := range []string{".md", ".yaml", ".yml", ".json"} {
		if _, err := os.Stat(filepath.Join(dir, id+ext)); err == nil {
			return true
		}
	}
	return false
}
