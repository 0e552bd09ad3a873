package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/query"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// Engine defines the subset of *arbor.Engine served over HTTP.
type Engine interface {
	Root() string
	Load(ctx context.Context, id string) (domain.Node, error)
	Inspect(ctx context.Context) ([]arbor.TreeInfo, error)
	StartTraversal(ctx context.Context, treeID string) (*domain.Cursor, error)
	NextItem(ctx context.Context, id string) (*domain.Item, *domain.Cursor, error)
	Traversal(ctx context.Context, id string) (*domain.Cursor, error)
	Traversals(ctx context.Context) ([]string, error)
	StopTraversal(ctx context.Context, id string) error
	Watch(ctx context.Context) (<-chan string, error)
}

// Server holds the handlers of the REST API.
type Server struct {
	Engine Engine

	spec     *openapi3.T
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	origins  []string
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves g on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithCORSOrigins restricts the allowed origins (default "*").
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

// NewHandler creates a new HTTP handler for the engine.
// Requests to documented routes are checked against the OpenAPI document first.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s := &Server{
		Engine:   engine,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		origins:  []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.spec = spec
	validate, err := s.newValidator(spec)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.cors)
	r.Use(validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(rawSpec)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/trees", s.ListTrees)
	r.Get("/menu", s.GetMenu)
	r.Get("/items", s.ListItems)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/traversals", s.ListTraversals)
	r.Post("/traversals", s.StartTraversal)
	r.Get("/traversals/{id}", s.GetTraversal)
	r.Delete("/traversals/{id}", s.StopTraversal)
	r.Post("/traversals/{id}/next", s.NextItem)
	r.Delete("/traversals/{id}/current", s.RemoveCurrent)
	return r, nil
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range s.origins {
			if allowed == "*" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				break
			}
			if allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				break
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "arbor-http",
		"version":     arbor.Version,
		"api_version": s.spec.Info.Version,
		"root":        s.Engine.Root(),
	})
}

// ListTrees handles the GET /trees request.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	infos, err := s.Engine.Inspect(r.Context())
	if err != nil {
		// Broken documents do not hide the healthy trees.
		s.logger.Warn("inspect reported errors", "err", err)
	}
	if infos == nil {
		infos = []arbor.TreeInfo{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

// GetMenu handles the GET /menu request.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	root, err := s.Engine.Load(r.Context(), s.treeParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, root)
}

// ListItems handles the GET /items request.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	root, err := s.Engine.Load(r.Context(), s.treeParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := query.Collect(root, filters...)
	if items == nil {
		items = []*domain.Item{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func parseFilters(r *http.Request) ([]query.Filter, error) {
	q := r.URL.Query()
	var filters []query.Filter
	if v := q.Get("vegetarian"); v != "" {
		veg, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid vegetarian: %w", err)
		}
		if veg {
			filters = append(filters, query.Vegetarian())
		}
	}
	if v := q.Get("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max_price: %w", err)
		}
		filters = append(filters, query.MaxPrice(p))
	}
	if v := q.Get("q"); v != "" {
		term, err := query.SanitizeTerm(v)
		if err != nil {
			return nil, err
		}
		filters = append(filters, query.NameContains(term))
	}
	return filters, nil
}

// GetGraph handles the GET /graph request.
// With ?traversal=ID the graph is drawn for that traversal's tree and marks
// the items it already produced.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tree := s.treeParam(r)

	visited := -1
	if id := r.URL.Query().Get("traversal"); id != "" {
		cursor, err := s.Engine.Traversal(ctx, id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		tree, visited = cursor.Tree, cursor.Visited
	}

	root, err := s.Engine.Load(ctx, tree)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var overlay *graph.GraphOverlay
	if visited >= 0 {
		overlay = graph.OverlayFor(root, visited)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(root, overlay))
}

// ListTraversals handles the GET /traversals request.
func (s *Server) ListTraversals(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Traversals(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

type startRequest struct {
	Tree string `json:"tree"`
}

// StartTraversal handles the POST /traversals request.
func (s *Server) StartTraversal(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			s.writeJSON(w, http.StatusBadRequest, errorBody(fmt.Errorf("invalid request body: %w", err)))
			return
		}
	}
	cursor, err := s.Engine.StartTraversal(r.Context(), body.Tree)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/traversals/"+cursor.ID)
	s.writeJSON(w, http.StatusCreated, cursor)
}

// GetTraversal handles the GET /traversals/{id} request.
func (s *Server) GetTraversal(w http.ResponseWriter, r *http.Request) {
	cursor, err := s.Engine.Traversal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cursor)
}

// StopTraversal handles the DELETE /traversals/{id} request.
func (s *Server) StopTraversal(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.StopTraversal(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type nextResponse struct {
	Item    *domain.Item   `json:"item"`
	Cursor  *domain.Cursor `json:"cursor"`
	HasNext bool           `json:"has_next"`
}

// NextItem handles the POST /traversals/{id}/next request.
func (s *Server) NextItem(w http.ResponseWriter, r *http.Request) {
	item, cursor, err := s.Engine.NextItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nextResponse{
		Item:    item,
		Cursor:  cursor,
		HasNext: cursor.State != domain.StateExhausted,
	})
}

// RemoveCurrent handles the DELETE /traversals/{id}/current request.
// Traversals never mutate their tree, so this always fails once the traversal exists.
func (s *Server) RemoveCurrent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Engine.Traversal(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeError(w, fmt.Errorf("remove: %w", domain.ErrUnsupported))
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, errorBody(errors.New("streaming not supported")))
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		if errors.Is(err, arbor.ErrWatchUnsupported) {
			s.writeJSON(w, http.StatusNotImplemented, errorBody(err))
			return
		}
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func (s *Server) treeParam(r *http.Request) string {
	if tree := strings.TrimSpace(r.URL.Query().Get("tree")); tree != "" {
		return tree
	}
	return s.Engine.Root()
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrExhausted):
		return http.StatusGone
	case errors.Is(err, domain.ErrUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, domain.ErrTraversalNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStaleCursor), errors.Is(err, domain.ErrInvalidCursor):
		return http.StatusConflict
	case errors.Is(err, query.ErrTermTooLarge), errors.Is(err, query.ErrInvalidUTF8):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && !session.IsClientError(err) {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody(err))
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
