package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/query"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// MenuURI is the resource holding the default tree as JSON.
const MenuURI = "arbor://menu"

// Engine defines the subset of *arbor.Engine exposed as MCP tools.
type Engine interface {
	Root() string
	Load(ctx context.Context, id string) (domain.Node, error)
	StartTraversal(ctx context.Context, treeID string) (*domain.Cursor, error)
	NextItem(ctx context.Context, id string) (*domain.Item, *domain.Cursor, error)
	Traversal(ctx context.Context, id string) (*domain.Cursor, error)
}

// ItemView is the tool representation of a menu item.
type ItemView struct {
	Name        string  `json:"name" jsonschema_description:"Item name"`
	Description string  `json:"description,omitempty" jsonschema_description:"Item description"`
	Price       float64 `json:"price" jsonschema_description:"Item price"`
	Vegetarian  bool    `json:"vegetarian" jsonschema_description:"Dietary marker"`
}

// ItemsResponse lists items in traversal order.
type ItemsResponse struct {
	Tree  string     `json:"tree" jsonschema_description:"Tree the items belong to"`
	Items []ItemView `json:"items" jsonschema_description:"Items that passed every filter"`
}

// TraversalView summarizes a persisted traversal.
type TraversalView struct {
	ID      string `json:"id" jsonschema_description:"Traversal ID, passed to next_item"`
	Tree    string `json:"tree" jsonschema_description:"Tree being traversed"`
	State   string `json:"state" jsonschema_description:"ready, in_progress or exhausted"`
	Visited int    `json:"visited" jsonschema_description:"Items produced so far"`
}

// NextResponse is the result of next_item. Exhaustion is reported, not raised.
type NextResponse struct {
	Item      *ItemView     `json:"item,omitempty" jsonschema_description:"The item produced by this step"`
	Traversal TraversalView `json:"traversal" jsonschema_description:"The traversal after this step"`
	HasNext   bool          `json:"has_next" jsonschema_description:"Whether another call will produce an item"`
}

type treeArgs struct {
	Tree string `json:"tree,omitempty"`
}

type itemsArgs struct {
	Tree       string   `json:"tree,omitempty"`
	Vegetarian bool     `json:"vegetarian,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	Query      string   `json:"query,omitempty"`
}

type nextArgs struct {
	TraversalID string `json:"traversal_id"`
}

// Server wraps the Arbor Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("arbor-mcp", arbor.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_menu",
		mcp.WithDescription("Get a whole menu tree as JSON: menus with ordered children, items with price and dietary marker."),
		mcp.WithString("tree", mcp.Description("Tree ID (defaults to the server root)")),
	), s.handleGetMenu)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a Mermaid flowchart of a menu tree."),
		mcp.WithString("tree", mcp.Description("Tree ID (defaults to the server root)")),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List the items of a tree in depth-first order, optionally filtered."),
		mcp.WithString("tree", mcp.Description("Tree ID (defaults to the server root)")),
		mcp.WithBoolean("vegetarian", mcp.Description("Only vegetarian items")),
		mcp.WithNumber("max_price", mcp.Description("Only items priced at or below this value"), mcp.Min(0)),
		mcp.WithString("query", mcp.Description("Case-insensitive text to find in name or description")),
		mcp.WithOutputSchema[ItemsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListItems))

	s.mcpServer.AddTool(mcp.NewTool("start_traversal",
		mcp.WithDescription("Start a persisted traversal that returns one item per next_item call."),
		mcp.WithString("tree", mcp.Description("Tree ID (defaults to the server root)")),
		mcp.WithOutputSchema[TraversalView](),
	), mcp.NewStructuredToolHandler(s.handleStartTraversal))

	s.mcpServer.AddTool(mcp.NewTool("next_item",
		mcp.WithDescription("Advance a traversal and return its next item. When has_next is false the traversal is exhausted."),
		mcp.WithString("traversal_id", mcp.Required(), mcp.Description("ID returned by start_traversal")),
		mcp.WithOutputSchema[NextResponse](),
	), mcp.NewStructuredToolHandler(s.handleNextItem))
}

func (s *Server) tree(id string) string {
	if id == "" {
		return s.engine.Root()
	}
	return id
}

func (s *Server) handleGetMenu(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args treeArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	root, err := s.engine.Load(ctx, s.tree(args.Tree))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	data, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args treeArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	root, err := s.engine.Load(ctx, s.tree(args.Tree))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(root, nil)), nil
}

func (s *Server) handleListItems(ctx context.Context, _ mcp.CallToolRequest, args itemsArgs) (ItemsResponse, error) {
	tree := s.tree(args.Tree)
	var filters []query.Filter
	if args.Vegetarian {
		filters = append(filters, query.Vegetarian())
	}
	if args.MaxPrice != nil {
		filters = append(filters, query.MaxPrice(*args.MaxPrice))
	}
	if args.Query != "" {
		term, err := query.SanitizeTerm(args.Query)
		if err != nil {
			s.logger.Warn("MCP list_items: query rejected", "err", err, "size", len(args.Query))
			return ItemsResponse{}, fmt.Errorf("query rejected: %w", err)
		}
		filters = append(filters, query.NameContains(term))
	}

	root, err := s.engine.Load(ctx, tree)
	if err != nil {
		return ItemsResponse{}, fmt.Errorf("load failed: %w", err)
	}
	resp := ItemsResponse{Tree: tree, Items: []ItemView{}}
	for _, item := range query.Collect(root, filters...) {
		resp.Items = append(resp.Items, viewItem(item))
	}
	return resp, nil
}

func (s *Server) handleStartTraversal(ctx context.Context, _ mcp.CallToolRequest, args treeArgs) (TraversalView, error) {
	cursor, err := s.engine.StartTraversal(ctx, s.tree(args.Tree))
	if err != nil {
		return TraversalView{}, fmt.Errorf("start failed: %w", err)
	}
	return viewCursor(cursor), nil
}

func (s *Server) handleNextItem(ctx context.Context, _ mcp.CallToolRequest, args nextArgs) (NextResponse, error) {
	if args.TraversalID == "" {
		return NextResponse{}, errors.New("traversal_id is required")
	}
	item, cursor, err := s.engine.NextItem(ctx, args.TraversalID)
	if errors.Is(err, domain.ErrExhausted) {
		if cursor == nil {
			if cursor, err = s.engine.Traversal(ctx, args.TraversalID); err != nil {
				return NextResponse{}, err
			}
		}
		return NextResponse{Traversal: viewCursor(cursor)}, nil
	}
	if err != nil {
		return NextResponse{}, fmt.Errorf("next failed: %w", err)
	}
	view := viewItem(item)
	return NextResponse{
		Item:      &view,
		Traversal: viewCursor(cursor),
		HasNext:   cursor.State != domain.StateExhausted,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(MenuURI, "Default Menu Tree",
		mcp.WithResourceDescription("The tree served by default, as JSON."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		root, err := s.engine.Load(ctx, s.engine.Root())
		if err != nil {
			return nil, fmt.Errorf("failed to load menu: %w", err)
		}
		data, err := json.Marshal(root)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      MenuURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func viewItem(i *domain.Item) ItemView {
	return ItemView{
		Name:        i.Name(),
		Description: i.Description(),
		Price:       i.Price(),
		Vegetarian:  i.Vegetarian(),
	}
}

func viewCursor(c *domain.Cursor) TraversalView {
	return TraversalView{
		ID:      c.ID,
		Tree:    c.Tree,
		State:   c.State.String(),
		Visited: c.Visited,
	}
}
