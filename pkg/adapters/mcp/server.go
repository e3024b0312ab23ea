// Package mcp exposes the selection engine to model-context-protocol hosts.
// An assistant drives the widget through tools: it activates nodes, reads the
// canonical selection back and searches the tree, while the session manager
// keeps the value consistent across calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	canopy "github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/observability"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/session"
)

// SessionResponse aligns with the OpenAPI SessionView schema and provides a
// unified structure across adapters.
type SessionResponse struct {
	Selection *domain.Selection `json:"selection" jsonschema_description:"The canonical selection of the session"`
	Summary   string            `json:"summary" jsonschema_description:"Display summary of the selection"`
}

// ActivateResponse carries the outcome of one node activation.
type ActivateResponse struct {
	Selection *domain.Selection `json:"selection" jsonschema_description:"The new canonical selection"`
	Delta     *domain.Delta     `json:"delta,omitempty" jsonschema_description:"The authoritative delta applied, absent for no-ops"`
	Summary   string            `json:"summary" jsonschema_description:"Display summary of the new selection"`
	Noop      bool              `json:"noop" jsonschema_description:"True when the activation changed nothing"`
}

// SearchResponse lists node ids visible under a search term.
type SearchResponse struct {
	IDs []string `json:"ids" jsonschema_description:"Visible node ids in tree order"`
}

// Server wraps the selection engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.SelectionService
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.SelectionService, sessions *session.Manager) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("canopy-mcp", strings.TrimSpace(canopy.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: select_option
	selectTool := mcp.NewTool("select_option",
		mcp.WithDescription("Activate an option node. Branch nodes toggle their whole subtree; in single mode the activated option replaces the selection."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Widget session to mutate")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("The ID of the node being activated")),
		mcp.WithOutputSchema[ActivateResponse](),
	)
	s.mcpServer.AddTool(selectTool, mcp.NewStructuredToolHandler(s.handleSelectOption))

	// TOOL: get_selection
	getTool := mcp.NewTool("get_selection",
		mcp.WithDescription("Read the canonical selection of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Widget session to read")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetSelection))

	// TOOL: set_selection
	setTool := mcp.NewTool("set_selection",
		mcp.WithDescription("Replace the selection of a session. The ids are canonicalized (ordered, deduplicated, mode exclusivity applied)."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Widget session to mutate")),
		mcp.WithString("ids", mcp.Required(), mcp.Description("JSON array of node ids")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(setTool, mcp.NewStructuredToolHandler(s.handleSetSelection))

	// TOOL: search_options
	searchTool := mcp.NewTool("search_options",
		mcp.WithDescription("List the node ids visible under a search term. A node is visible when its label or any descendant label contains the term."),
		mcp.WithString("query", mcp.Description("Case-insensitive substring; empty shows the full tree")),
		mcp.WithOutputSchema[SearchResponse](),
	)
	s.mcpServer.AddTool(searchTool, mcp.NewStructuredToolHandler(s.handleSearchOptions))

	// TOOL: get_node_status
	statusTool := mcp.NewTool("get_node_status",
		mcp.WithDescription("Derive the checkbox and visibility state of one node for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Widget session to read")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to inspect")),
		mcp.WithString("query", mcp.Description("Active search term, if any")),
		mcp.WithOutputSchema[domain.DisplayStatus](),
	)
	s.mcpServer.AddTool(statusTool, mcp.NewStructuredToolHandler(s.handleGetNodeStatus))

	// TOOL: get_tree
	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the full option tree definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Inspect())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleSelectOption(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ActivateResponse, error) {
	sessionID, _ := args["session_id"].(string)
	nodeID, _ := args["node_id"].(string)
	if sessionID == "" || nodeID == "" {
		return ActivateResponse{}, fmt.Errorf("session_id and node_id are required")
	}

	var delta *domain.Delta
	newSel, err := s.sessions.Update(ctx, sessionID, s.engine.DefaultMode(), func(sel *domain.Selection) (*domain.Selection, error) {
		next, d, err := s.engine.Activate(ctx, sel, nodeID)
		if err != nil {
			return nil, err
		}
		delta = d
		return next, nil
	})
	if err != nil {
		observability.ActivationsTotal.WithLabelValues("mcp", observability.OutcomeError).Inc()
		return ActivateResponse{}, fmt.Errorf("activate failed: %w", err)
	}

	outcome := observability.OutcomeApplied
	if delta == nil {
		outcome = observability.OutcomeNoop
	}
	observability.ActivationsTotal.WithLabelValues("mcp", outcome).Inc()

	return ActivateResponse{
		Selection: newSel,
		Delta:     delta,
		Summary:   s.engine.SelectedLabel(newSel),
		Noop:      delta == nil,
	}, nil
}

func (s *Server) handleGetSelection(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return SessionResponse{}, fmt.Errorf("session_id is required")
	}

	sel, err := s.sessions.LoadOrStart(ctx, sessionID, s.engine.DefaultMode())
	if err != nil {
		return SessionResponse{}, fmt.Errorf("load failed: %w", err)
	}

	return SessionResponse{Selection: sel, Summary: s.engine.SelectedLabel(sel)}, nil
}

func (s *Server) handleSetSelection(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return SessionResponse{}, fmt.Errorf("session_id is required")
	}

	var ids []string
	if idsStr, ok := args["ids"].(string); ok {
		if err := json.Unmarshal([]byte(idsStr), &ids); err != nil {
			return SessionResponse{}, fmt.Errorf("ids must be a JSON array of strings: %w", err)
		}
	}

	canonical := s.engine.Merge(nil, &domain.Delta{Add: ids})
	if err := s.sessions.Save(ctx, sessionID, canonical); err != nil {
		return SessionResponse{}, fmt.Errorf("save failed: %w", err)
	}

	return SessionResponse{Selection: canonical, Summary: s.engine.SelectedLabel(canonical)}, nil
}

func (s *Server) handleSearchOptions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SearchResponse, error) {
	query, _ := args["query"].(string)
	observability.SearchesTotal.WithLabelValues("mcp").Inc()
	return SearchResponse{IDs: s.engine.Visible(query)}, nil
}

func (s *Server) handleGetNodeStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.DisplayStatus, error) {
	sessionID, _ := args["session_id"].(string)
	nodeID, _ := args["node_id"].(string)
	if sessionID == "" || nodeID == "" {
		return domain.DisplayStatus{}, fmt.Errorf("session_id and node_id are required")
	}
	query, _ := args["query"].(string)

	sel, err := s.sessions.Load(ctx, sessionID)
	if err == domain.ErrSessionNotFound {
		sel = domain.NewSelection(s.engine.DefaultMode())
	} else if err != nil {
		return domain.DisplayStatus{}, fmt.Errorf("load failed: %w", err)
	}

	return s.engine.Status(sel, nodeID, query), nil
}

func (s *Server) registerResources() {
	// EXPOSE: canopy://tree
	s.mcpServer.AddResource(mcp.NewResource("canopy://tree", "Option Tree Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Inspect())
		if err != nil {
			return nil, fmt.Errorf("failed to inspect tree: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "canopy://tree",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
