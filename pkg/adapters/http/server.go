// Package http exposes the selection engine over a REST surface. Hosts are
// stateless per request: the canonical selection of each widget session lives
// behind the session manager, and every activation broadcasts its delta to
// SSE subscribers so remote renderers can repaint incrementally.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/aretw0/canopy/api"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/observability"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/session"
)

// AppVersion is reported by GET /info. The cmd wires the module version here.
var AppVersion = "dev"

// Server handles the REST and SSE surface of the selection engine.
type Server struct {
	Engine   ports.SelectionService
	Sessions *session.Manager
	Streams  *StreamManager
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.SelectionService, sessions *session.Manager) http.Handler {
	server := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
	}

	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/tree", server.GetTree)
	r.Get("/tree/visible", server.GetVisible)
	r.Get("/sessions", server.ListSessions)
	r.Get("/sessions/{sessionID}", server.GetSession)
	r.Put("/sessions/{sessionID}", server.PutSession)
	r.Delete("/sessions/{sessionID}", server.DeleteSession)
	r.Post("/sessions/{sessionID}/activate", server.ActivateNode)
	r.Post("/sessions/{sessionID}/merge", server.MergeDelta)
	r.Get("/sessions/{sessionID}/status", server.GetNodeStatus)
	r.Get("/events", server.SubscribeEvents)

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Canopy API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// SessionView is the read projection of a session's selection.
type SessionView struct {
	Selection *domain.Selection `json:"selection"`
	Summary   string            `json:"summary"`
}

// ActivationResult carries the outcome of one node activation.
type ActivationResult struct {
	Selection *domain.Selection `json:"selection"`
	Delta     *domain.Delta     `json:"delta,omitempty"`
	Summary   string            `json:"summary"`
	Noop      bool              `json:"noop"`
}

func (s *Server) view(sel *domain.Selection) SessionView {
	return SessionView{Selection: sel, Summary: s.Engine.SelectedLabel(sel)}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := openapi3.NewLoader().LoadFromData(api.Spec); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, map[string]string{
		"app":         "canopy-http",
		"version":     strings.TrimSpace(AppVersion),
		"api_version": apiVersion,
	})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.Inspect())
}

// GetVisible handles the GET /tree/visible request.
func (s *Server) GetVisible(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	observability.SearchesTotal.WithLabelValues("http").Inc()
	writeJSON(w, map[string][]string{"ids": s.Engine.Visible(term)})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.Sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		slog.Error("ListSessions failed", "error", err)
		return
	}
	writeJSON(w, map[string][]string{"sessions": sessions})
}

// GetSession handles the GET /sessions/{sessionID} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sel, err := s.Sessions.Load(r.Context(), sessionID)
	if err == domain.ErrSessionNotFound {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		slog.Error("GetSession failed", "error", err, "session_id", sessionID)
		return
	}
	writeJSON(w, s.view(sel))
}

// PutSession handles the PUT /sessions/{sessionID} request. The supplied ids
// replace the selection; they are canonicalized through an empty-base merge so
// ordering and mode exclusivity hold regardless of what the host sends.
func (s *Server) PutSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("PutSession: Invalid request body", "error", err)
		return
	}

	canonical := s.Engine.Merge(nil, &domain.Delta{Add: body.IDs})
	if err := s.Sessions.Save(r.Context(), sessionID, canonical); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		slog.Error("PutSession failed", "error", err, "session_id", sessionID)
		return
	}
	writeJSON(w, s.view(canonical))
}

// DeleteSession handles the DELETE /sessions/{sessionID} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.Sessions.Delete(r.Context(), sessionID); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		slog.Error("DeleteSession failed", "error", err, "session_id", sessionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateNode handles the POST /sessions/{sessionID}/activate request.
func (s *Server) ActivateNode(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	start := time.Now()

	var body struct {
		NodeID string `json:"node_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NodeID == "" {
		http.Error(w, "Invalid request body: node_id required", http.StatusBadRequest)
		slog.Warn("ActivateNode: Invalid request body", "error", err)
		return
	}

	var delta *domain.Delta
	newSel, err := s.Sessions.Update(r.Context(), sessionID, s.Engine.DefaultMode(), func(sel *domain.Selection) (*domain.Selection, error) {
		next, d, err := s.Engine.Activate(r.Context(), sel, body.NodeID)
		if err != nil {
			return nil, err
		}
		delta = d
		return next, nil
	})
	if err != nil {
		observability.ActivationsTotal.WithLabelValues("http", observability.OutcomeError).Inc()
		if errors.Is(err, domain.ErrNodeNotFound) {
			http.Error(w, fmt.Sprintf("Activate error: %v", err), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Activate error: %v", err), http.StatusInternalServerError)
		slog.Error("ActivateNode failed", "error", err, "session_id", sessionID)
		return
	}

	observability.ActivationDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	if delta == nil {
		observability.ActivationsTotal.WithLabelValues("http", observability.OutcomeNoop).Inc()
	} else {
		observability.ActivationsTotal.WithLabelValues("http", observability.OutcomeApplied).Inc()
		observability.SelectionSize.Observe(float64(newSel.Len()))

		slog.Debug("ActivateNode: Delta applied", "delta", delta, "session_id", sessionID)
		if bytes, err := json.Marshal(delta); err == nil {
			s.Streams.Broadcast(sessionID, string(bytes))
		}
	}

	writeJSON(w, ActivationResult{
		Selection: newSel,
		Delta:     delta,
		Summary:   s.Engine.SelectedLabel(newSel),
		Noop:      delta == nil,
	})
}

// MergeDelta handles the POST /sessions/{sessionID}/merge request.
func (s *Server) MergeDelta(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var delta domain.Delta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("MergeDelta: Invalid request body", "error", err)
		return
	}

	newSel, err := s.Sessions.Update(r.Context(), sessionID, s.Engine.DefaultMode(), func(sel *domain.Selection) (*domain.Selection, error) {
		return s.Engine.Merge(sel, &delta), nil
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("Merge error: %v", err), http.StatusInternalServerError)
		slog.Error("MergeDelta failed", "error", err, "session_id", sessionID)
		return
	}

	if !delta.IsEmpty() {
		if bytes, err := json.Marshal(&delta); err == nil {
			s.Streams.Broadcast(sessionID, string(bytes))
		}
	}
	writeJSON(w, s.view(newSel))
}

// GetNodeStatus handles the GET /sessions/{sessionID}/status request.
func (s *Server) GetNodeStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	nodeID := r.URL.Query().Get("node_id")
	if nodeID == "" {
		http.Error(w, "node_id query parameter required", http.StatusBadRequest)
		return
	}

	sel, err := s.Sessions.Load(r.Context(), sessionID)
	if err == domain.ErrSessionNotFound {
		sel = domain.NewSelection(s.Engine.DefaultMode())
	} else if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		slog.Error("GetNodeStatus failed", "error", err, "session_id", sessionID)
		return
	}

	writeJSON(w, s.Engine.Status(sel, nodeID, r.URL.Query().Get("q")))
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[sessionID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
			}
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE). Each message is the
// JSON delta of one merge applied to the subscribed session.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id query parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	slog.Info("SSE: Subscribing to Session Deltas", "session_id", sessionID)

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
