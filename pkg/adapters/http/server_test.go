package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	canopy "github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/session"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	eng, err := canopy.New([]domain.OptionNode{
		{ID: "1", Label: "Fruit", Children: []domain.OptionNode{
			{ID: "2", Label: "Apple"},
			{ID: "3", Label: "Banana"},
		}},
		{ID: "4", Label: "Dairy"},
	})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	return NewHandler(eng, session.NewManager(memory.NewStore()))
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestActivateNode_SubtreeSelection(t *testing.T) {
	handler := newTestHandler(t)

	w := postJSON(t, handler, "/sessions/sess-1/activate", map[string]string{"node_id": "1"})
	if w.Code != http.StatusOK {
		t.Fatalf("Activate failed: %d %s", w.Code, w.Body.String())
	}

	var result ActivationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Noop {
		t.Error("expected an applied delta, got noop")
	}
	if len(result.Delta.Add) != 3 {
		t.Errorf("expected parent plus both children added, got %v", result.Delta.Add)
	}
	if len(result.Selection.IDs) != 3 {
		t.Errorf("expected 3 selected ids, got %v", result.Selection.IDs)
	}
}

func TestActivateNode_UnknownNode(t *testing.T) {
	handler := newTestHandler(t)

	w := postJSON(t, handler, "/sessions/sess-1/activate", map[string]string{"node_id": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	handler := newTestHandler(t)

	// Unknown session
	req := httptest.NewRequest("GET", "/sessions/nope", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown session, got %d", w.Code)
	}

	// PUT canonicalizes out-of-order ids
	reqBody, _ := json.Marshal(map[string][]string{"ids": {"3", "2"}})
	reqPut := httptest.NewRequest("PUT", "/sessions/sess-1", bytes.NewReader(reqBody))
	wPut := httptest.NewRecorder()
	handler.ServeHTTP(wPut, reqPut)
	if wPut.Code != http.StatusOK {
		t.Fatalf("Put failed: %d %s", wPut.Code, wPut.Body.String())
	}

	var view SessionView
	if err := json.Unmarshal(wPut.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(view.Selection.IDs) != 2 || view.Selection.IDs[0] != "2" {
		t.Errorf("expected canonical order [2 3], got %v", view.Selection.IDs)
	}

	// DELETE drops it
	reqDel := httptest.NewRequest("DELETE", "/sessions/sess-1", nil)
	wDel := httptest.NewRecorder()
	handler.ServeHTTP(wDel, reqDel)
	if wDel.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", wDel.Code)
	}
}

func TestGetVisible_Search(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/tree/visible?q=an", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// "Banana" matches, so its parent "Fruit" stays visible as well.
	if len(resp["ids"]) != 2 || resp["ids"][0] != "1" || resp["ids"][1] != "3" {
		t.Errorf("expected visible ids [1 3], got %v", resp["ids"])
	}
}

func TestGetNodeStatus_Indeterminate(t *testing.T) {
	handler := newTestHandler(t)

	// Select one of two children.
	w := postJSON(t, handler, "/sessions/sess-1/activate", map[string]string{"node_id": "2"})
	if w.Code != http.StatusOK {
		t.Fatalf("Activate failed: %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/sessions/sess-1/status?node_id=1", nil)
	wStatus := httptest.NewRecorder()
	handler.ServeHTTP(wStatus, req)

	var status domain.DisplayStatus
	if err := json.Unmarshal(wStatus.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Checked || !status.Indeterminate {
		t.Errorf("expected indeterminate parent, got %+v", status)
	}
}

func TestSubscribeEvents_DeltaBroadcast(t *testing.T) {
	handler := newTestHandler(t)

	// 1. Subscribe
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?session_id=sess-1", nil).WithContext(ctx)

	go func() {
		handler.ServeHTTP(wSub, reqSub)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	// 2. Trigger an activation
	w := postJSON(t, handler, "/sessions/sess-1/activate", map[string]string{"node_id": "4"})
	if w.Code != http.StatusOK {
		t.Fatalf("Activate failed: %d %s", w.Code, w.Body.String())
	}

	// 3. Stop subscription to flush
	cancel()
	time.Sleep(50 * time.Millisecond)

	output := wSub.Body.String()

	if !strings.Contains(output, "event: ping") {
		t.Error("Expected initial ping")
	}
	if !strings.Contains(output, `"add":["4"]`) {
		t.Errorf("Expected delta broadcast in SSE output, got %q", output)
	}
}

func TestHealthAndInfo(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 OK, got %d", w.Code)
	}

	reqInfo := httptest.NewRequest("GET", "/info", nil)
	wInfo := httptest.NewRecorder()
	handler.ServeHTTP(wInfo, reqInfo)

	var info map[string]string
	if err := json.Unmarshal(wInfo.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info["app"] != "canopy-http" {
		t.Errorf("unexpected app name %q", info["app"])
	}
	if info["api_version"] == "unknown" {
		t.Error("embedded OpenAPI spec failed to load")
	}
}
