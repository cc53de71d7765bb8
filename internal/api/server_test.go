package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tutu-network/focusband/internal/core/recommender"
	"github.com/tutu-network/focusband/internal/infra/storage"
)

func setupTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rec := recommender.New(context.Background(), recommender.Config{Store: db})
	return NewServer(rec), db
}

func TestServer_Health(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestServer_RecommendFocus_ColdStart(t *testing.T) {
	s, _ := setupTestServer(t)

	body := `{"taskType":"deepWork","energyLevel":"mid","heuristicMinutes":25}`
	req := httptest.NewRequest(http.MethodPost, "/api/recommend/focus", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Minutes int    `json:"minutes"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Minutes != 25 {
		t.Errorf("expected cold-start heuristic passthrough 25, got %d", resp.Minutes)
	}
}

func TestServer_RecommendFocus_BadBody(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/recommend/focus", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestServer_ObserveOutcome_AndExportRoundTrip(t *testing.T) {
	s, _ := setupTestServer(t)

	outcomeBody := `{
		"taskType":"deepWork","energyLevel":"mid",
		"completionType":"completed","acceptedRecommendation":true,
		"selectedFocusMinutes":25,"focusedMinutes":25,
		"recommendedFocusMinutes":25
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/outcome", bytes.NewBufferString(outcomeBody))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/state/export", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap struct {
		Model map[string]interface{} `json:"model"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Model) == 0 {
		t.Error("expected model posteriors after an observed outcome")
	}
}

func TestServer_ClearState(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/state/clear", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestServer_Rejection(t *testing.T) {
	s, _ := setupTestServer(t)

	body := `{"taskType":"deepWork","energyLevel":"mid","rejectedArm":45}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/rejection", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_Metrics_DisabledByDefault(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when metrics disabled, got %d", w.Code)
	}
}

func TestServer_Metrics_EnabledExposesEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	s.EnableMetrics()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
