// Package api provides the HTTP API for the focus-duration recommender.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tutu-network/focusband/internal/core/recommender"
)

// Server is the recommender HTTP API server.
type Server struct {
	recommender    *recommender.Recommender
	metricsEnabled bool
}

// NewServer creates a new API server backed by rec.
func NewServer(rec *recommender.Recommender) *Server {
	return &Server{recommender: rec}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/recommend", func(r chi.Router) {
		r.Post("/focus", s.handleRecommendFocus)
		r.Post("/break", s.handleRecommendBreak)
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/outcome", s.handleObserveOutcome)
		r.Post("/rejection", s.handleRejection)
	})

	r.Route("/api/state", func(r chi.Router) {
		r.Get("/export", s.handleExportState)
		r.Post("/import", s.handleImportState)
		r.Post("/clear", s.handleClearState)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// corsMiddleware adds CORS headers for local development (desktop/CLI
// collaborators running against a localhost daemon).
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
		},
	})
}
