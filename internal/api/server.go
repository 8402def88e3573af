// Package api provides the local HTTP surface for the ResetDopa engine.
// The mobile shell talks to these routes; everything is plain JSON.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/resetdopa/engine/internal/app/session"
	prom "github.com/resetdopa/engine/internal/infra/metrics"
)

// Version is the engine release version.
const Version = "0.1.0"

// Server is the ResetDopa HTTP API server.
type Server struct {
	session        *session.Session
	metricsEnabled bool
}

// NewServer creates an API server around a loaded session.
func NewServer(sess *session.Session) *Server {
	return &Server{session: sess}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ResetDopa engine is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	r.Route("/api/program", func(r chi.Router) {
		r.Get("/day", s.handleProgramDay)
		r.Get("/tasks/{day}", s.handleDayTasks)
		r.Post("/anchors", s.handleSetAnchors)
		r.Post("/reset", s.handleResetStart)
		r.Post("/advance", s.handleAdvanceDay)
	})

	r.Post("/api/tasks/complete", s.handleCompleteTask)

	r.Route("/api/urges", func(r chi.Router) {
		r.Get("/", s.handleListUrges)
		r.Post("/", s.handleLogUrge)
		r.Post("/{id}/outcome", s.handleUrgeOutcome)
	})

	r.Route("/api/metrics", func(r chi.Router) {
		r.Get("/daily/{date}", s.handleDailyMetrics)
		r.Get("/recent", s.handleRecentMetrics)
	})
	r.Get("/api/adherence", s.handleAdherence)

	r.Get("/api/streak", s.handleStreak)
	r.Post("/api/streak/rollover", s.handleRollover)

	r.Get("/api/badges", s.handleBadges)
	r.Post("/api/quest/complete", s.handleCompleteQuest)
	r.Post("/api/mood", s.handleSetMood)
	r.Get("/api/summary", s.handleSummary)

	if s.metricsEnabled {
		r.Handle("/metrics", prom.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the local app shell.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
