// Package api provides the HTTP server: routing, the cookie session layer,
// and HTML rendering. Everything here consumes read-only snapshots from the
// economy engine; the engine owns all state and invariants.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/midulanmathi/reCurrency/internal/app/economy"
)

// Server is the reCurrency HTTP server.
type Server struct {
	engine         *economy.Engine
	sessions       *Sessions
	metricsEnabled bool
}

// NewServer creates a server around the engine.
func NewServer(engine *economy.Engine) *Server {
	return &Server{engine: engine, sessions: NewSessions()}
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

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public pages
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/signup", s.handleSignupPage)
	r.Post("/signup", s.handleSignup)
	r.Get("/logout", s.handleLogout)

	// Session-gated pages and actions
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleDashboard)
		r.Get("/vice", s.handleVice)
		r.Get("/virtue/{slot}", s.handleVirtue)
		r.Get("/reset", s.handleReset)
		r.Get("/undo", s.handleUndo)
		r.Get("/edit", s.handleEditPage)
		r.Post("/edit", s.handleEdit)
		r.Post("/delete_account", s.handleDeleteAccount)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// requireSession redirects to /login when the request carries no valid
// session. The resolved account ID travels in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessions.Resolve(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withAccountID(r.Context(), id)))
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
