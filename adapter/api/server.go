// Package api exposes the EduSense REST surface: account auth, coursework
// tasks, priority and workload reports, and study schedules. All routes
// except registration, login, and the health check require a session token,
// either as an Authorization bearer or as the edusense_token cookie.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/edusense/edusense/internal/shared/infrastructure/security"
	"github.com/edusense/edusense/pkg/observability"
)

// Server is the EduSense HTTP API server.
type Server struct {
	router  *mux.Router
	server  *http.Server
	health  *observability.HealthRegistry
	logger  *slog.Logger
	handler http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string

	// Metrics receives request counts and durations. Nil means no-op.
	Metrics observability.Metrics
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           "0.0.0.0:8080",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// Handlers bundles the route handlers the server mounts. Tokens verifies
// the session tokens on protected routes.
type Handlers struct {
	Auth      *AuthHandler
	Tasks     *TaskHandler
	Schedules *ScheduleHandler
	Tokens    *security.TokenManager
}

// NewServer creates the API server and mounts all routes. The health
// registry may be nil, in which case /healthz only reports liveness.
func NewServer(cfg ServerConfig, handlers Handlers, health *observability.HealthRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	s := &Server{
		router: mux.NewRouter(),
		health: health,
		logger: logger,
	}

	s.router.Use(requestContext(), requestLogger(logger), requestMetrics(metrics))
	s.registerRoutes(handlers)

	// CORS and panic recovery wrap the router so they also cover
	// preflight requests and handler panics.
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
	)
	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(recoveryLogger{logger: logger}),
	)
	s.handler = recovery(cors(s.router))

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes(h Handlers) {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	auth := requireAuth(h.Tokens)

	// Auth
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", auth(h.Auth.Me)).Methods(http.MethodGet)

	// Tasks
	api.HandleFunc("/tasks", auth(h.Tasks.Create)).Methods(http.MethodPost)
	api.HandleFunc("/tasks", auth(h.Tasks.List)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", auth(h.Tasks.Get)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", auth(h.Tasks.Update)).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", auth(h.Tasks.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/start", auth(h.Tasks.Start)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/complete", auth(h.Tasks.Complete)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/priority", auth(h.Tasks.Priority)).Methods(http.MethodGet)

	// Workload
	api.HandleFunc("/workload", auth(h.Tasks.Workload)).Methods(http.MethodGet)

	// Study schedules
	api.HandleFunc("/study-schedules/generate", auth(h.Schedules.Generate)).Methods(http.MethodPost)
	api.HandleFunc("/study-schedules", auth(h.Schedules.List)).Methods(http.MethodGet)
	api.HandleFunc("/study-schedules/{id}", auth(h.Schedules.Get)).Methods(http.MethodGet)
	api.HandleFunc("/study-schedules/{id}/complete", auth(h.Schedules.Complete)).Methods(http.MethodPost)
	api.HandleFunc("/study-schedules/{id}", auth(h.Schedules.Delete)).Methods(http.MethodDelete)
}

// handleHealth serves liveness plus the registered dependency checks.
// Unhealthy dependencies turn the response into a 503 so load balancers
// stop routing here.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	report := s.health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if report.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Handler returns the fully wrapped HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting api server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Log error but can't do much at this point
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
