// Package api exposes reconciliation runs over HTTP as a small JSON API.
package api

import (
	"net/http"

	"ecocast/app"
	"ecocast/domain/scenario"
	"ecocast/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wires the reconcile service into an HTTP router
type Server struct {
	router  *chi.Mux
	service *app.ReconcileService
	cfg     *scenario.Config
	log     *internal.Logger
}

// NewServer creates an API server
func NewServer(service *app.ReconcileService, cfg *scenario.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		cfg:     cfg,
		log:     logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes registers the API endpoints
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Post("/api/runs", s.handleCreateRun)
	s.router.Get("/api/runs", s.handleListRuns)
	s.router.Get("/api/runs/{id}", s.handleGetRun)
	s.router.Get("/api/runs/{id}/projections", s.handleGetProjections)
	s.router.Get("/api/scenarios", s.handleScenarios)
}

// Router exposes the handler for serving and for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	addr := ":" + port
	s.log.Info("starting API server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
