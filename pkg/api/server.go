package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/siftlabs/sift/pkg/health"
	"github.com/siftlabs/sift/pkg/log"
	"github.com/siftlabs/sift/pkg/metrics"
)

// Server wraps an HTTP server with graceful shutdown.
type Server struct {
	name   string
	server *http.Server
}

// NewServer creates a named HTTP server for the given handler.
func NewServer(name, addr string, handler http.Handler) *Server {
	return &Server{
		name: name,
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves until Shutdown is called. A closed server is not an
// error.
func (s *Server) Start() error {
	log.Logger.Info().
		Str("service", s.name).
		Str("addr", s.server.Addr).
		Msg("HTTP server listening")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve %s API: %w", s.name, err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight
// requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// NewRouter builds the base router shared by all services: request
// ID and real IP extraction, panic recovery, request logging with
// metrics, permissive CORS, and the operational endpoints.
func NewRouter(service string, checkers ...health.Checker) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(service))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(checkers...))
	r.Handle("/metrics", metrics.Handler())

	return r
}
