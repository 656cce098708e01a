// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Only this package and cmd/api import net/http server primitives; domain
packages expose a Routes() [chi.Router] and nothing else.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/readtrack/internal/catalog/author"
	"github.com/taibuivan/readtrack/internal/catalog/book"
	"github.com/taibuivan/readtrack/internal/platform/config"
	"github.com/taibuivan/readtrack/internal/platform/constants"
	"github.com/taibuivan/readtrack/internal/platform/middleware"
	"github.com/taibuivan/readtrack/internal/tracking/goal"
	"github.com/taibuivan/readtrack/internal/tracking/library"
	"github.com/taibuivan/readtrack/internal/tracking/readinglist"
	"github.com/taibuivan/readtrack/internal/users/auth"
	"github.com/taibuivan/readtrack/internal/users/profile"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler.
	Readiness http.HandlerFunc

	Auth        *auth.Handler
	Profile     *profile.Handler
	Author      *author.Handler
	Book        *book.Handler
	Library     *library.Handler
	Goal        *goal.Handler
	ReadingList *readinglist.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. ctx bounds background middleware work.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := NewRouter(ctx, cfg, log, verifier, h)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter builds the routing tree without binding a listener.
func NewRouter(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.TrackIdentity)
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/me", h.Profile.Routes())
		api.Mount("/authors", h.Author.Routes())
		api.Mount("/books", h.Book.Routes())
		api.Mount("/library", h.Library.Routes())
		api.Mount("/goals", h.Goal.Routes())
		api.Mount("/lists", h.ReadingList.Routes())
	})

	return r
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
