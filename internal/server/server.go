// Package server exposes the diagram pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness and version
//	POST /v1/layout               document -> layout snapshot (JSON)
//	POST /v1/render?format=svg    document -> rendered artifact
//	POST /v1/visualize?format=png snapshot -> rendered artifact
//
// Documents are JSON unless the request is sent as application/toml.
// Layout options are taken from query parameters (strategy, select, width,
// height, auto_layout, spacing, iterations, refresh); render endpoints also
// accept renderer, graphviz_layout, scale, grid, margin and no_labels.
//
// Every response carries an X-Request-ID. Requests are rate limited per
// client address; rejected requests get 429 with Retry-After.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zenui/zendiagram/pkg/pipeline"
)

// Defaults for Config fields left zero.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultTimeout      = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr string
	// RateLimit is the sustained requests per second allowed per client.
	// Zero disables rate limiting.
	RateLimit float64
	Burst     int
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
	// Timeout bounds the handling of one request.
	Timeout time.Duration
	Logger  *log.Logger
}

// Server is the HTTP layout service.
type Server struct {
	runner  *pipeline.Runner
	cfg     Config
	logger  *log.Logger
	limiter *clientLimiter
	router  chi.Router
}

// New creates a server that runs requests through runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	s := &Server{
		runner: runner,
		cfg:    cfg,
		logger: cfg.Logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit, max(cfg.Burst, 1))
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(serverHeader)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(middleware.Timeout(s.cfg.Timeout))
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Post("/visualize", s.handleVisualize)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path)
	})
	return r
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
