package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"seamark-hq/meridian/pkg/config"
	"seamark-hq/meridian/pkg/gateway/handlers"
	"seamark-hq/meridian/pkg/gateway/middleware"
	"seamark-hq/meridian/pkg/limits"
	"seamark-hq/meridian/pkg/telemetry/health"
	"seamark-hq/meridian/pkg/telemetry/metrics"
)

// Options carries the services the server mounts. Limiter, Collector,
// and Checker may be nil; the corresponding surface is then absent.
type Options struct {
	Deps      *handlers.Deps
	Limiter   *limits.Limiter
	Collector *metrics.Collector
	Checker   *health.Checker

	Version   string
	Commit    string
	BuildTime string
}

// Server is the gateway HTTP server fronting the frontend extension.
type Server struct {
	config       *config.Config
	opts         Options
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a gateway server.
func NewServer(cfg *config.Config, opts Options) *Server {
	return &Server{
		config:       cfg,
		opts:         opts,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown: context
// cancellation, SIGINT/SIGTERM, or a Stop call.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.config.Server.ListenAddress,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop requests shutdown of a running Start call.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully drains in-flight requests, bounded by the
// configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// setupRoutes builds the route tree and middleware chain. The /v1/*
// routes are CORS-restricted, rate limited, and bounded by the write
// timeout; manifest, health, and metrics stay outside that chain.
func (s *Server) setupRoutes() http.Handler {
	deps := s.opts.Deps

	api := http.NewServeMux()
	api.Handle("POST /v1/proxy", handlers.NewProxyHandler(deps))
	api.Handle("GET /v1/projects/{projectId}/files", handlers.NewFilesHandler(deps))
	api.Handle("GET /v1/projects/{projectId}/stats", handlers.NewStatsHandler(deps))
	api.Handle("POST /v1/events", handlers.NewEventsHandler(deps))

	var apiHandler http.Handler = api
	apiHandler = middleware.Timeout(s.config.Server.WriteTimeout)(apiHandler)
	apiHandler = middleware.RateLimit(s.opts.Limiter, s.opts.Collector)(apiHandler)
	apiHandler = middleware.CORS(s.corsConfig())(apiHandler)

	root := http.NewServeMux()
	root.Handle("/v1/", apiHandler)

	if s.config.Manifest.Serve && deps.Manifest != nil {
		root.Handle("/manifest.json", handlers.NewManifestHandler(deps))
	}

	if s.opts.Checker != nil {
		health.Mount(root, s.opts.Checker, s.opts.Version, s.opts.Commit, s.opts.BuildTime)
	}

	if s.opts.Collector != nil && s.config.Telemetry.Metrics.Enabled {
		root.Handle(s.config.Telemetry.Metrics.Path, s.opts.Collector.Handler())
	}

	var handler http.Handler = root
	handler = middleware.Metrics(s.opts.Collector)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// corsConfig translates the config section for the CORS middleware.
func (s *Server) corsConfig() *middleware.CORSConfig {
	cors := s.config.Server.CORS
	return &middleware.CORSConfig{
		Enabled:          cors.Enabled,
		AllowedOrigins:   cors.AllowedOrigins,
		AllowedMethods:   cors.AllowedMethods,
		AllowedHeaders:   cors.AllowedHeaders,
		ExposedHeaders:   cors.ExposedHeaders,
		MaxAge:           cors.MaxAge,
		AllowCredentials: cors.AllowCredentials,
	}
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
