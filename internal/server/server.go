package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/internal/server/handler"
	"github.com/msto63/cdlc/internal/store"
	"github.com/msto63/cdlc/pkg/core/cache"
	"github.com/msto63/cdlc/pkg/core/config"
	"github.com/msto63/cdlc/pkg/core/health"
	"github.com/msto63/cdlc/pkg/core/version"
)

// Server serves the compile API, the health endpoint and the live
// diagnostics websocket
type Server struct {
	httpServer *http.Server
	service    *handler.Service
	cache      *cache.ResultCache
	runs       store.RunStore
	health     *health.Registry
	logger     *mdwlog.Logger
	config     *config.Config
	listener   net.Listener
}

// New creates a server from the application configuration. runs may be
// nil, in which case history is kept in memory for the lifetime of the
// server.
func New(cfg *config.Config, runs store.RunStore, logger *mdwlog.Logger) (*Server, error) {
	if runs == nil {
		runs = store.NewMemoryRunStore()
	}
	logger = logger.WithName("server")

	resultCache := cache.NewResultCache(cache.Config{
		MaxItems:        cfg.Cache.MaxItems,
		TTL:             cfg.Cache.TTL.Duration,
		CleanupInterval: time.Minute,
	})

	service := handler.NewService(handler.ServiceConfig{
		Cache:         resultCache,
		Runs:          runs,
		Logger:        logger,
		MaxInputBytes: cfg.Compiler.MaxInputBytes,
	})

	// Create health registry
	healthRegistry := health.NewRegistry("cdlc", version.Server)
	healthRegistry.Register(health.CompilerCheck())
	healthRegistry.Register(health.PingCheck("store", runs))
	healthRegistry.Register(health.StatsCheck("cache", func() map[string]interface{} {
		s := resultCache.Stats()
		return map[string]interface{}{
			"size":     s.Size,
			"hits":     s.Hits,
			"misses":   s.Misses,
			"hit_rate": s.HitRate,
		}
	}))

	maxBody := cfg.RequestLimit()
	h := handler.NewHandler(service, handler.Options{
		Version:      version.Server,
		Health:       healthRegistry,
		Logger:       logger,
		CORS:         cfg.Server.CORS,
		MaxBodyBytes: maxBody,
	})
	wsHandler := handler.NewWebSocketHandler(service, maxBody)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/health", h)
	mux.Handle("/api/v1/", h)
	mux.Handle("/api/v1", h)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      loggingMiddleware(logger, recoveryMiddleware(logger, mux)),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &Server{
		httpServer: httpServer,
		service:    service,
		cache:      resultCache,
		runs:       runs,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address and serves until Stop
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Stop. It returns nil after a graceful stop.
func (s *Server) Serve(ln net.Listener) error {
	s.listener = ln
	s.logger.Info("starting server", mdwlog.Fields{
		"address": ln.Addr().String(),
		"version": version.Server,
	})

	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully stops the server and releases the cache and store
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")

	err := s.httpServer.Shutdown(ctx)
	s.cache.Close()
	if cerr := s.runs.Close(); cerr != nil {
		s.logger.Warn("error closing run store", mdwlog.Err(cerr))
	}
	return err
}

// Address returns the listen address, or the configured one before Serve
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address()
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
