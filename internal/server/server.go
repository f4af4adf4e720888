// Package server assembles the streamable HTTP MCP server: dictionary tools,
// sessions, metrics and the chi router.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"stdict-mcp/internal/config"
	"stdict-mcp/internal/mcp"
	"stdict-mcp/internal/session"
	"stdict-mcp/internal/stdict"
	"stdict-mcp/internal/telemetry"
	"stdict-mcp/internal/tools"
	"stdict-mcp/internal/tools/dictionary"
)

// shutdownTimeout bounds graceful shutdown of in-flight HTTP requests.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP MCP server and its background services.
type Server struct {
	cfg       config.ServerConfig
	version   string
	handler   http.Handler
	sessions  session.Manager
	store     session.Store
	cleanup   *session.CleanupService
	collector *telemetry.SystemMetricsCollector
	logger    zerolog.Logger
}

// New builds the server from cfg. Nothing is started until Run.
func New(cfg *config.Config, version string, logger zerolog.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	client, err := stdict.NewClient(cfg.ClientConfig(version),
		stdict.WithObserver(metrics),
		stdict.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	toolRegistry := tools.NewRegistry()
	dictionary.Register(toolRegistry, client, cfg.Dictionary.APIKey)
	for _, def := range toolRegistry.Definitions() {
		logger.Debug().Str("tool", def.Name).Msg("Registered tool")
	}

	store := session.NewMemoryStore(logger)
	manager := session.NewDefaultSessionManager(store, session.ManagerConfig{
		SessionTimeout: cfg.Server.SessionTimeout,
		OnExpire:       telemetry.ExpiryRecorder(metrics),
	}, logger)
	sessions := telemetry.NewSessionManagerWrapper(manager, metrics)

	mcpHandler := mcp.NewHandler(
		telemetry.NewToolRegistryWrapper(toolRegistry, metrics),
		sessions,
		mcp.Config{Version: version, RequireSession: cfg.Server.RequireSession},
		logger,
	)

	s := &Server{
		cfg:       cfg.Server,
		version:   version,
		sessions:  sessions,
		store:     store,
		cleanup:   session.NewCleanupService(sessions, session.CleanupConfig{CleanupInterval: cfg.Server.CleanupInterval}, logger),
		collector: telemetry.NewSystemMetricsCollector(metrics, logger, cfg.Server.MetricsInterval),
		logger:    logger.With().Str("component", "server").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(telemetry.HTTPMetricsMiddleware(metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID", session.HeaderName, mcp.ProtocolVersionHeader},
		ExposedHeaders: []string{session.HeaderName},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	r.Group(func(r chi.Router) {
		r.Use(session.NewSessionMiddleware(sessions, logger).Handler())
		r.Handle("/mcp", mcpHandler)
		r.Post("/sse", mcpHandler.ServeHTTP)
	})

	s.handler = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the background services and serves HTTP on the configured
// address until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.store.Close()

	if err := s.cleanup.Start(ctx); err != nil {
		return err
	}
	defer s.cleanup.Stop()

	go s.collector.Start(ctx)
	defer s.collector.Stop()

	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("Starting server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type healthResponse struct {
	Status   string                 `json:"status"`
	Version  string                 `json:"version"`
	Sessions map[string]interface{} `json:"sessions,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: s.version}
	if stats, err := s.sessions.GetSessionStats(r.Context()); err == nil {
		resp.Sessions = stats
	}
	render.JSON(w, r, resp)
}

// requestLogger logs each request through zerolog with chi's request ID.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
