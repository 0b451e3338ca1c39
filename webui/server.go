// This file contains the Server organism that wires the static dashboard,
// the JSON API, the WebSocket stream, and optional authentication into one
// http.Server.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AuthProvider wraps handlers with session authentication. Implemented by
// auth.Middleware; kept as an interface here to avoid an import cycle.
type AuthProvider interface {
	Middleware(next http.Handler) http.Handler
	MiddlewareFunc(next http.HandlerFunc) http.HandlerFunc
	LoginHandler() http.HandlerFunc
	LogoutHandler() http.HandlerFunc
}

// ServerConfig configures the Server.
type ServerConfig struct {
	// Host to bind to (default: "localhost")
	Host string

	// Port to listen on (default: 8080)
	Port int

	// OutputDir is served read-only under /outputs/ so the dashboard can
	// display generated artifacts.
	OutputDir string

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Generation requests run inside the
	// handler, so this must cover a full video render (default: 15m).
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// LogSkipPaths are paths excluded from request logging
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "localhost",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    15 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogSkipPaths:    []string{"/health", "/api/status", "/api/gpu"},
	}
}

// Server is the HTTP server for the generation service.
type Server struct {
	httpServer   *http.Server
	mux          *http.ServeMux
	config       ServerConfig
	logger       *zap.Logger
	api          *API
	broadcaster  *Broadcaster
	authProvider AuthProvider
	loggingMw    *LoggingMiddleware
}

// NewServer wires the API, broadcaster, and optional auth provider into a
// configured server. The authProvider may be nil for open deployments.
func NewServer(config ServerConfig, api *API, broadcaster *Broadcaster, authProvider AuthProvider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mux:          http.NewServeMux(),
		config:       config,
		logger:       logger,
		api:          api,
		broadcaster:  broadcaster,
		authProvider: authProvider,
		loggingMw:    NewLoggingMiddleware(logger, config.LogSkipPaths),
	}
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.loggingMw.Handler(s.mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("web server created",
		zap.String("addr", addr),
		zap.Bool("auth_enabled", authProvider != nil))

	return s
}

func (s *Server) setupRoutes() {
	// Health check stays unauthenticated for probes.
	s.mux.HandleFunc("/health", s.handleHealth)

	apiMux := http.NewServeMux()
	s.api.RegisterRoutes(apiMux)
	apiMux.HandleFunc("/ws", s.broadcaster.HandleConnection)
	if s.config.OutputDir != "" {
		apiMux.Handle("/outputs/",
			http.StripPrefix("/outputs/", http.FileServer(http.Dir(s.config.OutputDir))))
	}
	apiMux.HandleFunc("/", s.handleIndex)

	if s.authProvider != nil {
		s.mux.HandleFunc("/login", s.authProvider.LoginHandler())
		s.mux.HandleFunc("/logout", s.authProvider.LogoutHandler())
		s.mux.Handle("/", s.authProvider.Middleware(apiMux))
	} else {
		s.mux.Handle("/", apiMux)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleIndex serves the embedded dashboard page at the root.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}

// Start begins the broadcaster and listens for HTTP requests. Blocks until
// the server is shut down.
func (s *Server) Start(ctx context.Context) error {
	go s.broadcaster.Start(ctx)

	s.logger.Info("web server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully drains connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
