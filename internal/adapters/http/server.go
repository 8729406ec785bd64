// Package http hosts the HTTP transport shared by the Wallet Service
// and the History Service: Server owns listen/serve/shutdown, and
// router.go assembles each service's route table on top of it.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ============================================
// Server Configuration
// ============================================

// ServerConfig configures one service's HTTP listener.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// DefaultServerConfig matches the defaults both services fall back to
// when config.Load's env vars are absent (internal/config/config.go).
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "0.0.0.0",
		Port:            "8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Logger:          slog.Default(),
	}
}

// Address returns the host:port to listen on.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// ============================================
// Server
// ============================================

// Server wraps net/http.Server with the listen/shutdown lifecycle
// both cmd/walletservice and cmd/historyservice drive identically.
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	router     *gin.Engine
}

// NewServer builds a Server around an already-assembled router (see
// NewWalletRouter / NewHistoryRouter).
func NewServer(config *ServerConfig, router *gin.Engine) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	httpServer := &http.Server{
		Addr:         config.Address(),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		httpServer: httpServer,
		router:     router,
	}
}

// Start blocks serving until Shutdown closes the listener.
func (s *Server) Start() error {
	s.config.Logger.Info("starting HTTP server", slog.String("address", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests within ShutdownTimeout before
// returning. The History Service drains its Event Consumer only after
// this returns, with a separate ShutdownTimeout budget of its own.
func (s *Server) Shutdown(ctx context.Context) error {
	s.config.Logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.config.Logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		return err
	}

	s.config.Logger.Info("HTTP server stopped gracefully")
	return nil
}

// ============================================
// Run with Graceful Shutdown
// ============================================

// RunWithContext serves until ctx is cancelled, then shuts down
// gracefully. Both binaries drive it from a signal.NotifyContext, and
// the History Service fans the same ctx.Done() out to its consumer
// loop so the HTTP surface and the consumer drain together.
func (s *Server) RunWithContext(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.config.Logger.Info("context cancelled, initiating shutdown")
	}

	return s.Shutdown(context.Background())
}
