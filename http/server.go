// Package http provides the HTTP transport over the domain services.
package http

import (
	"context"
	"log/slog"
	"net"

	"github.com/labstack/echo/v4"

	"github.com/jwhitaker/courier"
	"github.com/jwhitaker/courier/internal/config"
)

// Server represents the HTTP server with all its dependencies.
type Server struct {
	echo   *echo.Echo
	ln     net.Listener
	logger *slog.Logger

	// Configuration
	Addr string

	// Domain services
	generator    courier.Generator
	sender       courier.EmailSender
	smtpTester   courier.ConnectionTester
	draftService courier.DraftService

	// settings returns the current settings snapshot for the status
	// endpoint; defaults to the cached process-wide settings.
	settings func() (*config.Settings, error)
}

// Config holds the configuration for creating a new Server.
type Config struct {
	Addr   string
	Logger *slog.Logger

	// Domain services
	Generator    courier.Generator
	Sender       courier.EmailSender
	SMTPTester   courier.ConnectionTester
	DraftService courier.DraftService

	// Settings override for tests. Nil means config.Get.
	Settings func() (*config.Settings, error)
}

// NewServer creates a new HTTP server with the given configuration.
func NewServer(cfg Config) *Server {
	s := &Server{
		Addr:         cfg.Addr,
		logger:       cfg.Logger,
		generator:    cfg.Generator,
		sender:       cfg.Sender,
		smtpTester:   cfg.SMTPTester,
		draftService: cfg.DraftService,
		settings:     cfg.Settings,
	}
	if s.settings == nil {
		s.settings = config.Get
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true

	// Register middleware and routes
	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// Echo returns the underlying Echo instance.
// Use sparingly - prefer registering routes through Server methods.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Open starts the HTTP server.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.echo.Server.Serve(s.ln); err != nil {
			s.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("server started", slog.String("addr", s.Addr))
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// URL returns the URL of the server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}
