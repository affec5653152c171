package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all routes for the server.
// All routes are defined in this single file for easy navigation.
func (s *Server) registerRoutes() {
	// Health check routes (public)
	s.echo.GET("/health", s.handleHealthCheck)
	s.echo.GET("/health/live", s.handleLivenessCheck)
	s.echo.GET("/health/ready", s.handleReadinessCheck)

	// Prometheus metrics
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	// Configuration status
	api.GET("/status", s.handleStatus)
	api.POST("/status/reload", s.handleReloadSettings)

	// Content generation
	api.POST("/generate", s.handleGenerate)
	api.POST("/send", s.handleGenerateAndSend)

	// Drafts
	api.GET("/drafts", s.handleListDrafts)
	api.GET("/drafts/:id", s.handleGetDraft)
	api.PUT("/drafts/:id", s.handleUpdateDraft)
	api.DELETE("/drafts/:id", s.handleDeleteDraft)
	api.POST("/drafts/:id/send", s.handleSendDraft)

	// Stats
	api.GET("/stats", s.handleGetStats)

	// SMTP diagnostics
	api.GET("/smtp/validate", s.handleValidateSMTP)
	api.POST("/smtp/test", s.handleTestSMTP)
}
