package http

import (
	"github.com/labstack/echo/v4"

	"github.com/jwhitaker/courier"
	"github.com/jwhitaker/courier/internal/config"
	"github.com/jwhitaker/courier/internal/mailer"
)

// StatusResponse reports which subsystems are configured. Secrets are
// masked or omitted.
type StatusResponse struct {
	Environment   string `json:"environment"`
	EmailProvider string `json:"emailProvider"`

	APIConfigured bool   `json:"apiConfigured"`
	APIURL        string `json:"apiUrl"`
	APIModel      string `json:"apiModel"`
	APIKey        string `json:"apiKey"` // masked

	SMTPConfigured bool                     `json:"smtpConfigured"`
	SMTPHost       string                   `json:"smtpHost"`
	SMTPPort       int                      `json:"smtpPort"`
	SMTPValidation courier.ValidationReport `json:"smtpValidation"`
}

func (s *Server) handleStatus(c echo.Context) error {
	settings, err := s.settings()
	if err != nil {
		return courier.Internal("loading settings", err)
	}
	return RespondOK(c, statusFrom(settings))
}

// handleReloadSettings re-reads configuration from the environment and
// returns the refreshed status.
func (s *Server) handleReloadSettings(c echo.Context) error {
	settings, err := config.Reload()
	if err != nil {
		return courier.Internal("reloading settings", err)
	}
	s.logger.Info("settings reloaded")
	return RespondOK(c, statusFrom(settings))
}

func statusFrom(settings *config.Settings) StatusResponse {
	return StatusResponse{
		Environment:    settings.Environment,
		EmailProvider:  settings.EmailProvider,
		APIConfigured:  settings.APIConfigured(),
		APIURL:         settings.APIURL,
		APIModel:       settings.APIModel,
		APIKey:         settings.MaskedAPIKey(),
		SMTPConfigured: settings.SMTPConfigured(),
		SMTPHost:       settings.SMTP.Host,
		SMTPPort:       settings.SMTP.Port,
		SMTPValidation: mailer.Validate(settings.SMTP),
	}
}

// handleValidateSMTP reports the validation result for the current
// SMTP settings without touching the network.
func (s *Server) handleValidateSMTP(c echo.Context) error {
	settings, err := s.settings()
	if err != nil {
		return courier.Internal("loading settings", err)
	}
	return RespondOK(c, mailer.Validate(settings.SMTP))
}

// handleTestSMTP probes the configured SMTP server with a full
// connect/authenticate/release cycle.
func (s *Server) handleTestSMTP(c echo.Context) error {
	if s.smtpTester == nil {
		return courier.Invalid("connection testing is not supported by the configured provider")
	}
	result := s.smtpTester.TestConnection(c.Request().Context())
	return RespondOK(c, result)
}
