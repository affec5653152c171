package main

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwhitaker/courier"
	"github.com/jwhitaker/courier/internal/config"
	"github.com/jwhitaker/courier/internal/generate"
	"github.com/jwhitaker/courier/internal/mailer"
	"github.com/jwhitaker/courier/postgres"
)

// Services holds all application services.
type Services struct {
	Generator    courier.Generator
	Sender       courier.EmailSender
	SMTPTester   courier.ConnectionTester
	DraftService courier.DraftService
}

// initServices initializes all application services.
func initServices(pool *pgxpool.Pool, settings *config.Settings, logger *slog.Logger) (*Services, error) {
	// Initialize database wrapper with all domain services
	db := postgres.NewDB(pool)
	logger.Info("database services initialized")

	// Initialize content generator
	genCfg := courier.DefaultGeneratorConfig()
	genCfg.APIKey = settings.APIKey
	genCfg.APIURL = settings.APIURL
	genCfg.Model = settings.APIModel
	generator := generate.New(logger, genCfg)
	logger.Info("content generator initialized",
		slog.String("url", settings.APIURL),
		slog.Bool("configured", settings.APIConfigured()))

	// Initialize delivery provider
	sender, tester := initSender(settings, logger)
	logger.Info("email sender initialized", slog.String("provider", settings.EmailProvider))

	return &Services{
		Generator:    generator,
		Sender:       sender,
		SMTPTester:   tester,
		DraftService: db.DraftService,
	}, nil
}

// initSender creates the delivery provider selected by configuration.
// The second return value is nil for providers that cannot probe their
// transport.
func initSender(settings *config.Settings, logger *slog.Logger) (courier.EmailSender, courier.ConnectionTester) {
	switch settings.EmailProvider {
	case "postmark":
		s := mailer.NewPostmarkSender(logger,
			settings.PostmarkServerToken, settings.PostmarkAccountToken, settings.SMTP.From)
		return s, nil
	case "mock":
		s := mailer.NewLogSender(logger)
		return s, s
	default:
		report := mailer.Validate(settings.SMTP)
		for _, w := range report.Warnings {
			logger.Warn("smtp configuration warning", slog.String("warning", w))
		}
		for _, e := range report.Errors {
			logger.Error("smtp configuration error", slog.String("error", e))
		}
		s := mailer.New(logger, settings.SMTP)
		return s, s
	}
}
