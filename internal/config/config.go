// Package config loads typed application settings from the environment.
// Settings are read once per process and cached; Reload replaces the
// cached snapshot explicitly. Snapshots are never mutated after load,
// so concurrent readers need no locking.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/jwhitaker/courier"
)

// Settings holds all application configuration.
type Settings struct {
	// Server settings
	Host        string
	Port        int
	Environment string
	LogLevel    string

	// Database settings
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Generation API settings
	APIKey   string
	APIURL   string
	APIModel string

	// Delivery provider: "smtp", "postmark" or "mock"
	EmailProvider string

	// Postmark-specific settings
	PostmarkServerToken  string
	PostmarkAccountToken string

	// SMTP settings
	SMTP courier.SMTPConfig
}

var (
	mu     sync.RWMutex
	cached *Settings
)

// Get returns the cached process-wide settings, loading them from the
// environment on first use.
func Get() (*Settings, error) {
	mu.RLock()
	if cached != nil {
		defer mu.RUnlock()
		return cached, nil
	}
	mu.RUnlock()
	return Reload()
}

// Reload re-reads settings from the environment and replaces the
// cached snapshot. The previous snapshot remains valid for callers
// still holding it.
func Reload() (*Settings, error) {
	loadDotenv()
	cfg, err := Load(os.Getenv)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	cached = cfg
	mu.Unlock()
	return cfg, nil
}

// loadDotenv loads a .env file from the working directory, walking up
// to two parent directories to find one. Missing files are fine; real
// environment variables always win.
func loadDotenv() {
	if err := godotenv.Load(); err == nil {
		return
	}
	dir, _ := os.Getwd()
	for i := 0; i < 2; i++ {
		dir = filepath.Join(dir, "..")
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
}

// Load builds a Settings snapshot from the given environment lookup.
// It validates nothing beyond basic parsing; use mailer.Validate for
// the SMTP validation report.
func Load(getenv func(string) string) (*Settings, error) {
	cfg := &Settings{
		// Server settings
		Host:        envString(getenv, "SERVER_HOST", "localhost"),
		Port:        envInt(getenv, "SERVER_PORT", 8080),
		Environment: envString(getenv, "ENVIRONMENT", "dev"),
		LogLevel:    envString(getenv, "LOG_LEVEL", "info"),

		// Database settings
		DBUser:     envString(getenv, "DB_USER", "postgres"),
		DBPassword: envString(getenv, "DB_PASSWORD", ""),
		DBHost:     envString(getenv, "DB_HOSTNAME", "localhost"),
		DBPort:     envString(getenv, "DB_PORT", "5432"),
		DBName:     envString(getenv, "DB_NAME", "postgres"),

		// Generation API settings
		APIKey:   getenv("EMAIL_API_KEY"),
		APIURL:   envString(getenv, "EMAIL_API_URL", "https://api.openai.com/v1/chat/completions"),
		APIModel: envString(getenv, "EMAIL_API_MODEL", "mistralai/mistral-7b-instruct"),

		// Delivery settings
		EmailProvider:        envString(getenv, "EMAIL_PROVIDER", "smtp"),
		PostmarkServerToken:  getenv("POSTMARK_SERVER_TOKEN"),
		PostmarkAccountToken: getenv("POSTMARK_ACCOUNT_TOKEN"),

		SMTP: courier.SMTPConfig{
			Host:     getenv("SMTP_HOST"),
			Port:     envInt(getenv, "SMTP_PORT", 587),
			Username: getenv("SMTP_USERNAME"),
			Password: getenv("SMTP_PASSWORD"),
			From:     getenv("EMAIL_FROM"),
			UseTLS:   envBool(getenv, "SMTP_USE_TLS", true),
			UseSSL:   envBool(getenv, "SMTP_USE_SSL", false),
			Timeout:  time.Duration(envInt(getenv, "SMTP_TIMEOUT", 30)) * time.Second,
		},
	}

	if cfg.EmailProvider != "smtp" && cfg.EmailProvider != "postmark" && cfg.EmailProvider != "mock" {
		return nil, fmt.Errorf("EMAIL_PROVIDER must be smtp, postmark or mock, got %q", cfg.EmailProvider)
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (s *Settings) DatabaseURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName)
}

// APIConfigured reports whether the generation API can be called.
func (s *Settings) APIConfigured() bool {
	return s.APIKey != "" && s.APIURL != ""
}

// SMTPConfigured reports whether the required SMTP fields are present.
func (s *Settings) SMTPConfigured() bool {
	return s.SMTP.Host != "" && s.SMTP.Username != "" &&
		s.SMTP.Password != "" && s.SMTP.From != ""
}

// MaskedAPIKey returns the API key truncated for log/status output.
func (s *Settings) MaskedAPIKey() string {
	if s.APIKey == "" {
		return ""
	}
	if len(s.APIKey) <= 8 {
		return "..."
	}
	return s.APIKey[:8] + "..."
}

// Helper functions for loading environment variables with defaults.

func envString(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func envBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value := getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
