package mailer

import (
	"fmt"
	"strings"

	"github.com/jwhitaker/courier"
)

// Validate checks SMTP settings without touching the network. Errors
// make the configuration unusable; warnings flag discouraged but
// permitted setups.
func Validate(cfg courier.SMTPConfig) courier.ValidationReport {
	var report courier.ValidationReport

	if cfg.Host == "" {
		report.Errors = append(report.Errors, "SMTP host is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("SMTP port must be between 1 and 65535, got %d", cfg.Port))
	}
	if cfg.Username == "" {
		report.Errors = append(report.Errors, "SMTP username is required")
	}
	if cfg.Password == "" {
		report.Errors = append(report.Errors, "SMTP password is required")
	}
	if cfg.From == "" {
		report.Errors = append(report.Errors, "sender address is required")
	} else if !strings.Contains(cfg.From, "@") {
		report.Errors = append(report.Errors,
			fmt.Sprintf("sender address %q is not a valid email address", cfg.From))
	}

	if cfg.UseTLS && cfg.UseSSL {
		report.Warnings = append(report.Warnings,
			"both STARTTLS and implicit SSL are enabled; STARTTLS will be used and SSL ignored")
	}
	if !cfg.UseTLS && !cfg.UseSSL {
		report.Warnings = append(report.Warnings,
			"no transport encryption is enabled; credentials will travel in plaintext")
	}

	report.Valid = len(report.Errors) == 0
	return report
}
