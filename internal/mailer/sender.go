// Package mailer delivers email over SMTP. Failures are classified
// (config, auth, connect, protocol) rather than raised, so callers can
// report actionable diagnostics without unwinding mid-delivery.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwhitaker/courier"
)

// Compile-time interface checks
var (
	_ courier.EmailSender      = (*Mailer)(nil)
	_ courier.ConnectionTester = (*Mailer)(nil)
)

// Mailer implements courier.EmailSender over SMTP.
type Mailer struct {
	cfg    courier.SMTPConfig
	logger *slog.Logger

	// now is replaced in tests for deterministic Date headers.
	now func() time.Time
}

// New creates an SMTP mailer with the given configuration. Call
// Validate first to surface configuration problems up front; Send also
// re-checks and reports them as config failures.
func New(logger *slog.Logger, cfg courier.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, logger: logger, now: time.Now}
}

// Send delivers the email through a fresh SMTP session. The session is
// always released, whether delivery succeeds or fails.
func (m *Mailer) Send(ctx context.Context, email courier.OutboundEmail) courier.SendResult {
	if report := Validate(m.cfg); !report.Valid {
		return courier.SendFailure(courier.SendErrConfig,
			"SMTP configuration invalid: "+strings.Join(report.Errors, "; "))
	}
	if err := email.Validate(); err != nil {
		return courier.SendFailure(courier.SendErrConfig, courier.ErrorMessage(err))
	}

	result := m.withConnection(ctx, func(c *connection) courier.SendResult {
		return m.transmit(c, email)
	})

	if result.Success {
		m.logger.Info("email sent",
			slog.String("to", strings.Join(email.To, ",")),
			slog.String("subject", email.Subject))
	} else {
		m.logger.Error("email send failed",
			slog.String("kind", result.ErrorKind),
			slog.String("detail", result.Detail))
	}
	return result
}

// TestConnection probes the server with a full connect/auth/release
// cycle and no message transfer.
func (m *Mailer) TestConnection(ctx context.Context) courier.SendResult {
	if report := Validate(m.cfg); !report.Valid {
		return courier.SendFailure(courier.SendErrConfig,
			"SMTP configuration invalid: "+strings.Join(report.Errors, "; "))
	}
	return m.withConnection(ctx, func(c *connection) courier.SendResult {
		return courier.SendResult{Success: true}
	})
}

// transmit runs the MAIL/RCPT/DATA transaction on an open session.
// Rejections at this stage are protocol failures; the server's own
// diagnostic text is preserved in the result.
func (m *Mailer) transmit(c *connection, email courier.OutboundEmail) courier.SendResult {
	if err := c.client.Mail(m.cfg.From); err != nil {
		return courier.SendFailure(courier.SendErrProtocol,
			fmt.Sprintf("sender %s rejected: %v", m.cfg.From, err))
	}

	// BCC recipients are part of the envelope only; they never appear
	// in the message headers.
	for _, addr := range email.Recipients() {
		if err := c.client.Rcpt(addr); err != nil {
			return courier.SendFailure(courier.SendErrProtocol,
				fmt.Sprintf("recipient %s rejected: %v", addr, err))
		}
	}

	w, err := c.client.Data()
	if err != nil {
		return courier.SendFailure(courier.SendErrProtocol,
			fmt.Sprintf("DATA command rejected: %v", err))
	}
	if _, err := w.Write(m.buildMessage(email)); err != nil {
		_ = w.Close()
		return courier.SendFailure(courier.SendErrProtocol,
			fmt.Sprintf("message transfer failed: %v", err))
	}
	if err := w.Close(); err != nil {
		return courier.SendFailure(courier.SendErrProtocol,
			fmt.Sprintf("message not accepted: %v", err))
	}

	return courier.SendResult{Success: true}
}

// buildMessage assembles the RFC 5322 message: headers in a fixed
// order, then a blank line, then the body. CC addresses are visible in
// headers; BCC addresses are not written anywhere in the message.
func (m *Mailer) buildMessage(email courier.OutboundEmail) []byte {
	var b strings.Builder

	writeHeader := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	writeHeader("From", m.cfg.From)
	writeHeader("To", strings.Join(email.To, ", "))
	if len(email.CC) > 0 {
		writeHeader("Cc", strings.Join(email.CC, ", "))
	}
	if email.ReplyTo != "" {
		writeHeader("Reply-To", email.ReplyTo)
	}
	writeHeader("Subject", email.Subject)
	writeHeader("Date", m.now().Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.New().String(), m.cfg.Host))
	writeHeader("MIME-Version", "1.0")

	contentType := "text/plain; charset=\"utf-8\""
	if email.ContentType == courier.ContentTypeHTML {
		contentType = "text/html; charset=\"utf-8\""
	}
	writeHeader("Content-Type", contentType)

	b.WriteString("\r\n")
	b.WriteString(email.Body)
	b.WriteString("\r\n")

	return []byte(b.String())
}
