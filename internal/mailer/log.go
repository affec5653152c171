package mailer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jwhitaker/courier"
)

// Compile-time interface checks
var (
	_ courier.EmailSender      = (*LogSender)(nil)
	_ courier.ConnectionTester = (*LogSender)(nil)
)

// LogSender is the development delivery provider: it logs messages
// instead of sending them. Validation still runs, so misconfigured
// requests fail the same way they would in production.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that logs instead of delivering.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, email courier.OutboundEmail) courier.SendResult {
	if err := email.Validate(); err != nil {
		return courier.SendFailure(courier.SendErrConfig, courier.ErrorMessage(err))
	}
	s.logger.Info("mock email delivery",
		slog.String("to", strings.Join(email.To, ",")),
		slog.String("cc", strings.Join(email.CC, ",")),
		slog.Int("bcc", len(email.BCC)),
		slog.String("subject", email.Subject),
		slog.Int("bodyLength", len(email.Body)))
	return courier.SendResult{Success: true}
}

func (s *LogSender) TestConnection(ctx context.Context) courier.SendResult {
	return courier.SendResult{Success: true}
}
