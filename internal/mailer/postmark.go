package mailer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/keighl/postmark"

	"github.com/jwhitaker/courier"
)

// Compile-time interface check
var _ courier.EmailSender = (*PostmarkSender)(nil)

// postmarkAPI is the slice of the Postmark client used here, abstracted
// for tests.
type postmarkAPI interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender delivers email through the Postmark transactional API
// instead of direct SMTP.
type PostmarkSender struct {
	client postmarkAPI
	from   string
	logger *slog.Logger
}

// NewPostmarkSender creates a sender backed by the Postmark API.
func NewPostmarkSender(logger *slog.Logger, serverToken, accountToken, from string) *PostmarkSender {
	return &PostmarkSender{
		client: postmark.NewClient(serverToken, accountToken),
		from:   from,
		logger: logger,
	}
}

// Send delivers the email via the Postmark API and folds any error
// into a classified result.
func (s *PostmarkSender) Send(ctx context.Context, email courier.OutboundEmail) courier.SendResult {
	if s.from == "" {
		return courier.SendFailure(courier.SendErrConfig, "sender address is required")
	}
	if err := email.Validate(); err != nil {
		return courier.SendFailure(courier.SendErrConfig, courier.ErrorMessage(err))
	}

	msg := postmark.Email{
		From:    s.from,
		To:      strings.Join(email.To, ","),
		Cc:      strings.Join(email.CC, ","),
		Bcc:     strings.Join(email.BCC, ","),
		Subject: email.Subject,
		ReplyTo: email.ReplyTo,
	}
	if email.ContentType == courier.ContentTypeHTML {
		msg.HtmlBody = email.Body
	} else {
		msg.TextBody = email.Body
	}

	resp, err := s.client.SendEmail(msg)
	if err != nil {
		return courier.SendFailure(classifyPostmarkErr(err), err.Error())
	}
	if resp.ErrorCode != 0 {
		return courier.SendFailure(courier.SendErrProtocol, resp.Message)
	}

	s.logger.Info("email sent via postmark",
		slog.String("to", msg.To),
		slog.String("messageID", resp.MessageID))
	return courier.SendResult{Success: true}
}

// classifyPostmarkErr maps API failures onto the shared error kinds.
// Token rejections read as auth; everything else at this layer is a
// connectivity problem.
func classifyPostmarkErr(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "token") || strings.Contains(msg, "unauthorized") {
		return courier.SendErrAuth
	}
	return courier.SendErrConnect
}
