package mock

import (
	"context"

	"github.com/jwhitaker/courier"
)

// Compile-time interface checks
var (
	_ courier.EmailSender      = (*EmailSender)(nil)
	_ courier.ConnectionTester = (*EmailSender)(nil)
)

// EmailSender is a mock implementation of courier.EmailSender.
type EmailSender struct {
	SendFn           func(ctx context.Context, email courier.OutboundEmail) courier.SendResult
	TestConnectionFn func(ctx context.Context) courier.SendResult

	// Tracking sent emails for assertions
	Sent []courier.OutboundEmail
}

func (s *EmailSender) Send(ctx context.Context, email courier.OutboundEmail) courier.SendResult {
	s.Sent = append(s.Sent, email)
	if s.SendFn != nil {
		return s.SendFn(ctx, email)
	}
	return courier.SendResult{Success: true}
}

func (s *EmailSender) TestConnection(ctx context.Context) courier.SendResult {
	if s.TestConnectionFn != nil {
		return s.TestConnectionFn(ctx)
	}
	return courier.SendResult{Success: true}
}
