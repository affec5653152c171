package courier

import (
	"context"
	"strings"
	"time"
)

// ContentType selects the MIME type of an outbound email body.
type ContentType string

const (
	ContentTypePlain ContentType = "plain"
	ContentTypeHTML  ContentType = "html"
)

// OutboundEmail represents a message to be delivered.
type OutboundEmail struct {
	To          []string    `json:"to"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	ContentType ContentType `json:"contentType,omitempty"`
	CC          []string    `json:"cc,omitempty"`
	BCC         []string    `json:"bcc,omitempty"`
	ReplyTo     string      `json:"replyTo,omitempty"`
}

// Validate checks the structural invariants of the email.
// Returns EINVALID when no recipient exists across To/CC/BCC or an
// address is malformed.
func (e OutboundEmail) Validate() error {
	if len(e.To)+len(e.CC)+len(e.BCC) == 0 {
		return Invalid("at least one recipient is required")
	}
	for _, addr := range e.Recipients() {
		if !strings.Contains(addr, "@") {
			return Invalid("invalid recipient address: %s", addr)
		}
	}
	if e.ReplyTo != "" && !strings.Contains(e.ReplyTo, "@") {
		return Invalid("invalid reply-to address: %s", e.ReplyTo)
	}
	return nil
}

// Recipients returns the full transport-level recipient list: To, CC
// and BCC combined. BCC addresses appear here but never in headers.
func (e OutboundEmail) Recipients() []string {
	all := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	all = append(all, e.To...)
	all = append(all, e.CC...)
	all = append(all, e.BCC...)
	return all
}

// Send error kinds. Each kind points at a different remediation:
// config means the settings are wrong, auth means the credentials are
// wrong, connect means the network or firewall is in the way, and
// protocol means the server rejected the transaction.
const (
	SendErrConfig   = "config"
	SendErrAuth     = "auth"
	SendErrConnect  = "connect"
	SendErrProtocol = "protocol"
)

// SendResult reports the outcome of a send operation. Failures carry a
// classification instead of an error value so callers never have to
// handle a raised fault mid-delivery.
type SendResult struct {
	// Success is true when the message was accepted by the server.
	Success bool `json:"success"`

	// ErrorKind classifies the failure (config, auth, connect, protocol).
	// Empty on success.
	ErrorKind string `json:"errorKind,omitempty"`

	// Detail preserves the server or network diagnostic text.
	Detail string `json:"detail,omitempty"`
}

// SendFailure builds a failed SendResult with the given classification.
func SendFailure(kind string, detail string) SendResult {
	return SendResult{Success: false, ErrorKind: kind, Detail: detail}
}

// EmailSender defines operations for delivering emails.
type EmailSender interface {
	// Send delivers the email and reports a classified result.
	// Transport errors are never propagated; they are folded into the
	// returned SendResult.
	Send(ctx context.Context, email OutboundEmail) SendResult
}

// ConnectionTester is implemented by senders that can probe their
// transport without sending a message.
type ConnectionTester interface {
	// TestConnection performs a full connect/authenticate/release cycle
	// and reports the classified outcome.
	TestConnection(ctx context.Context) SendResult
}

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the sender address written into every message.
	From string

	// UseTLS upgrades a plaintext connection via STARTTLS.
	// UseSSL wraps the connection in TLS from the first byte.
	// When both are set, TLS takes precedence and SSL is ignored.
	UseTLS bool
	UseSSL bool

	// Timeout bounds the connect and authenticate phases.
	Timeout time.Duration
}

// ValidationReport is the result of validating SMTP settings.
// Warnings flag discouraged but permitted configurations.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
