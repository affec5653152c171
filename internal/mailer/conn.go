package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/jwhitaker/courier"
)

// connection is an authenticated SMTP session. Obtain one through
// withConnection, which guarantees release on every path.
type connection struct {
	client *smtp.Client
}

// withConnection acquires an authenticated session, runs fn, and
// releases the session regardless of outcome. Acquisition failures are
// classified into a SendResult; fn's result is passed through.
func (m *Mailer) withConnection(ctx context.Context, fn func(c *connection) courier.SendResult) courier.SendResult {
	conn, result := m.connect(ctx)
	if conn == nil {
		return result
	}
	defer conn.release()
	return fn(conn)
}

// connect dials, negotiates encryption per the configured mode, and
// authenticates. On failure the second return value carries the
// classified result and the first is nil.
func (m *Mailer) connect(ctx context.Context) (*connection, courier.SendResult) {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}

	mode := resolveMode(m.cfg)

	var client *smtp.Client
	if mode == modeSSL {
		// Implicit TLS: the connection is encrypted from the first byte.
		tlsConn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.cfg.Host})
		if err != nil {
			return nil, courier.SendFailure(courier.SendErrConnect,
				fmt.Sprintf("TLS connection to %s failed: %v", addr, err))
		}
		// The dialer timeout covers only dial and handshake; the greeting
		// and AUTH exchange need their own deadline.
		if m.cfg.Timeout > 0 {
			_ = tlsConn.SetDeadline(deadlineFrom(ctx, m.cfg.Timeout))
		}
		client, err = smtp.NewClient(tlsConn, m.cfg.Host)
		if err != nil {
			_ = tlsConn.Close()
			return nil, courier.SendFailure(courier.SendErrConnect,
				fmt.Sprintf("SMTP handshake with %s failed: %v", addr, err))
		}
	} else {
		netConn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, courier.SendFailure(courier.SendErrConnect,
				fmt.Sprintf("connection to %s failed: %v", addr, err))
		}
		if m.cfg.Timeout > 0 {
			_ = netConn.SetDeadline(deadlineFrom(ctx, m.cfg.Timeout))
		}
		client, err = smtp.NewClient(netConn, m.cfg.Host)
		if err != nil {
			_ = netConn.Close()
			return nil, courier.SendFailure(courier.SendErrConnect,
				fmt.Sprintf("SMTP handshake with %s failed: %v", addr, err))
		}
		if mode == modeSTARTTLS {
			if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				_ = client.Close()
				return nil, courier.SendFailure(courier.SendErrConnect,
					fmt.Sprintf("STARTTLS negotiation failed: %v", err))
			}
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, courier.SendFailure(classifyAuthErr(err),
				fmt.Sprintf("SMTP authentication failed: %v", err))
		}
	}

	return &connection{client: client}, courier.SendResult{}
}

// release closes the session, preferring a clean QUIT. A failed QUIT
// still tears down the underlying connection.
func (c *connection) release() {
	if err := c.client.Quit(); err != nil {
		_ = c.client.Close()
	}
}

// classifyAuthErr distinguishes credential rejections from transport
// problems during the AUTH exchange. 535, 534 and 530 are the reply
// codes servers use for bad or insufficient credentials.
func classifyAuthErr(err error) string {
	if te, ok := err.(*textproto.Error); ok {
		switch te.Code {
		case 535, 534, 530:
			return courier.SendErrAuth
		}
		return courier.SendErrProtocol
	}
	if strings.Contains(strings.ToLower(err.Error()), "auth") {
		return courier.SendErrAuth
	}
	return courier.SendErrConnect
}

type encryptionMode int

const (
	modePlain encryptionMode = iota
	modeSTARTTLS
	modeSSL
)

// resolveMode maps the UseTLS/UseSSL flags to one encryption mode.
// When both flags are set, STARTTLS wins and SSL is ignored.
func resolveMode(cfg courier.SMTPConfig) encryptionMode {
	switch {
	case cfg.UseTLS:
		return modeSTARTTLS
	case cfg.UseSSL:
		return modeSSL
	default:
		return modePlain
	}
}

// deadlineFrom picks the sooner of the context deadline and now+timeout.
func deadlineFrom(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}
