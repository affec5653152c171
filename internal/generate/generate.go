// Package generate produces email content through an external
// text-generation API. Failures never escape: every path degrades to a
// fallback result that carries the original prompt, so a generation
// problem can never block sending.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwhitaker/courier"
)

// Compile-time interface check
var _ courier.Generator = (*Generator)(nil)

// Doer abstracts the HTTP transport: send a JSON POST, receive a JSON
// response or an error.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Generator implements courier.Generator against the configured API.
type Generator struct {
	cfg      courier.GeneratorConfig
	provider provider
	client   Doer
	logger   *slog.Logger

	// sleep is replaced in tests to record backoff delays.
	sleep func(time.Duration)
}

// New creates a content generator for the configured endpoint.
func New(logger *slog.Logger, cfg courier.GeneratorConfig) *Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = courier.DefaultGeneratorConfig().MaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = courier.DefaultGeneratorConfig().RetryBaseDelay
	}
	return &Generator{
		cfg:      cfg,
		provider: providerFor(cfg.APIURL),
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Generate produces email body content for the request. With no API
// key configured it returns the fallback result immediately, without a
// network call.
func (g *Generator) Generate(ctx context.Context, req courier.GenerationRequest) courier.GenerationResult {
	result, _ := g.generate(ctx, req)
	return result
}

// GenerateWithSubject produces body content plus a subject line. The
// provider-supplied subject is used when present; otherwise one is
// derived from the content or the prompt.
func (g *Generator) GenerateWithSubject(ctx context.Context, req courier.GenerationRequest) courier.GenerationResult {
	result, subject := g.generate(ctx, req)
	if subject == "" {
		subject = deriveSubject(result.Content, req.Prompt)
	}
	result.Subject = subject
	return result
}

// generate runs the retry loop and returns the result plus any
// provider-supplied subject.
func (g *Generator) generate(ctx context.Context, req courier.GenerationRequest) (courier.GenerationResult, string) {
	fallback := courier.GenerationResult{
		Content: req.Prompt,
		Source:  courier.SourceFallback,
	}

	if g.cfg.APIKey == "" || g.cfg.APIURL == "" {
		g.logger.Warn("generation API not configured, using fallback content")
		return fallback, ""
	}

	prompt := composePrompt(req)

	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.cfg.RetryBaseDelay << (attempt - 1)
			g.logger.Info("retrying generation request",
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay))
			g.sleep(delay)
		}

		out, err := g.callAPI(ctx, prompt, req)
		if err == nil {
			return courier.GenerationResult{
				Content: out.content,
				Source:  courier.SourceAPI,
			}, out.subject
		}
		lastErr = err

		if !isTransient(err) {
			g.logger.Error("permanent generation failure, using fallback content",
				slog.String("provider", string(g.provider.kind)),
				slog.String("error", err.Error()))
			return fallback, ""
		}

		g.logger.Warn("transient generation failure",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}

	g.logger.Error("generation attempts exhausted, using fallback content",
		slog.Int("attempts", g.cfg.MaxAttempts),
		slog.String("error", lastErr.Error()))
	return fallback, ""
}

// statusError is a non-2xx response from the provider.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.status, e.body)
}

// isTransient reports whether retrying the request may succeed.
// Rate-limit responses are treated the same as server errors.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// Adapter parse failures are permanent; anything else (network
	// errors, caller timeouts) is worth retrying.
	return !errors.Is(err, errMalformedResponse)
}

// callAPI performs a single request/parse cycle against the provider.
func (g *Generator) callAPI(ctx context.Context, prompt string, req courier.GenerationRequest) (parsed, error) {
	payload, err := g.provider.buildRequest(g.cfg, prompt, req)
	if err != nil {
		return parsed{}, fmt.Errorf("%w: building payload: %v", errMalformedResponse, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return parsed{}, fmt.Errorf("%w: building request: %v", errMalformedResponse, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	g.provider.applyAuth(httpReq.Header, g.cfg.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return parsed{}, fmt.Errorf("provider request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return parsed{}, fmt.Errorf("reading provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parsed{}, &statusError{status: resp.StatusCode, body: truncate(string(body), 200)}
	}

	return g.provider.parse(body)
}

// composePrompt turns the request into the instruction sent upstream.
func composePrompt(req courier.GenerationRequest) string {
	tone := req.Tone
	if tone == "" {
		tone = "professional"
	}
	prompt := fmt.Sprintf("Write a %s email about: %s", tone, req.Prompt)
	if req.EmailType != "" {
		prompt += fmt.Sprintf(" (email type: %s)", req.EmailType)
	}
	return prompt
}

// deriveSubject extracts a subject line from generated content, falling
// back to a trimmed form of the prompt. Never returns an empty string.
func deriveSubject(content, prompt string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	first := strings.TrimSpace(lines[0])
	if first != "" && len(first) < 100 && !strings.HasPrefix(strings.ToLower(first), "dear") {
		return first
	}

	words := strings.Fields(prompt)
	if len(words) > 7 {
		words = words[:7]
	}
	subject := strings.Join(words, " ")
	if subject == "" {
		return "Email"
	}
	if len(subject) > 50 {
		return subject[:47] + "..."
	}
	return subject
}

// truncate bounds diagnostic text kept from provider error bodies.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
