package courier

import (
	"context"
	"time"
)

// Source identifies where generated content came from.
type Source string

const (
	// SourceAPI means the content was produced by the configured
	// text-generation API.
	SourceAPI Source = "api"

	// SourceFallback means the API was unreachable or misconfigured and
	// the content is the original prompt, passed through unchanged.
	SourceFallback Source = "fallback"
)

// GenerationRequest describes a single content-generation call.
type GenerationRequest struct {
	// Prompt is the user's request for email content. Required.
	Prompt string `json:"prompt"`

	// Tone is the desired tone of the email ("professional", "formal",
	// "casual", ...). Free-form; defaults to "professional".
	Tone string `json:"tone,omitempty"`

	// EmailType is an optional categorical hint ("general", "business", ...).
	EmailType string `json:"emailType,omitempty"`

	// MaxLength optionally bounds the generated output in tokens.
	// Zero means provider default.
	MaxLength int `json:"maxLength,omitempty"`
}

// GenerationResult is the normalized output of a generation call.
// Content is never empty when the request carried a prompt: on any
// failure the prompt itself is returned with Source set to fallback.
type GenerationResult struct {
	// Subject is the derived or provider-supplied subject line.
	// Empty for plain Generate calls.
	Subject string `json:"subject,omitempty"`

	// Content is the generated email body.
	Content string `json:"content"`

	// Source records whether the content came from the API or the
	// fallback path.
	Source Source `json:"source"`
}

// Generator defines operations for generating email content.
// Implementations never return an error: generation degrades to the
// fallback result so that a generation problem can never block sending.
type Generator interface {
	// Generate produces email body content for the request.
	Generate(ctx context.Context, req GenerationRequest) GenerationResult

	// GenerateWithSubject produces body content plus a subject line.
	// The subject is never empty when content is present.
	GenerateWithSubject(ctx context.Context, req GenerationRequest) GenerationResult
}

// GeneratorConfig holds configuration for the content generator.
type GeneratorConfig struct {
	// APIKey authenticates against the generation API. An empty key
	// disables network calls entirely; every request falls back.
	APIKey string

	// APIURL is the generation endpoint. The provider wire format is
	// selected by matching this URL against known provider signatures.
	APIURL string

	// Model is the model identifier sent to providers that require one.
	Model string

	// MaxAttempts caps retries on transient failures.
	MaxAttempts int

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Model:          "mistralai/mistral-7b-instruct",
		MaxAttempts:    3,
		RetryBaseDelay: 500 * time.Millisecond,
	}
}
