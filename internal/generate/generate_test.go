package generate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitaker/courier"
)

// fakeDoer records requests and plays back scripted responses.
type fakeDoer struct {
	calls     int
	responses []fakeResponse
	requests  []*http.Request
}

type fakeResponse struct {
	status int
	body   string
	err    error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[i]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(r.body))),
		Header:     http.Header{},
	}, nil
}

func newTestGenerator(t *testing.T, cfg courier.GeneratorConfig, doer *fakeDoer) (*Generator, *[]time.Duration) {
	t.Helper()
	g := New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	g.client = doer
	var delays []time.Duration
	g.sleep = func(d time.Duration) { delays = append(delays, d) }
	return g, &delays
}

func testConfig() courier.GeneratorConfig {
	cfg := courier.DefaultGeneratorConfig()
	cfg.APIKey = "test-key"
	cfg.APIURL = "https://api.openai.com/v1/chat/completions"
	return cfg
}

func TestGenerate_Success(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 200, body: `{"choices":[{"message":{"content":"Generated body."}}]}`},
	}}
	g, _ := newTestGenerator(t, testConfig(), doer)

	result := g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, courier.SourceAPI, result.Source)
	assert.Equal(t, "Generated body.", result.Content)
	assert.Equal(t, 1, doer.calls)
}

func TestGenerate_NoAPIKeyFallsBackWithoutCalling(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = ""
	doer := &fakeDoer{responses: []fakeResponse{{status: 200, body: `{}`}}}
	g, _ := newTestGenerator(t, cfg, doer)

	result := g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, courier.SourceFallback, result.Source)
	assert.Equal(t, "team offsite", result.Content)
	assert.Zero(t, doer.calls, "no API key must mean no network calls")
}

func TestGenerate_PermanentFailureDoesNotRetry(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 400, body: `{"error":"bad request"}`},
	}}
	g, delays := newTestGenerator(t, testConfig(), doer)

	result := g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, courier.SourceFallback, result.Source)
	assert.Equal(t, "team offsite", result.Content)
	assert.Equal(t, 1, doer.calls, "a 400 must not be retried")
	assert.Empty(t, *delays)
}

func TestGenerate_MalformedResponseDoesNotRetry(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 200, body: `{"unexpected":"shape"}`},
	}}
	g, _ := newTestGenerator(t, testConfig(), doer)

	result := g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, courier.SourceFallback, result.Source)
	assert.Equal(t, 1, doer.calls)
}

func TestGenerate_TransientFailureRetriesWithBackoff(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 429, body: `{"error":"rate limited"}`},
	}}
	g, delays := newTestGenerator(t, testConfig(), doer)

	result := g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, courier.SourceFallback, result.Source)
	assert.Equal(t, 3, doer.calls, "transient failures retry up to the attempt limit")
	require.Equal(t, []time.Duration{500 * time.Millisecond, 1 * time.Second}, *delays)
}

func TestGenerate_ServerErrorThenSuccess(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 503, body: `unavailable`},
		{status: 200, body: `{"choices":[{"message":{"content":"Second try."}}]}`},
	}}
	g, delays := newTestGenerator(t, testConfig(), doer)

	result := g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, courier.SourceAPI, result.Source)
	assert.Equal(t, "Second try.", result.Content)
	assert.Equal(t, 2, doer.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, *delays)
}

func TestGenerate_NetworkErrorRetries(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{err: errors.New("dial tcp: connection refused")},
	}}
	g, _ := newTestGenerator(t, testConfig(), doer)

	result := g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, courier.SourceFallback, result.Source)
	assert.Equal(t, 3, doer.calls)
}

func TestGenerate_ComposesPromptWithTone(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 200, body: `{"choices":[{"message":{"content":"ok"}}]}`},
	}}
	g, _ := newTestGenerator(t, testConfig(), doer)

	g.Generate(context.Background(), courier.GenerationRequest{Prompt: "team offsite", Tone: "casual"})

	require.Len(t, doer.requests, 1)
	body, err := io.ReadAll(doer.requests[0].Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Write a casual email about: team offsite")
	assert.Equal(t, "Bearer test-key", doer.requests[0].Header.Get("Authorization"))
}

func TestGenerateWithSubject_ProviderSubjectWins(t *testing.T) {
	cfg := testConfig()
	cfg.APIURL = "https://llm.internal.example.com/generate"
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 200, body: `{"content":"Body text","subject":"From provider"}`},
	}}
	g, _ := newTestGenerator(t, cfg, doer)

	result := g.GenerateWithSubject(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, "From provider", result.Subject)
	assert.Equal(t, "Body text", result.Content)
}

func TestGenerateWithSubject_DerivedFromContent(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 200, body: `{"choices":[{"message":{"content":"Offsite planning update\n\nDear team, details below."}}]}`},
	}}
	g, _ := newTestGenerator(t, testConfig(), doer)

	result := g.GenerateWithSubject(context.Background(), courier.GenerationRequest{Prompt: "team offsite"})

	assert.Equal(t, "Offsite planning update", result.Subject)
}

func TestDeriveSubject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		prompt  string
		want    string
	}{
		{
			name:    "first content line",
			content: "Quick update on the launch\nHi all,",
			prompt:  "launch",
			want:    "Quick update on the launch",
		},
		{
			name:    "salutation line skipped",
			content: "Dear Ms. Alvarez,\nThanks for your time.",
			prompt:  "thank the interviewer for their time",
			want:    "thank the interviewer for their time",
		},
		{
			name:    "long prompt truncated to seven words",
			content: "",
			prompt:  "ask the facilities team about booking the large conference room next week",
			want:    "ask the facilities team about booking the",
		},
		{
			name:    "empty everything",
			content: "",
			prompt:  "",
			want:    "Email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveSubject(tt.content, tt.prompt))
		})
	}
}
