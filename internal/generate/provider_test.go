package generate

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitaker/courier"
)

func TestProviderFor(t *testing.T) {
	tests := []struct {
		url  string
		want providerKind
	}{
		{"https://api.openai.com/v1/chat/completions", providerOpenAI},
		{"https://openrouter.ai/api/v1/chat/completions", providerOpenAI},
		{"https://example.com/v1/chat/completions", providerOpenAI},
		{"https://api.anthropic.com/v1/messages", providerAnthropic},
		{"https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent", providerGoogle},
		{"https://llm.internal.example.com/generate", providerCustom},
		{"", providerCustom},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, providerFor(tt.url).kind)
		})
	}
}

func TestOpenAIProvider(t *testing.T) {
	cfg := courier.GeneratorConfig{Model: "gpt-4o-mini", APIKey: "sk-test"}

	t.Run("request payload", func(t *testing.T) {
		body, err := openAIProvider.buildRequest(cfg, "write something", courier.GenerationRequest{MaxLength: 300})
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "gpt-4o-mini", payload["model"])
		assert.Equal(t, float64(300), payload["max_tokens"])

		msgs := payload["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.Equal(t, "write something", msgs[0].(map[string]any)["content"])
	})

	t.Run("auth header", func(t *testing.T) {
		h := http.Header{}
		openAIProvider.applyAuth(h, "sk-test")
		assert.Equal(t, "Bearer sk-test", h.Get("Authorization"))
	})

	t.Run("parse response", func(t *testing.T) {
		out, err := openAIProvider.parse([]byte(`{"choices":[{"message":{"content":"Hello there.\n"}}]}`))
		require.NoError(t, err)
		assert.Equal(t, "Hello there.", out.content)
		assert.Empty(t, out.subject)
	})

	t.Run("empty choices", func(t *testing.T) {
		_, err := openAIProvider.parse([]byte(`{"choices":[]}`))
		assert.ErrorIs(t, err, errMalformedResponse)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := openAIProvider.parse([]byte(`not json`))
		assert.ErrorIs(t, err, errMalformedResponse)
	})
}

func TestAnthropicProvider(t *testing.T) {
	cfg := courier.GeneratorConfig{Model: "claude-3-haiku-20240307"}

	t.Run("request payload defaults max_tokens", func(t *testing.T) {
		body, err := anthropicProvider.buildRequest(cfg, "write something", courier.GenerationRequest{})
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, float64(1024), payload["max_tokens"])
	})

	t.Run("auth headers", func(t *testing.T) {
		h := http.Header{}
		anthropicProvider.applyAuth(h, "sk-ant-test")
		assert.Equal(t, "sk-ant-test", h.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", h.Get("anthropic-version"))
		assert.Empty(t, h.Get("Authorization"))
	})

	t.Run("parse joins text blocks", func(t *testing.T) {
		out, err := anthropicProvider.parse([]byte(`{"content":[{"type":"text","text":"Part one. "},{"type":"tool_use"},{"type":"text","text":"Part two."}]}`))
		require.NoError(t, err)
		assert.Equal(t, "Part one. Part two.", out.content)
	})

	t.Run("no text blocks", func(t *testing.T) {
		_, err := anthropicProvider.parse([]byte(`{"content":[]}`))
		assert.ErrorIs(t, err, errMalformedResponse)
	})
}

func TestGoogleProvider(t *testing.T) {
	t.Run("request payload", func(t *testing.T) {
		body, err := googleProvider.buildRequest(courier.GeneratorConfig{}, "write something", courier.GenerationRequest{MaxLength: 256})
		require.NoError(t, err)

		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				MaxOutputTokens int `json:"maxOutputTokens"`
			} `json:"generationConfig"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Len(t, payload.Contents, 1)
		assert.Equal(t, "write something", payload.Contents[0].Parts[0].Text)
		assert.Equal(t, 256, payload.GenerationConfig.MaxOutputTokens)
	})

	t.Run("auth header", func(t *testing.T) {
		h := http.Header{}
		googleProvider.applyAuth(h, "AIza-test")
		assert.Equal(t, "AIza-test", h.Get("x-goog-api-key"))
	})

	t.Run("parse response", func(t *testing.T) {
		out, err := googleProvider.parse([]byte(`{"candidates":[{"content":{"parts":[{"text":"Generated."}]}}]}`))
		require.NoError(t, err)
		assert.Equal(t, "Generated.", out.content)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := googleProvider.parse([]byte(`{"candidates":[]}`))
		assert.ErrorIs(t, err, errMalformedResponse)
	})
}

func TestCustomProvider(t *testing.T) {
	t.Run("request carries raw fields", func(t *testing.T) {
		req := courier.GenerationRequest{
			Prompt:    "quarterly update",
			Tone:      "friendly",
			EmailType: "announcement",
			MaxLength: 500,
		}
		body, err := customProvider.buildRequest(courier.GeneratorConfig{}, "ignored composed prompt", req)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "quarterly update", payload["prompt"])
		assert.Equal(t, "friendly", payload["tone"])
		assert.Equal(t, "announcement", payload["email_type"])
		assert.Equal(t, float64(500), payload["max_length"])
	})

	t.Run("parse content field", func(t *testing.T) {
		out, err := customProvider.parse([]byte(`{"content":"Body here","subject":"A subject"}`))
		require.NoError(t, err)
		assert.Equal(t, "Body here", out.content)
		assert.Equal(t, "A subject", out.subject)
	})

	t.Run("parse text field fallback", func(t *testing.T) {
		out, err := customProvider.parse([]byte(`{"text":"Body here"}`))
		require.NoError(t, err)
		assert.Equal(t, "Body here", out.content)
	})

	t.Run("missing both fields", func(t *testing.T) {
		_, err := customProvider.parse([]byte(`{"result":"nope"}`))
		assert.ErrorIs(t, err, errMalformedResponse)
	})
}
