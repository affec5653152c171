package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jwhitaker/courier"
)

// errMalformedResponse marks a response body the adapter could not
// interpret. The generator treats it as a permanent failure (no retry).
var errMalformedResponse = errors.New("malformed provider response")

// providerKind identifies the wire format of a generation endpoint.
type providerKind string

const (
	providerOpenAI    providerKind = "openai"
	providerAnthropic providerKind = "anthropic"
	providerGoogle    providerKind = "google"
	providerCustom    providerKind = "custom"
)

// parsed is the normalized output of a provider response.
type parsed struct {
	content string
	subject string
}

// provider bundles the wire contract of one API family: how to build
// the request payload, how to authenticate it, and how to extract the
// generated text. Dispatch is by configuration, not inheritance - an
// unmatched URL gets the custom catch-all contract.
type provider struct {
	kind         providerKind
	buildRequest func(cfg courier.GeneratorConfig, prompt string, req courier.GenerationRequest) ([]byte, error)
	applyAuth    func(header http.Header, apiKey string)
	parse        func(body []byte) (parsed, error)
}

// providerFor selects the provider contract by matching the endpoint
// URL against known signatures.
func providerFor(apiURL string) provider {
	u := strings.ToLower(apiURL)
	switch {
	case strings.Contains(u, "openai.com") || strings.Contains(u, "openrouter.ai") || strings.Contains(u, "/chat/completions"):
		return openAIProvider
	case strings.Contains(u, "anthropic.com") || strings.Contains(u, "/v1/messages"):
		return anthropicProvider
	case strings.Contains(u, "googleapis.com") || strings.Contains(u, "generatecontent"):
		return googleProvider
	default:
		return customProvider
	}
}

func bearerAuth(header http.Header, apiKey string) {
	header.Set("Authorization", "Bearer "+apiKey)
}

// openAIProvider speaks the chat-completions format shared by OpenAI
// and OpenRouter.
var openAIProvider = provider{
	kind: providerOpenAI,
	buildRequest: func(cfg courier.GeneratorConfig, prompt string, req courier.GenerationRequest) ([]byte, error) {
		payload := map[string]any{
			"model": cfg.Model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}
		if req.MaxLength > 0 {
			payload["max_tokens"] = req.MaxLength
		}
		return json.Marshal(payload)
	},
	applyAuth: bearerAuth,
	parse: func(body []byte) (parsed, error) {
		var resp struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return parsed{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return parsed{}, fmt.Errorf("%w: no choices in response", errMalformedResponse)
		}
		return parsed{content: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
	},
}

// anthropicProvider speaks the messages format of the Anthropic API.
var anthropicProvider = provider{
	kind: providerAnthropic,
	buildRequest: func(cfg courier.GeneratorConfig, prompt string, req courier.GenerationRequest) ([]byte, error) {
		maxTokens := req.MaxLength
		if maxTokens <= 0 {
			maxTokens = 1024 // required field on this API
		}
		payload := map[string]any{
			"model":      cfg.Model,
			"max_tokens": maxTokens,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}
		return json.Marshal(payload)
	},
	applyAuth: func(header http.Header, apiKey string) {
		header.Set("x-api-key", apiKey)
		header.Set("anthropic-version", "2023-06-01")
	},
	parse: func(body []byte) (parsed, error) {
		var resp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return parsed{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		if text.Len() == 0 {
			return parsed{}, fmt.Errorf("%w: no text content in response", errMalformedResponse)
		}
		return parsed{content: strings.TrimSpace(text.String())}, nil
	},
}

// googleProvider speaks the generateContent format of the Gemini API.
var googleProvider = provider{
	kind: providerGoogle,
	buildRequest: func(cfg courier.GeneratorConfig, prompt string, req courier.GenerationRequest) ([]byte, error) {
		payload := map[string]any{
			"contents": []map[string]any{
				{"parts": []map[string]string{{"text": prompt}}},
			},
		}
		if req.MaxLength > 0 {
			payload["generationConfig"] = map[string]any{"maxOutputTokens": req.MaxLength}
		}
		return json.Marshal(payload)
	},
	applyAuth: func(header http.Header, apiKey string) {
		header.Set("x-goog-api-key", apiKey)
	},
	parse: func(body []byte) (parsed, error) {
		var resp struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return parsed{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			return parsed{}, fmt.Errorf("%w: no candidates in response", errMalformedResponse)
		}
		return parsed{content: strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)}, nil
	},
}

// customProvider is the catch-all contract for unrecognized endpoints:
// the request carries the raw generation fields and the response must
// contain a content or text field. A subject field, when present, is
// passed through.
var customProvider = provider{
	kind: providerCustom,
	buildRequest: func(cfg courier.GeneratorConfig, prompt string, req courier.GenerationRequest) ([]byte, error) {
		payload := map[string]any{
			"prompt": req.Prompt,
		}
		if req.Tone != "" {
			payload["tone"] = req.Tone
		}
		if req.EmailType != "" {
			payload["email_type"] = req.EmailType
		}
		if req.MaxLength > 0 {
			payload["max_length"] = req.MaxLength
		}
		return json.Marshal(payload)
	},
	applyAuth: bearerAuth,
	parse: func(body []byte) (parsed, error) {
		var resp struct {
			Content string `json:"content"`
			Text    string `json:"text"`
			Subject string `json:"subject"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return parsed{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
		content := resp.Content
		if content == "" {
			content = resp.Text
		}
		if content == "" {
			return parsed{}, fmt.Errorf("%w: missing content or text field", errMalformedResponse)
		}
		return parsed{content: strings.TrimSpace(content), subject: strings.TrimSpace(resp.Subject)}, nil
	},
}
