package http

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jwhitaker/courier"
)

// GenerateRequest is the payload for POST /api/generate.
type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	Tone      string `json:"tone"`
	EmailType string `json:"emailType"`
	MaxLength int    `json:"maxLength"`
	Recipient string `json:"recipient"`

	// Save controls whether the generated content is stored as a draft.
	Save bool `json:"save"`
}

// GenerateResponse carries the generated content plus the stored draft
// when saving was requested.
type GenerateResponse struct {
	Subject string         `json:"subject"`
	Content string         `json:"content"`
	Source  courier.Source `json:"source"`
	Draft   *courier.Draft `json:"draft,omitempty"`
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return courier.Invalid("invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return courier.Invalid("prompt is required")
	}

	result := s.generator.GenerateWithSubject(c.Request().Context(), courier.GenerationRequest{
		Prompt:    req.Prompt,
		Tone:      req.Tone,
		EmailType: req.EmailType,
		MaxLength: req.MaxLength,
	})

	resp := GenerateResponse{
		Subject: result.Subject,
		Content: result.Content,
		Source:  result.Source,
	}

	if req.Save {
		draft, err := s.saveDraft(c, req, result)
		if err != nil {
			return err
		}
		resp.Draft = draft
		return RespondCreated(c, resp)
	}

	return RespondOK(c, resp)
}

// SendRequest is the payload for POST /api/send: generate content for
// the prompt and deliver it to the recipient in one call.
type SendRequest struct {
	Prompt    string   `json:"prompt"`
	Recipient string   `json:"recipient"`
	Tone      string   `json:"tone"`
	EmailType string   `json:"emailType"`
	MaxLength int      `json:"maxLength"`
	CC        []string `json:"cc"`
	BCC       []string `json:"bcc"`
	ReplyTo   string   `json:"replyTo"`
}

// SendResponse reports the generation outcome and delivery result.
type SendResponse struct {
	Subject string             `json:"subject"`
	Content string             `json:"content"`
	Source  courier.Source     `json:"source"`
	Result  courier.SendResult `json:"result"`
	Draft   *courier.Draft     `json:"draft,omitempty"`
}

func (s *Server) handleGenerateAndSend(c echo.Context) error {
	ctx := c.Request().Context()

	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return courier.Invalid("invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return courier.Invalid("prompt is required")
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return courier.Invalid("recipient is required")
	}

	// Generation never fails; a misconfigured or unreachable API means
	// the prompt itself is delivered as the body.
	result := s.generator.GenerateWithSubject(ctx, courier.GenerationRequest{
		Prompt:    req.Prompt,
		Tone:      req.Tone,
		EmailType: req.EmailType,
		MaxLength: req.MaxLength,
	})

	sendResult := s.sender.Send(ctx, courier.OutboundEmail{
		To:      []string{req.Recipient},
		CC:      req.CC,
		BCC:     req.BCC,
		ReplyTo: req.ReplyTo,
		Subject: result.Subject,
		Body:    result.Content,
	})

	// Record the attempt so it shows up in drafts and stats.
	draft := &courier.Draft{
		Prompt:    req.Prompt,
		Subject:   result.Subject,
		Content:   result.Content,
		Recipient: req.Recipient,
		Tone:      req.Tone,
		EmailType: req.EmailType,
	}
	if err := s.draftService.CreateDraft(ctx, draft); err != nil {
		return err
	}
	if sendResult.Success {
		now := time.Now()
		if err := s.draftService.MarkDraftSent(ctx, draft.ID, now); err != nil {
			return err
		}
		draft.Status = courier.DraftStatusSent
		draft.SentAt = &now
	} else {
		if err := s.draftService.MarkDraftFailed(ctx, draft.ID); err != nil {
			return err
		}
		draft.Status = courier.DraftStatusFailed
	}

	return RespondOK(c, SendResponse{
		Subject: result.Subject,
		Content: result.Content,
		Source:  result.Source,
		Result:  sendResult,
		Draft:   draft,
	})
}

// saveDraft stores generated content for later editing and sending.
func (s *Server) saveDraft(c echo.Context, req GenerateRequest, result courier.GenerationResult) (*courier.Draft, error) {
	draft := &courier.Draft{
		Prompt:    req.Prompt,
		Subject:   result.Subject,
		Content:   result.Content,
		Recipient: req.Recipient,
		Tone:      req.Tone,
		EmailType: req.EmailType,
		Status:    courier.DraftStatusDraft,
	}
	if err := s.draftService.CreateDraft(c.Request().Context(), draft); err != nil {
		return nil, err
	}
	return draft, nil
}
