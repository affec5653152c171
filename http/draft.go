package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jwhitaker/courier"
)

// draftID parses the :id route parameter.
func draftID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, courier.Invalid("invalid draft id: %s", c.Param("id"))
	}
	return id, nil
}

func (s *Server) handleListDrafts(c echo.Context) error {
	drafts, err := s.draftService.FindDrafts(c.Request().Context())
	if err != nil {
		return err
	}
	return RespondOK(c, map[string]any{"drafts": drafts})
}

func (s *Server) handleGetDraft(c echo.Context) error {
	id, err := draftID(c)
	if err != nil {
		return err
	}
	draft, err := s.draftService.FindDraftByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return RespondOK(c, draft)
}

// UpdateDraftRequest is the payload for PUT /api/drafts/:id.
type UpdateDraftRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleUpdateDraft(c echo.Context) error {
	id, err := draftID(c)
	if err != nil {
		return err
	}
	var req UpdateDraftRequest
	if err := c.Bind(&req); err != nil {
		return courier.Invalid("invalid request body")
	}
	if req.Content == "" {
		return courier.Invalid("content is required")
	}
	draft, err := s.draftService.UpdateDraftContent(c.Request().Context(), id, req.Content)
	if err != nil {
		return err
	}
	return RespondOK(c, draft)
}

func (s *Server) handleDeleteDraft(c echo.Context) error {
	id, err := draftID(c)
	if err != nil {
		return err
	}
	if err := s.draftService.DeleteDraft(c.Request().Context(), id); err != nil {
		return err
	}
	return RespondNoContent(c)
}

// SendDraftRequest is the payload for POST /api/drafts/:id/send. All
// fields are optional; the draft's stored recipient is the default.
type SendDraftRequest struct {
	To      []string `json:"to"`
	CC      []string `json:"cc"`
	BCC     []string `json:"bcc"`
	ReplyTo string   `json:"replyTo"`
}

// SendDraftResponse reports the delivery outcome alongside the draft.
type SendDraftResponse struct {
	Result courier.SendResult `json:"result"`
	Draft  *courier.Draft     `json:"draft"`
}

func (s *Server) handleSendDraft(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := draftID(c)
	if err != nil {
		return err
	}
	var req SendDraftRequest
	if err := c.Bind(&req); err != nil {
		return courier.Invalid("invalid request body")
	}

	draft, err := s.draftService.FindDraftByID(ctx, id)
	if err != nil {
		return err
	}
	if !draft.Status.IsSendable() {
		return courier.Invalid("draft already sent")
	}

	to := req.To
	if len(to) == 0 && draft.Recipient != "" {
		to = []string{draft.Recipient}
	}

	result := s.sender.Send(ctx, courier.OutboundEmail{
		To:      to,
		CC:      req.CC,
		BCC:     req.BCC,
		ReplyTo: req.ReplyTo,
		Subject: draft.Subject,
		Body:    draft.Content,
	})

	if result.Success {
		if err := s.draftService.MarkDraftSent(ctx, id, time.Now()); err != nil {
			return err
		}
	} else {
		if err := s.draftService.MarkDraftFailed(ctx, id); err != nil {
			return err
		}
	}

	draft, err = s.draftService.FindDraftByID(ctx, id)
	if err != nil {
		return err
	}
	return RespondOK(c, SendDraftResponse{Result: result, Draft: draft})
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.draftService.GetDraftStats(c.Request().Context())
	if err != nil {
		return err
	}
	return RespondOK(c, stats)
}
