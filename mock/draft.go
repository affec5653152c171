package mock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwhitaker/courier"
)

// Compile-time interface check
var _ courier.DraftService = (*DraftService)(nil)

// DraftService is a mock implementation of courier.DraftService.
type DraftService struct {
	CreateDraftFn        func(ctx context.Context, draft *courier.Draft) error
	FindDraftByIDFn      func(ctx context.Context, id uuid.UUID) (*courier.Draft, error)
	FindDraftsFn         func(ctx context.Context) ([]*courier.Draft, error)
	UpdateDraftContentFn func(ctx context.Context, id uuid.UUID, content string) (*courier.Draft, error)
	MarkDraftSentFn      func(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkDraftFailedFn    func(ctx context.Context, id uuid.UUID) error
	DeleteDraftFn        func(ctx context.Context, id uuid.UUID) error
	GetDraftStatsFn      func(ctx context.Context) (*courier.DraftStats, error)
}

func (s *DraftService) CreateDraft(ctx context.Context, draft *courier.Draft) error {
	if s.CreateDraftFn != nil {
		return s.CreateDraftFn(ctx, draft)
	}
	draft.ID = uuid.New()
	draft.CreatedAt = time.Now()
	return nil
}

func (s *DraftService) FindDraftByID(ctx context.Context, id uuid.UUID) (*courier.Draft, error) {
	if s.FindDraftByIDFn != nil {
		return s.FindDraftByIDFn(ctx, id)
	}
	return nil, courier.NotFound("draft not found")
}

func (s *DraftService) FindDrafts(ctx context.Context) ([]*courier.Draft, error) {
	if s.FindDraftsFn != nil {
		return s.FindDraftsFn(ctx)
	}
	return []*courier.Draft{}, nil
}

func (s *DraftService) UpdateDraftContent(ctx context.Context, id uuid.UUID, content string) (*courier.Draft, error) {
	if s.UpdateDraftContentFn != nil {
		return s.UpdateDraftContentFn(ctx, id, content)
	}
	return nil, courier.NotFound("draft not found")
}

func (s *DraftService) MarkDraftSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	if s.MarkDraftSentFn != nil {
		return s.MarkDraftSentFn(ctx, id, sentAt)
	}
	return nil
}

func (s *DraftService) MarkDraftFailed(ctx context.Context, id uuid.UUID) error {
	if s.MarkDraftFailedFn != nil {
		return s.MarkDraftFailedFn(ctx, id)
	}
	return nil
}

func (s *DraftService) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	if s.DeleteDraftFn != nil {
		return s.DeleteDraftFn(ctx, id)
	}
	return nil
}

func (s *DraftService) GetDraftStats(ctx context.Context) (*courier.DraftStats, error) {
	if s.GetDraftStatsFn != nil {
		return s.GetDraftStatsFn(ctx)
	}
	return &courier.DraftStats{PopularTones: map[string]int{}}, nil
}
