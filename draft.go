package courier

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Draft represents a generated email awaiting (or past) delivery.
type Draft struct {
	ID        uuid.UUID   `json:"id"`
	Prompt    string      `json:"prompt"`
	Subject   string      `json:"subject"`
	Content   string      `json:"content"`
	Recipient string      `json:"recipient"`
	Tone      string      `json:"tone"`
	EmailType string      `json:"type"`
	Status    DraftStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	SentAt    *time.Time  `json:"sentAt,omitempty"`
}

// DraftStatus represents the delivery state of a draft.
type DraftStatus string

const (
	DraftStatusDraft  DraftStatus = "draft"
	DraftStatusSent   DraftStatus = "sent"
	DraftStatusFailed DraftStatus = "failed"
)

// IsSendable returns true if the draft can still be sent.
func (s DraftStatus) IsSendable() bool {
	return s == DraftStatusDraft || s == DraftStatusFailed
}

// DraftService defines operations for managing email drafts.
type DraftService interface {
	// CreateDraft stores a new draft and populates its ID and CreatedAt.
	CreateDraft(ctx context.Context, draft *Draft) error

	// FindDraftByID retrieves a draft by its ID.
	// Returns ENOTFOUND if the draft does not exist.
	FindDraftByID(ctx context.Context, id uuid.UUID) (*Draft, error)

	// FindDrafts retrieves all drafts, newest first.
	FindDrafts(ctx context.Context) ([]*Draft, error)

	// UpdateDraftContent replaces the body content of a draft.
	// Returns ENOTFOUND if the draft does not exist.
	UpdateDraftContent(ctx context.Context, id uuid.UUID, content string) (*Draft, error)

	// MarkDraftSent transitions the draft to sent with the given time.
	MarkDraftSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// MarkDraftFailed transitions the draft to failed.
	MarkDraftFailed(ctx context.Context, id uuid.UUID) error

	// DeleteDraft removes a draft.
	// Returns ENOTFOUND if the draft does not exist.
	DeleteDraft(ctx context.Context, id uuid.UUID) error

	// GetDraftStats retrieves aggregate statistics over all drafts.
	GetDraftStats(ctx context.Context) (*DraftStats, error)
}

// MonthlyCount holds per-month sent/draft counts for the stats view.
type MonthlyCount struct {
	Month  string `json:"month"`
	Sent   int    `json:"sent"`
	Drafts int    `json:"drafts"`
}

// DraftStats contains aggregated statistics over all drafts.
type DraftStats struct {
	TotalSent      int            `json:"totalSent"`
	TotalDrafts    int            `json:"totalDrafts"`
	TotalFailed    int            `json:"totalFailed"`
	Total          int            `json:"total"`
	SuccessRate    float64        `json:"successRate"`
	RecentActivity int            `json:"recentActivity"`
	PopularTones   map[string]int `json:"popularTones"`
	Monthly        []MonthlyCount `json:"monthlyStats"`
}
