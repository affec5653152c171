package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jwhitaker/courier"
)

// Compile-time interface check
var _ courier.DraftService = (*DraftService)(nil)

// DraftService is the PostgreSQL-backed draft store.
type DraftService struct {
	db *DB
}

const draftColumns = `id, prompt, subject, content, recipient, tone, email_type, status, created_at, sent_at`

func scanDraft(row pgx.Row) (*courier.Draft, error) {
	var d courier.Draft
	err := row.Scan(&d.ID, &d.Prompt, &d.Subject, &d.Content, &d.Recipient,
		&d.Tone, &d.EmailType, &d.Status, &d.CreatedAt, &d.SentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, courier.NotFound("draft not found")
		}
		return nil, courier.Internal("scanning draft", err)
	}
	return &d, nil
}

// CreateDraft stores a new draft and populates its ID and CreatedAt.
func (s *DraftService) CreateDraft(ctx context.Context, draft *courier.Draft) error {
	if draft.Status == "" {
		draft.Status = courier.DraftStatusDraft
	}
	err := s.db.pool.QueryRow(ctx, `
		INSERT INTO drafts (prompt, subject, content, recipient, tone, email_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		draft.Prompt, draft.Subject, draft.Content, draft.Recipient,
		draft.Tone, draft.EmailType, draft.Status,
	).Scan(&draft.ID, &draft.CreatedAt)
	if err != nil {
		return courier.Internal("creating draft", err)
	}
	return nil
}

// FindDraftByID retrieves a draft by its ID.
func (s *DraftService) FindDraftByID(ctx context.Context, id uuid.UUID) (*courier.Draft, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE id = $1`, id)
	return scanDraft(row)
}

// FindDrafts retrieves all drafts, newest first.
func (s *DraftService) FindDrafts(ctx context.Context) ([]*courier.Draft, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT `+draftColumns+` FROM drafts ORDER BY created_at DESC`)
	if err != nil {
		return nil, courier.Internal("listing drafts", err)
	}
	defer rows.Close()

	drafts := []*courier.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, courier.Internal("listing drafts", err)
	}
	return drafts, nil
}

// UpdateDraftContent replaces the body content of a draft.
func (s *DraftService) UpdateDraftContent(ctx context.Context, id uuid.UUID, content string) (*courier.Draft, error) {
	row := s.db.pool.QueryRow(ctx, `
		UPDATE drafts SET content = $2 WHERE id = $1
		RETURNING `+draftColumns, id, content)
	return scanDraft(row)
}

// MarkDraftSent transitions the draft to sent with the given time.
func (s *DraftService) MarkDraftSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return s.setStatus(ctx, id, courier.DraftStatusSent, &sentAt)
}

// MarkDraftFailed transitions the draft to failed.
func (s *DraftService) MarkDraftFailed(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, courier.DraftStatusFailed, nil)
}

func (s *DraftService) setStatus(ctx context.Context, id uuid.UUID, status courier.DraftStatus, sentAt *time.Time) error {
	tag, err := s.db.pool.Exec(ctx,
		`UPDATE drafts SET status = $2, sent_at = $3 WHERE id = $1`,
		id, status, sentAt)
	if err != nil {
		return courier.Internal("updating draft status", err)
	}
	if tag.RowsAffected() == 0 {
		return courier.NotFound("draft not found")
	}
	return nil
}

// DeleteDraft removes a draft.
func (s *DraftService) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return courier.Internal("deleting draft", err)
	}
	if tag.RowsAffected() == 0 {
		return courier.NotFound("draft not found")
	}
	return nil
}

// GetDraftStats retrieves aggregate statistics over all drafts.
func (s *DraftService) GetDraftStats(ctx context.Context) (*courier.DraftStats, error) {
	stats := &courier.DraftStats{PopularTones: map[string]int{}}

	err := s.db.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at > now() - interval '7 days')
		FROM drafts`,
	).Scan(&stats.TotalSent, &stats.TotalDrafts, &stats.TotalFailed,
		&stats.Total, &stats.RecentActivity)
	if err != nil {
		return nil, courier.Internal("aggregating draft stats", err)
	}

	attempted := stats.TotalSent + stats.TotalFailed
	if attempted > 0 {
		stats.SuccessRate = float64(stats.TotalSent) / float64(attempted) * 100
	}

	rows, err := s.db.pool.Query(ctx, `
		SELECT tone, COUNT(*) FROM drafts
		WHERE tone <> '' GROUP BY tone ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, courier.Internal("aggregating tone stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tone string
		var count int
		if err := rows.Scan(&tone, &count); err != nil {
			return nil, courier.Internal("scanning tone stats", err)
		}
		stats.PopularTones[tone] = count
	}
	if err := rows.Err(); err != nil {
		return nil, courier.Internal("aggregating tone stats", err)
	}

	monthly, err := s.monthlyCounts(ctx)
	if err != nil {
		return nil, err
	}
	stats.Monthly = monthly

	return stats, nil
}

// monthlyCounts returns per-month sent/draft counts for the last six
// months, oldest first.
func (s *DraftService) monthlyCounts(ctx context.Context) ([]courier.MonthlyCount, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'draft')
		FROM drafts
		WHERE created_at > now() - interval '6 months'
		GROUP BY 1 ORDER BY 1`)
	if err != nil {
		return nil, courier.Internal("aggregating monthly stats", err)
	}
	defer rows.Close()

	counts := []courier.MonthlyCount{}
	for rows.Next() {
		var mc courier.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Sent, &mc.Drafts); err != nil {
			return nil, courier.Internal("scanning monthly stats", err)
		}
		counts = append(counts, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, courier.Internal("aggregating monthly stats", err)
	}
	return counts, nil
}
