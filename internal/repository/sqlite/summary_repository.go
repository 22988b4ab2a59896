package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

const summaryColumns = `id, course_id, course_code, author_id, author_username, title, content, attachment_key, votes, created_at, updated_at`

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) repository.SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Create(ctx context.Context, summary *domain.Summary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	summary.CreatedAt = stamp(summary.CreatedAt)
	summary.UpdatedAt = summary.CreatedAt

	_, err := r.db.ExecContext(ctx, `
INSERT INTO summaries (`+summaryColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		summary.CourseID,
		summary.CourseCode,
		summary.AuthorID,
		summary.AuthorUsername,
		summary.Title,
		summary.Content,
		summary.AttachmentKey,
		summary.Votes,
		summary.CreatedAt,
		summary.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError("summary", err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func (r *SummaryRepository) Get(ctx context.Context, id string) (*domain.Summary, error) {
	return scanSummary(r.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM summaries WHERE id = ?`, id))
}

func (r *SummaryRepository) List(ctx context.Context, courseID string) ([]domain.Summary, error) {
	query := `SELECT ` + summaryColumns + ` FROM summaries`
	var args []any
	if courseID != "" {
		query += ` WHERE course_id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	summaries := []domain.Summary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

func (r *SummaryRepository) SetAttachment(ctx context.Context, id, key string) (*domain.Summary, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE summaries SET attachment_key = ?, updated_at = ?
WHERE id = ?
RETURNING `+summaryColumns, key, time.Now().UTC(), id)
	return scanSummary(row)
}

func (r *SummaryRepository) AdjustVotes(ctx context.Context, id string, delta int64) (*domain.Summary, error) {
	updated, err := scanSummary(r.db.QueryRowContext(ctx, adjustVotesQuery("summaries", summaryColumns), delta, id, delta))
	if err != nil {
		return nil, missedVote(ctx, r.db, "summaries", id, err)
	}
	return updated, nil
}

func scanSummary(row scanner) (*domain.Summary, error) {
	var summary domain.Summary
	if err := row.Scan(
		&summary.ID,
		&summary.CourseID,
		&summary.CourseCode,
		&summary.AuthorID,
		&summary.AuthorUsername,
		&summary.Title,
		&summary.Content,
		&summary.AttachmentKey,
		&summary.Votes,
		timestamp{&summary.CreatedAt},
		timestamp{&summary.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	return &summary, nil
}
