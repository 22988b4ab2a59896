package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

const commentColumns = `id, problem_id, author_id, author_username, content, votes, created_at, updated_at`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = stamp(comment.CreatedAt)
	comment.UpdatedAt = comment.CreatedAt

	_, err := r.db.ExecContext(ctx, `
INSERT INTO comments (`+commentColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.ProblemID,
		comment.AuthorID,
		comment.AuthorUsername,
		comment.Content,
		comment.Votes,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError("comment", err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id string) (*domain.Comment, error) {
	return scanComment(r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
}

func (r *CommentRepository) ListByProblem(ctx context.Context, problemID string) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+commentColumns+`
FROM comments
WHERE problem_id = ?
ORDER BY created_at DESC, id DESC`, problemID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) AdjustVotes(ctx context.Context, id string, delta int64) (*domain.Comment, error) {
	updated, err := scanComment(r.db.QueryRowContext(ctx, adjustVotesQuery("comments", commentColumns), delta, id, delta))
	if err != nil {
		return nil, missedVote(ctx, r.db, "comments", id, err)
	}
	return updated, nil
}

func scanComment(row scanner) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.ProblemID,
		&comment.AuthorID,
		&comment.AuthorUsername,
		&comment.Content,
		&comment.Votes,
		timestamp{&comment.CreatedAt},
		timestamp{&comment.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &comment, nil
}
