package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

const problemColumns = `id, course_id, author_id, title, description, tags, difficulty, exam_type, votes, is_verified, is_flagged, created_at, updated_at`

type ProblemRepository struct {
	db *sql.DB
}

func NewProblemRepository(db *sql.DB) repository.ProblemRepository {
	return &ProblemRepository{db: db}
}

func (r *ProblemRepository) Create(ctx context.Context, problem *domain.Problem) error {
	if problem.ID == "" {
		problem.ID = uuid.NewString()
	}
	problem.CreatedAt = stamp(problem.CreatedAt)
	problem.UpdatedAt = problem.CreatedAt

	_, err := r.db.ExecContext(ctx, `
INSERT INTO problems (`+problemColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		problem.ID,
		problem.CourseID,
		problem.AuthorID,
		problem.Title,
		problem.Description,
		encodeTags(problem.Tags),
		problem.Difficulty,
		problem.ExamType,
		problem.Votes,
		problem.IsVerified,
		problem.IsFlagged,
		problem.CreatedAt,
		problem.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError("problem", err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert problem: %w", err)
	}
	return nil
}

func (r *ProblemRepository) Get(ctx context.Context, id string) (*domain.Problem, error) {
	return scanProblem(r.db.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = ?`, id))
}

// List returns problems newest first; an empty courseID lists every course.
func (r *ProblemRepository) List(ctx context.Context, courseID string) ([]domain.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems`
	var args []any
	if courseID != "" {
		query += ` WHERE course_id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	return collectProblems(rows)
}

func (r *ProblemRepository) Search(ctx context.Context, query string, limit int) ([]domain.Problem, error) {
	pattern := likePattern(strings.TrimSpace(query))
	rows, err := r.db.QueryContext(ctx, `SELECT `+problemColumns+` FROM problems
WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\'
ORDER BY votes DESC, created_at DESC
LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search problems: %w", err)
	}
	return collectProblems(rows)
}

func (r *ProblemRepository) AdjustVotes(ctx context.Context, id string, delta int64) (*domain.Problem, error) {
	updated, err := scanProblem(r.db.QueryRowContext(ctx, adjustVotesQuery("problems", problemColumns), delta, id, delta))
	if err != nil {
		return nil, missedVote(ctx, r.db, "problems", id, err)
	}
	return updated, nil
}

func collectProblems(rows *sql.Rows) ([]domain.Problem, error) {
	defer rows.Close()

	problems := []domain.Problem{}
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		problems = append(problems, *problem)
	}
	return problems, rows.Err()
}

func scanProblem(row scanner) (*domain.Problem, error) {
	var (
		problem domain.Problem
		tags    string
	)
	if err := row.Scan(
		&problem.ID,
		&problem.CourseID,
		&problem.AuthorID,
		&problem.Title,
		&problem.Description,
		&tags,
		&problem.Difficulty,
		&problem.ExamType,
		&problem.Votes,
		&problem.IsVerified,
		&problem.IsFlagged,
		timestamp{&problem.CreatedAt},
		timestamp{&problem.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan problem: %w", err)
	}
	problem.Tags = decodeTags(tags)
	return &problem, nil
}
