package repository

import (
	"context"

	"uarchive/internal/domain"
)

// VoteStore applies a signed delta to the vote counter of a single record in one
// statement and returns the record as it is after the update.
type VoteStore[T any] interface {
	AdjustVotes(ctx context.Context, id string, delta int64) (*T, error)
}

// ProblemRepository persists problems.
type ProblemRepository interface {
	VoteStore[domain.Problem]
	Create(ctx context.Context, problem *domain.Problem) error
	Get(ctx context.Context, id string) (*domain.Problem, error)
	List(ctx context.Context, courseID string) ([]domain.Problem, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Problem, error)
}

// CommentRepository persists comments attached to problems.
type CommentRepository interface {
	VoteStore[domain.Comment]
	Create(ctx context.Context, comment *domain.Comment) error
	Get(ctx context.Context, id string) (*domain.Comment, error)
	ListByProblem(ctx context.Context, problemID string) ([]domain.Comment, error)
}

// SummaryRepository persists course summaries.
type SummaryRepository interface {
	VoteStore[domain.Summary]
	Create(ctx context.Context, summary *domain.Summary) error
	Get(ctx context.Context, id string) (*domain.Summary, error)
	List(ctx context.Context, courseID string) ([]domain.Summary, error)
	SetAttachment(ctx context.Context, id, key string) (*domain.Summary, error)
}
