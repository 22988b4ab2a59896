package repository

import (
	"context"

	"uarchive/internal/domain"
)

// CourseRepository persists courses. GetByCode matches case-insensitively on the whole code.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	GetByCode(ctx context.Context, code string) (*domain.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]domain.Course, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Course, error)
	IncrementProblemCount(ctx context.Context, id string, delta int64) error
}

// CourseFilter narrows a course listing by the subject and number segments of the
// code. Empty fields match everything.
type CourseFilter struct {
	Subject string
	Number  string
}
