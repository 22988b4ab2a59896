package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

// CourseResolver maps a client-supplied course reference, either a course id or a
// course code, onto exactly one stored course.
type CourseResolver struct {
	courses repository.CourseRepository
}

func NewCourseResolver(courses repository.CourseRepository) *CourseResolver {
	return &CourseResolver{courses: courses}
}

// Resolve tries an id lookup first when ref is a well-formed id, then a trimmed,
// case-insensitive match on the whole course code. A reference that matches nothing
// yields ErrInvalidCourseReference; store failures are returned unchanged.
func (r *CourseResolver) Resolve(ctx context.Context, ref string) (*domain.Course, error) {
	if id, err := uuid.Parse(ref); err == nil {
		course, err := r.courses.GetByID(ctx, id.String())
		if err == nil {
			return course, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	code := strings.TrimSpace(ref)
	if code == "" {
		return nil, ErrInvalidCourseReference
	}

	course, err := r.courses.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCourseReference
		}
		return nil, err
	}
	return course, nil
}
