package service

import (
	"context"
	"errors"
	"strings"

	"uarchive/internal/clock"
	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

// CourseInput carries the fields accepted when creating a course.
type CourseInput struct {
	Code        string   `validate:"required,max=32"`
	Name        string   `validate:"required,max=200"`
	Department  string   `validate:"max=120"`
	Professor   string   `validate:"max=120"`
	Semester    string   `validate:"max=32"`
	Year        *int     `validate:"omitempty,min=1900,max=2200"`
	Tags        []string `validate:"max=20,dive,max=40"`
	Description string   `validate:"max=4000"`
}

// CourseService manages the course catalogue.
type CourseService interface {
	Create(ctx context.Context, in CourseInput) (*domain.Course, error)
	List(ctx context.Context, filter repository.CourseFilter) ([]domain.Course, error)
	Get(ctx context.Context, ref string) (*domain.Course, error)
}

type courseService struct {
	courses  repository.CourseRepository
	resolver *CourseResolver
	clock    clock.Clock
}

func NewCourseService(courses repository.CourseRepository, resolver *CourseResolver, clk clock.Clock) CourseService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &courseService{courses: courses, resolver: resolver, clock: clk}
}

func (s *courseService) Create(ctx context.Context, in CourseInput) (*domain.Course, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Tags = normalizeTags(in.Tags)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	course := &domain.Course{
		Code:        in.Code,
		Name:        in.Name,
		Department:  strings.TrimSpace(in.Department),
		Professor:   strings.TrimSpace(in.Professor),
		Semester:    strings.TrimSpace(in.Semester),
		Year:        in.Year,
		Tags:        in.Tags,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateCourse
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, filter repository.CourseFilter) ([]domain.Course, error) {
	return s.courses.List(ctx, filter)
}

// Get accepts the same references as content creation: an id or a course code.
func (s *courseService) Get(ctx context.Context, ref string) (*domain.Course, error) {
	course, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrInvalidCourseReference) {
			return nil, notFound("course")
		}
		return nil, err
	}
	return course, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
