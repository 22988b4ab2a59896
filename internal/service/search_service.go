package service

import (
	"context"
	"strings"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

const (
	searchCourseLimit  = 10
	searchProblemLimit = 20
)

// SearchService runs substring searches across courses and problems.
type SearchService interface {
	Search(ctx context.Context, query string) (*domain.SearchResult, error)
}

type searchService struct {
	courses  repository.CourseRepository
	problems repository.ProblemRepository
}

func NewSearchService(courses repository.CourseRepository, problems repository.ProblemRepository) SearchService {
	return &searchService{courses: courses, problems: problems}
}

func (s *searchService) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.SearchResult{Courses: []domain.Course{}, Problems: []domain.Problem{}}, nil
	}

	courses, err := s.courses.Search(ctx, query, searchCourseLimit)
	if err != nil {
		return nil, err
	}
	problems, err := s.problems.Search(ctx, query, searchProblemLimit)
	if err != nil {
		return nil, err
	}
	return &domain.SearchResult{Courses: courses, Problems: problems}, nil
}
