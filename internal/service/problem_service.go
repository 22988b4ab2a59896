package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"uarchive/internal/clock"
	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

// ProblemInput carries the fields accepted when posting a problem.
type ProblemInput struct {
	CourseRef   string   `validate:"required"`
	Title       string   `validate:"required,max=200"`
	Description string   `validate:"required,max=20000"`
	Tags        []string `validate:"max=20,dive,max=40"`
	Difficulty  string   `validate:"omitempty,oneof=easy medium hard"`
	ExamType    string   `validate:"max=40"`
}

// ProblemService coordinates problem creation and lookup.
type ProblemService interface {
	Create(ctx context.Context, author *domain.Account, in ProblemInput) (*domain.Problem, error)
	List(ctx context.Context, courseRef string) ([]domain.Problem, error)
	Get(ctx context.Context, id string) (*domain.Problem, error)
}

type problemService struct {
	problems repository.ProblemRepository
	courses  repository.CourseRepository
	users    repository.UserRepository
	resolver *CourseResolver
	clock    clock.Clock
	logger   logrus.FieldLogger
}

func NewProblemService(
	problems repository.ProblemRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	resolver *CourseResolver,
	clk clock.Clock,
	logger logrus.FieldLogger,
) ProblemService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &problemService{
		problems: problems,
		courses:  courses,
		users:    users,
		resolver: resolver,
		clock:    clk,
		logger:   logger,
	}
}

func (s *problemService) Create(ctx context.Context, author *domain.Account, in ProblemInput) (*domain.Problem, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Difficulty = strings.ToLower(strings.TrimSpace(in.Difficulty))
	in.Tags = normalizeTags(in.Tags)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	course, err := s.resolver.Resolve(ctx, in.CourseRef)
	if err != nil {
		return nil, err
	}

	problem := &domain.Problem{
		CourseID:    course.ID,
		AuthorID:    author.ID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
		Difficulty:  in.Difficulty,
		ExamType:    strings.TrimSpace(in.ExamType),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.problems.Create(ctx, problem); err != nil {
		return nil, err
	}

	// counters are side effects of a post that already exists; a failure is logged, not returned
	if err := s.courses.IncrementProblemCount(ctx, course.ID, 1); err != nil {
		s.logger.WithError(err).WithField("course_id", course.ID).Warn("increment course problem count")
	}
	if err := s.users.IncrementContributions(ctx, author.ID, 1); err != nil {
		s.logger.WithError(err).WithField("user_id", author.ID).Warn("increment contribution count")
	}
	return problem, nil
}

// List returns problems newest first. An empty reference lists all problems; a
// reference that matches no course yields an empty list.
func (s *problemService) List(ctx context.Context, courseRef string) ([]domain.Problem, error) {
	if strings.TrimSpace(courseRef) == "" {
		return s.problems.List(ctx, "")
	}
	course, err := s.resolver.Resolve(ctx, courseRef)
	if err != nil {
		if errors.Is(err, ErrInvalidCourseReference) {
			return []domain.Problem{}, nil
		}
		return nil, err
	}
	return s.problems.List(ctx, course.ID)
}

func (s *problemService) Get(ctx context.Context, id string) (*domain.Problem, error) {
	problem, err := s.problems.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("problem")
		}
		return nil, err
	}
	return problem, nil
}
