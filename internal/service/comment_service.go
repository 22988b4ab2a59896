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

// CommentInput carries the fields accepted when responding to a problem.
type CommentInput struct {
	ProblemID string `validate:"required"`
	Content   string `validate:"required,max=20000"`
}

// CommentService manages responses posted under problems.
type CommentService interface {
	Create(ctx context.Context, author *domain.Account, in CommentInput) (*domain.Comment, error)
	ListByProblem(ctx context.Context, problemID string) ([]domain.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	problems repository.ProblemRepository
	users    repository.UserRepository
	clock    clock.Clock
	logger   logrus.FieldLogger
}

func NewCommentService(
	comments repository.CommentRepository,
	problems repository.ProblemRepository,
	users repository.UserRepository,
	clk clock.Clock,
	logger logrus.FieldLogger,
) CommentService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &commentService{
		comments: comments,
		problems: problems,
		users:    users,
		clock:    clk,
		logger:   logger,
	}
}

func (s *commentService) Create(ctx context.Context, author *domain.Account, in CommentInput) (*domain.Comment, error) {
	in.ProblemID = strings.TrimSpace(in.ProblemID)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := s.problems.Get(ctx, in.ProblemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("problem")
		}
		return nil, err
	}

	comment := &domain.Comment{
		ProblemID:      in.ProblemID,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Content:        in.Content,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.users.IncrementContributions(ctx, author.ID, 1); err != nil {
		s.logger.WithError(err).WithField("user_id", author.ID).Warn("increment contribution count")
	}
	return comment, nil
}

func (s *commentService) ListByProblem(ctx context.Context, problemID string) ([]domain.Comment, error) {
	return s.comments.ListByProblem(ctx, strings.TrimSpace(problemID))
}
