package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"uarchive/internal/clock"
	"uarchive/internal/domain"
	"uarchive/internal/repository"
	"uarchive/internal/storage"
)

// SummaryInput carries the fields accepted when posting a course summary.
type SummaryInput struct {
	CourseRef string `validate:"required"`
	Title     string `validate:"required,max=200"`
	Content   string `validate:"required,max=50000"`
}

// Attachment is a file supplied alongside a summary.
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AttachmentOptions places attachments in the bucket and bounds presigned links.
type AttachmentOptions struct {
	KeyPrefix string
	URLTTL    time.Duration
}

// SummaryService manages course summaries and their optional attachments.
type SummaryService interface {
	Create(ctx context.Context, author *domain.Account, in SummaryInput) (*domain.Summary, error)
	List(ctx context.Context, courseRef string) ([]domain.Summary, error)
	Get(ctx context.Context, id string) (*domain.Summary, error)
	AttachFile(ctx context.Context, author *domain.Account, summaryID string, file Attachment) (*domain.Summary, error)
	AttachmentURL(ctx context.Context, summaryID string) (string, error)
}

type summaryService struct {
	summaries repository.SummaryRepository
	users     repository.UserRepository
	resolver  *CourseResolver
	storage   storage.Service
	opts      AttachmentOptions
	clock     clock.Clock
	logger    logrus.FieldLogger
}

// NewSummaryService builds the summary service. A nil store disables attachments.
func NewSummaryService(
	summaries repository.SummaryRepository,
	users repository.UserRepository,
	resolver *CourseResolver,
	store storage.Service,
	opts AttachmentOptions,
	clk clock.Clock,
	logger logrus.FieldLogger,
) SummaryService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if logger == nil {
		logger = logrus.New()
	}
	if opts.URLTTL <= 0 {
		opts.URLTTL = 15 * time.Minute
	}
	return &summaryService{
		summaries: summaries,
		users:     users,
		resolver:  resolver,
		storage:   store,
		opts:      opts,
		clock:     clk,
		logger:    logger,
	}
}

func (s *summaryService) Create(ctx context.Context, author *domain.Account, in SummaryInput) (*domain.Summary, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	course, err := s.resolver.Resolve(ctx, in.CourseRef)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		CourseID:       course.ID,
		CourseCode:     course.Code,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Title:          in.Title,
		Content:        in.Content,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.summaries.Create(ctx, summary); err != nil {
		return nil, err
	}

	if err := s.users.IncrementContributions(ctx, author.ID, 1); err != nil {
		s.logger.WithError(err).WithField("user_id", author.ID).Warn("increment contribution count")
	}
	return summary, nil
}

// List returns summaries newest first; an unknown course reference yields an empty list.
func (s *summaryService) List(ctx context.Context, courseRef string) ([]domain.Summary, error) {
	if strings.TrimSpace(courseRef) == "" {
		return s.summaries.List(ctx, "")
	}
	course, err := s.resolver.Resolve(ctx, courseRef)
	if err != nil {
		if errors.Is(err, ErrInvalidCourseReference) {
			return []domain.Summary{}, nil
		}
		return nil, err
	}
	return s.summaries.List(ctx, course.ID)
}

func (s *summaryService) Get(ctx context.Context, id string) (*domain.Summary, error) {
	summary, err := s.summaries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("summary")
		}
		return nil, err
	}
	return summary, nil
}

// AttachFile replaces the attachment of a summary owned by author. Earlier uploads
// under the summary's prefix are removed first.
func (s *summaryService) AttachFile(ctx context.Context, author *domain.Account, summaryID string, file Attachment) (*domain.Summary, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	summary, err := s.Get(ctx, summaryID)
	if err != nil {
		return nil, err
	}
	if summary.AuthorID != author.ID {
		return nil, ErrForbidden
	}

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(file.Filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}

	prefix := s.summaryPrefix(summary.ID)
	if err := s.storage.DeletePrefix(ctx, prefix); err != nil {
		return nil, fmt.Errorf("clear previous attachment: %w", err)
	}

	key, err := s.storage.Upload(ctx, prefix+name, file.Body, file.ContentType)
	if err != nil {
		return nil, err
	}

	updated, err := s.summaries.SetAttachment(ctx, summary.ID, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("summary")
		}
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"summary_id": summary.ID, "key": key}).Info("summary attachment stored")
	return updated, nil
}

func (s *summaryService) AttachmentURL(ctx context.Context, summaryID string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageDisabled
	}

	summary, err := s.Get(ctx, summaryID)
	if err != nil {
		return "", err
	}
	if summary.AttachmentKey == "" {
		return "", notFound("attachment")
	}
	return s.storage.PresignGet(ctx, summary.AttachmentKey, s.opts.URLTTL)
}

func (s *summaryService) summaryPrefix(id string) string {
	prefix := strings.Trim(s.opts.KeyPrefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return prefix + "summaries/" + id + "/"
}
