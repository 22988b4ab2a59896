package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"uarchive/internal/auth"
	"uarchive/internal/clock"
	"uarchive/internal/domain"
	"uarchive/internal/repository"
	"uarchive/internal/repository/sqlite"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clock    *clock.MockClock
	users    repository.UserRepository
	courses  repository.CourseRepository
	problems repository.ProblemRepository
	comments repository.CommentRepository
	summary  repository.SummaryRepository
	resolver *CourseResolver
	tokens   *auth.TokenService
	hasher   auth.Hasher
	logger   logrus.FieldLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "uarchive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = sqlite.Migrate(context.Background(), db)
	require.NoError(t, err)

	clk := clock.NewMockClock(epoch)
	courses := sqlite.NewCourseRepository(db)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return &fixture{
		clock:    clk,
		users:    sqlite.NewUserRepository(db),
		courses:  courses,
		problems: sqlite.NewProblemRepository(db),
		comments: sqlite.NewCommentRepository(db),
		summary:  sqlite.NewSummaryRepository(db),
		resolver: NewCourseResolver(courses),
		tokens:   auth.NewTokenService("test-secret", time.Hour, clk),
		hasher:   auth.NewPasswordHasher(auth.Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}),
		logger:   logger,
	}
}

func (f *fixture) userService() UserService {
	return NewUserService(f.users, f.hasher, f.tokens, f.clock)
}

func (f *fixture) register(t *testing.T, username string) *domain.Account {
	t.Helper()
	account, err := f.userService().Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.edu",
		Password: "secret123",
	})
	require.NoError(t, err)
	return account
}

func (f *fixture) course(t *testing.T, code string) *domain.Course {
	t.Helper()
	course, err := NewCourseService(f.courses, f.resolver, f.clock).Create(context.Background(), CourseInput{
		Code: code,
		Name: "Course " + code,
	})
	require.NoError(t, err)
	return course
}
