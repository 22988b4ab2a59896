package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uarchive/internal/auth"
	"uarchive/internal/clock"
	"uarchive/internal/domain"
	"uarchive/internal/repository/sqlite"
	"uarchive/internal/service"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string]string
}

func (s *memoryStorage) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = string(data)
	return key, nil
}

func (s *memoryStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example/" + key, nil
}

func (s *memoryStorage) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}

type testServer struct {
	router  *gin.Engine
	clock   *clock.MockClock
	storage *memoryStorage
}

type serverOption func(*Deps)

func openVoting(d *Deps) { d.RequireVoteAuth = false }

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "uarchive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = sqlite.Migrate(context.Background(), db)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	clk := clock.NewMockClock(epoch)
	users := sqlite.NewUserRepository(db)
	courses := sqlite.NewCourseRepository(db)
	problems := sqlite.NewProblemRepository(db)
	comments := sqlite.NewCommentRepository(db)
	summaries := sqlite.NewSummaryRepository(db)
	hasher := auth.NewPasswordHasher(auth.Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1})
	tokens := auth.NewTokenService("test-secret", time.Hour, clk)
	resolver := service.NewCourseResolver(courses)
	store := &memoryStorage{objects: map[string]string{}}

	deps := Deps{
		Users:           service.NewUserService(users, hasher, tokens, clk),
		Courses:         service.NewCourseService(courses, resolver, clk),
		Problems:        service.NewProblemService(problems, courses, users, resolver, clk, logger),
		Comments:        service.NewCommentService(comments, problems, users, clk, logger),
		Summaries:       service.NewSummaryService(summaries, users, resolver, store, service.AttachmentOptions{KeyPrefix: "test"}, clk, logger),
		Search:          service.NewSearchService(courses, problems),
		Identity:        auth.NewIdentityResolver(tokens, users),
		ProblemVotes:    service.NewVoteLedger[domain.Problem]("problem", problems),
		CommentVotes:    service.NewVoteLedger[domain.Comment]("comment", comments),
		SummaryVotes:    service.NewVoteLedger[domain.Summary]("summary", summaries),
		RequireVoteAuth: true,
		Logger:          logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router := gin.New()
	NewHandler(deps).RegisterRoutes(router)
	return &testServer{router: router, clock: clk, storage: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@x.edu",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[LoginResponse](t, rec).AccessToken
}

func TestRegisterLoginMeAndExpiry(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@x.edu",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[UserResponse](t, rec)
	assert.Equal(t, "alice", registered.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[LoginResponse](t, rec)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, epoch.Add(time.Hour).Format(time.RFC3339), login.ExpiresAt)

	for _, path := range []string{"/api/auth/me", "/api/users/me"} {
		rec = srv.do(t, http.MethodGet, path, login.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		me := decode[UserResponse](t, rec)
		assert.Equal(t, "alice", me.Username)
		assert.Equal(t, registered.ID, me.ID)
	}

	srv.clock.Advance(time.Hour + time.Second)
	rec = srv.do(t, http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestPreferencesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "alice")

	rec := srv.do(t, http.MethodPost, "/api/users/me/preferences", "", gin.H{"preferences": []string{"CPSC 413"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/users/me/preferences", token, gin.H{"preferences": []string{"CPSC 413", " graphs ", "Graphs"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"CPSC 413", "graphs"}, decode[UserResponse](t, rec).Preferences)

	rec = srv.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[UserResponse](t, rec)
	assert.Equal(t, []string{"CPSC 413", "graphs"}, me.Preferences)

	rec = srv.do(t, http.MethodGet, "/api/users/"+me.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "preferences")

	rec = srv.do(t, http.MethodPost, "/api/users/me/preferences", token, gin.H{"preferences": "graphs"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRepeatedRegistrationsAreNotThrottled(t *testing.T) {
	srv := newTestServer(t)

	for i := range 15 {
		rec := srv.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"username": fmt.Sprintf("student%02d", i),
			"email":    fmt.Sprintf("student%02d@x.edu", i),
			"password": "secret123",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

func TestAuthErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "alice")

	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@x.edu", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already exists")

	rec = srv.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := rec.Body.String()

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "nobody", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPassword, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@x.edu", "password": "secret123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	basic := httptest.NewRecorder()
	srv.router.ServeHTTP(basic, req)
	assert.Equal(t, http.StatusUnauthorized, basic.Code)
}

func TestCourseAndContentFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "alice")

	rec := srv.do(t, http.MethodPost, "/api/courses", "", gin.H{"code": "CPSC 413", "name": "Algorithms"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/courses", token, gin.H{"code": "CPSC 413", "name": "Algorithms", "tags": []string{"proofs"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	course := decode[CourseResponse](t, rec)

	rec = srv.do(t, http.MethodPost, "/api/courses", token, gin.H{"code": "cpsc 413", "name": "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/courses/cpsc%20413", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, course.ID, decode[CourseResponse](t, rec).ID)

	rec = srv.do(t, http.MethodGet, "/api/courses/"+course.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/courses/nonexistent", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/courses", token, gin.H{"code": "MATH 271", "name": "Discrete"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/courses?code=cpsc&number=413", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filtered := decode[[]CourseResponse](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, course.ID, filtered[0].ID)

	rec = srv.do(t, http.MethodGet, "/api/courses?number=999", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/problems", token, gin.H{"course": "nonexistent", "title": "t", "description": "d"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid course identifier")

	rec = srv.do(t, http.MethodPost, "/api/problems", token, gin.H{
		"course": "  CPSC 413  ", "title": "Interval scheduling", "description": "Prove it", "difficulty": "hard",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	problem := decode[ProblemResponse](t, rec)
	assert.Equal(t, course.ID, problem.CourseID)

	rec = srv.do(t, http.MethodGet, "/api/problems?course=cpsc%20413", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProblemResponse](t, rec), 1)

	rec = srv.do(t, http.MethodGet, "/api/courses/"+course.ID, "", nil)
	assert.Equal(t, int64(1), decode[CourseResponse](t, rec).ProblemCount)

	rec = srv.do(t, http.MethodPost, "/api/comments", token, gin.H{"problem_id": problem.ID, "content": "Exchange argument"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[CommentResponse](t, rec)
	assert.Equal(t, "alice", comment.AuthorUsername)

	rec = srv.do(t, http.MethodGet, "/api/comments/problem/"+problem.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]CommentResponse](t, rec), 1)

	rec = srv.do(t, http.MethodGet, "/api/summaries?course=nonexistent", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/search?q=interval", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[SearchResponse](t, rec)
	assert.Empty(t, found.Courses)
	assert.Len(t, found.Problems, 1)

	rec = srv.do(t, http.MethodGet, "/api/users/"+problem.AuthorID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[UserResponse](t, rec)
	assert.Equal(t, int64(2), profile.ContributionCount)
	assert.Empty(t, profile.Email)
}

func TestVotingRequiresAuthByDefault(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "alice")
	problemID := seedProblem(t, srv, token)

	rec := srv.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", "", gin.H{"delta": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), decode[ProblemResponse](t, rec).Votes)

	rec = srv.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", token, gin.H{"delta": -5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(-4), decode[ProblemResponse](t, rec).Votes)

	rec = srv.do(t, http.MethodPost, "/api/problems/missing/vote", token, gin.H{"delta": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", token, gin.H{"delta": "lots"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", token, gin.H{"delta": int64(math.MaxInt64)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(math.MaxInt64-4), decode[ProblemResponse](t, rec).Votes)

	rec = srv.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", token, gin.H{"delta": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/problems/"+problemID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(math.MaxInt64-4), decode[ProblemResponse](t, rec).Votes)

	rec = srv.do(t, http.MethodGet, "/api/problems", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestVotingCanBeOpen(t *testing.T) {
	srv := newTestServer(t, openVoting)
	token := srv.signup(t, "alice")
	problemID := seedProblem(t, srv, token)

	rec := srv.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", "", gin.H{"delta": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3), decode[ProblemResponse](t, rec).Votes)
}

func TestSummaryAttachmentEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "alice")
	intruder := srv.signup(t, "mallory")
	seedProblem(t, srv, token)

	rec := srv.do(t, http.MethodPost, "/api/summaries", token, gin.H{"course": "cpsc 413", "title": "Notes", "content": "Recurrences"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	summary := decode[SummaryResponse](t, rec)
	assert.False(t, summary.HasAttachment)

	rec = srv.do(t, http.MethodGet, "/api/summaries/"+summary.ID+"/attachment", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	upload := func(token string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", "notes.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/summaries/"+summary.ID+"/attachment", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec
	}

	rec = upload(intruder)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = upload(token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[SummaryResponse](t, rec).HasAttachment)
	assert.Equal(t, "%PDF-1.4", srv.storage.objects["test/summaries/"+summary.ID+"/notes.pdf"])

	rec = srv.do(t, http.MethodGet, "/api/summaries/"+summary.ID+"/attachment", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://bucket.example/test/summaries/"+summary.ID+"/notes.pdf", decode[map[string]string](t, rec)["url"])

	rec = srv.do(t, http.MethodPost, "/api/summaries/"+summary.ID+"/vote", token, gin.H{"delta": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[SummaryResponse](t, rec).Votes)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.do(t, http.MethodGet, "/api/auth/me", "", nil)
	rec = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uarchive_auth_failures_total")
	assert.Contains(t, rec.Body.String(), "uarchive_http_request_duration_seconds")

	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	preflight := httptest.NewRecorder()
	srv.router.ServeHTTP(preflight, req)
	assert.Equal(t, http.StatusNoContent, preflight.Code)
	assert.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))
}

func seedProblem(t *testing.T, srv *testServer, token string) string {
	t.Helper()
	rec := srv.do(t, http.MethodPost, "/api/courses", token, gin.H{"code": "CPSC 413", "name": "Algorithms"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/api/problems", token, gin.H{"course": "CPSC 413", "title": "t", "description": "d"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ProblemResponse](t, rec).ID
}
