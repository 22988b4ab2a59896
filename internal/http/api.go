package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"uarchive/internal/domain"
	"uarchive/internal/service"
)

// PrincipalResolver authenticates the Authorization header of a request.
type PrincipalResolver interface {
	Resolve(ctx context.Context, header string) (*domain.Account, error)
}

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Users           service.UserService
	Courses         service.CourseService
	Problems        service.ProblemService
	Comments        service.CommentService
	Summaries       service.SummaryService
	Search          service.SearchService
	Identity        PrincipalResolver
	ProblemVotes    *service.VoteLedger[domain.Problem]
	CommentVotes    *service.VoteLedger[domain.Comment]
	SummaryVotes    *service.VoteLedger[domain.Summary]
	RequireVoteAuth bool
	Logger          logrus.FieldLogger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users           service.UserService
	courses         service.CourseService
	problems        service.ProblemService
	comments        service.CommentService
	summaries       service.SummaryService
	search          service.SearchService
	identity        PrincipalResolver
	problemVotes    *service.VoteLedger[domain.Problem]
	commentVotes    *service.VoteLedger[domain.Comment]
	summaryVotes    *service.VoteLedger[domain.Summary]
	requireVoteAuth bool
	logger          logrus.FieldLogger
}

func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:           deps.Users,
		courses:         deps.Courses,
		problems:        deps.Problems,
		comments:        deps.Comments,
		summaries:       deps.Summaries,
		search:          deps.Search,
		identity:        deps.Identity,
		problemVotes:    deps.ProblemVotes,
		commentVotes:    deps.CommentVotes,
		summaryVotes:    deps.SummaryVotes,
		requireVoteAuth: deps.RequireVoteAuth,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := h.requireAuth()
	voteGuard := func(c *gin.Context) { c.Next() }
	if h.requireVoteAuth {
		voteGuard = authed
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/me", authed, h.me)
		api.GET("/users/me", authed, h.me)
		api.POST("/users/me/preferences", authed, h.setPreferences)
		api.GET("/users/:id", h.getUser)

		api.GET("/courses", h.listCourses)
		api.POST("/courses", authed, h.createCourse)
		api.GET("/courses/:ref", h.getCourse)

		api.GET("/problems", h.listProblems)
		api.POST("/problems", authed, h.createProblem)
		api.GET("/problems/:id", h.getProblem)
		api.POST("/problems/:id/vote", voteGuard, voteHandler(h, h.problemVotes, problemToResponse))

		api.GET("/comments/problem/:id", h.listComments)
		api.POST("/comments", authed, h.createComment)
		api.POST("/comments/:id/vote", voteGuard, voteHandler(h, h.commentVotes, commentToResponse))

		api.GET("/summaries", h.listSummaries)
		api.POST("/summaries", authed, h.createSummary)
		api.GET("/summaries/:id", h.getSummary)
		api.POST("/summaries/:id/vote", voteGuard, voteHandler(h, h.summaryVotes, summaryToResponse))
		api.PUT("/summaries/:id/attachment", authed, h.uploadAttachment)
		api.GET("/summaries/:id/attachment", h.attachmentURL)

		api.GET("/search", h.searchAll)
	}
}
