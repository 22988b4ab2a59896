package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uarchive/internal/service"
)

type createProblemRequest struct {
	// Course is a course id or a course code.
	Course      string   `json:"course" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags"`
	Difficulty  string   `json:"difficulty"`
	ExamType    string   `json:"exam_type"`
}

type createCommentRequest struct {
	ProblemID string `json:"problem_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

type createSummaryRequest struct {
	Course  string `json:"course" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *Handler) listProblems(c *gin.Context) {
	problems, err := h.problems.List(c.Request.Context(), c.Query("course"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderList(problems, problemToResponse))
}

func (h *Handler) createProblem(c *gin.Context) {
	author, _ := principal(c)

	var req createProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	problem, err := h.problems.Create(c.Request.Context(), author, service.ProblemInput{
		CourseRef:   req.Course,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Difficulty:  req.Difficulty,
		ExamType:    req.ExamType,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, problemToResponse(problem))
}

func (h *Handler) getProblem(c *gin.Context) {
	problem, err := h.problems.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, problemToResponse(problem))
}

func (h *Handler) listComments(c *gin.Context) {
	comments, err := h.comments.ListByProblem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderList(comments, commentToResponse))
}

func (h *Handler) createComment(c *gin.Context) {
	author, _ := principal(c)

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), author, service.CommentInput{
		ProblemID: req.ProblemID,
		Content:   req.Content,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, commentToResponse(comment))
}

func (h *Handler) listSummaries(c *gin.Context) {
	summaries, err := h.summaries.List(c.Request.Context(), c.Query("course"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderList(summaries, summaryToResponse))
}

func (h *Handler) createSummary(c *gin.Context) {
	author, _ := principal(c)

	var req createSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	summary, err := h.summaries.Create(c.Request.Context(), author, service.SummaryInput{
		CourseRef: req.Course,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summaryToResponse(summary))
}

func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.summaries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryToResponse(summary))
}

func (h *Handler) uploadAttachment(c *gin.Context) {
	author, _ := principal(c)

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, errors.New("multipart field \"file\" is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	summary, err := h.summaries.AttachFile(c.Request.Context(), author, c.Param("id"), service.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryToResponse(summary))
}

func (h *Handler) attachmentURL(c *gin.Context) {
	url, err := h.summaries.AttachmentURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) searchAll(c *gin.Context) {
	result, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{
		Courses:  renderList(result.Courses, courseToResponse),
		Problems: renderList(result.Problems, problemToResponse),
	})
}
