package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"uarchive/internal/repository"
	"uarchive/internal/service"
)

type createCourseRequest struct {
	Code        string   `json:"code" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Department  string   `json:"department"`
	Professor   string   `json:"professor"`
	Semester    string   `json:"semester"`
	Year        *int     `json:"year"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// listCourses accepts optional code and number query parameters, as in
// /api/courses?code=CPSC&number=413.
func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), repository.CourseFilter{
		Subject: c.Query("code"),
		Number:  c.Query("number"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderList(courses, courseToResponse))
}

func (h *Handler) createCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	course, err := h.courses.Create(c.Request.Context(), service.CourseInput{
		Code:        req.Code,
		Name:        req.Name,
		Department:  req.Department,
		Professor:   req.Professor,
		Semester:    req.Semester,
		Year:        req.Year,
		Tags:        req.Tags,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, courseToResponse(course))
}

func (h *Handler) getCourse(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseToResponse(course))
}
