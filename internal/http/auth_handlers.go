package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"uarchive/internal/service"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Degree      string `json:"degree"`
	YearOfStudy *int   `json:"year_of_study"`
}

type loginRequest struct {
	// Username also accepts an email address.
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type preferencesRequest struct {
	Preferences []string `json:"preferences"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Degree:      req.Degree,
		YearOfStudy: req.YearOfStudy,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(account, true))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	result, err := h.users.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginToResponse(result.Token, result.Account))
}

func (h *Handler) me(c *gin.Context) {
	account, ok := principal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, userToResponse(account, true))
}

func (h *Handler) getUser(c *gin.Context) {
	account, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(account, false))
}

func (h *Handler) setPreferences(c *gin.Context) {
	account, ok := principal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.users.SetPreferences(c.Request.Context(), account.ID, service.PreferencesInput{
		Preferences: req.Preferences,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(updated, true))
}
