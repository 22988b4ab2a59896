package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"uarchive/internal/service"
)

type voteRequest struct {
	Delta *int64 `json:"delta"`
}

// voteHandler adjusts votes on one kind of record. An empty body counts as +1.
func voteHandler[T, R any](h *Handler, ledger *service.VoteLedger[T], render func(*T) R) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req voteRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}
		delta := int64(1)
		if req.Delta != nil {
			delta = *req.Delta
		}

		record, err := ledger.Adjust(c.Request.Context(), c.Param("id"), delta)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, render(record))
	}
}
