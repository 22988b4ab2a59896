package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"uarchive/internal/auth"
	"uarchive/internal/domain"
	"uarchive/internal/metrics"
)

const principalKey = "principal"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger logs one line per request and records latency metrics.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(start)
		metrics.HTTPRequestDurationSeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(latency.Seconds())

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": latency.String(),
			"client":  c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}

// requireAuth resolves the bearer token into a principal or aborts with 401.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := h.identity.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			metrics.AuthFailuresTotal.WithLabelValues(authFailureReason(err)).Inc()
			h.writeError(c, err)
			return
		}
		c.Set(principalKey, account)
		c.Next()
	}
}

func principal(c *gin.Context) (*domain.Account, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	account, ok := v.(*domain.Account)
	return account, ok && account != nil
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingAuth):
		return "missing"
	case errors.Is(err, auth.ErrInvalidScheme):
		return "scheme"
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, auth.ErrAccountNotFound):
		return "unknown_account"
	}
	return "error"
}
