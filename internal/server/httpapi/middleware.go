package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxKeyUserID    = "userID"
	ctxKeyRequestID = "requestID"
)

// RequestID tags every request with a correlation id, honoring one supplied
// by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (h *Handlers) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.Info(c.Request.Context(), "request",
			"request_id", c.GetString(ctxKeyRequestID),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// authRequired extracts the Bearer token, validates it and stores the user
// id in the gin context for downstream handlers.
func (h *Handlers) authRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Error: "missing bearer token",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	userID, err := h.users.ParseAccessToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Error: "invalid or expired token",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	c.Set(ctxKeyUserID, userID)
	c.Next()
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}
