package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	UserIDHeader    = "X-User-ID"

	requestIDKey = "request_id"
	userIDKey    = "user_id"
)

// AttachRequestContext tags every request with a request id and the caller's user id
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		if userID := strings.TrimSpace(c.GetHeader(UserIDHeader)); userID != "" && len(userID) <= 128 {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

// RequestID returns the id assigned by AttachRequestContext
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// UserID returns the caller's user id, or "" for anonymous requests
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
