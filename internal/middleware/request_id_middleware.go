package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

type requestIDContextKey struct{}

// RequestIDMiddleware ensures every request has a request ID. An incoming
// X-Request-Id header is reused, otherwise a UUID is generated. The ID is
// stored in the Gin context, the request context, and echoed in the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDContextKey{}, rid))
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID extracts the request ID from a request context.
func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return rid
	}
	return ""
}
