package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics in downstream handlers, logs the
// panic with its stack trace and answers 500 if nothing was written yet.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", c.GetString(requestIDKey)),
				)
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
