package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/middleware"
	"lifelessons-backend-go/internal/models"
)

const internalErrorMessage = "Internal server error"

// respondError maps err onto a status code and writes {message}.
// Unclassified errors are logged and answered with a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
			zap.Error(err),
		)
		c.JSON(status, ErrorResponse{Message: internalErrorMessage})
		return
	}
	message, ok := core.PublicMessage(err)
	if !ok || message == "" {
		message = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{Message: message})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondBindError answers a body that could not be bound to its request struct.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body: " + err.Error()})
}

// caller returns the identity set by the auth middleware. Routes that use it
// are mounted behind VerifyToken, so a missing identity is answered with 401.
func caller(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized access"})
	}
	return identity, ok
}
