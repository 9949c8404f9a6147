package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/models"
)

const identityKey = "identity"

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Message string `json:"message"`
}

// TokenVerifier verifies ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AdminChecker decides whether an email belongs to an administrator.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, email string) error
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
// It panics if verifier is nil, as this is a critical setup dependency.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("token verifier is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// VerifyToken requires a valid bearer token and stores the caller's identity
// in the Gin context. Requests without one are rejected with 401.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := m.authenticate(c)
		if !ok {
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// VerifyTokenIfPresent attaches the identity when a valid bearer token is sent
// and lets anonymous requests through. A present but invalid token is still rejected.
func (m *AuthMiddleware) VerifyTokenIfPresent() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		identity, ok := m.authenticate(c)
		if !ok {
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin lets the request through only when the authenticated caller is
// an admin. It must run after VerifyToken.
func (m *AuthMiddleware) RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized access"})
			return
		}
		if err := checker.RequireAdmin(c.Request.Context(), identity.Email); err != nil {
			if errors.Is(err, core.ErrForbidden) {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden access"})
				return
			}
			m.logger.Error("Admin check failed", zap.String("email", identity.Email), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
			return
		}
		c.Next()
	}
}

// authenticate verifies the bearer token of the request, aborting with 401 on failure.
func (m *AuthMiddleware) authenticate(c *gin.Context) (models.Identity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized access"})
		return models.Identity{}, false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Authorization header format must be 'Bearer {token}'"})
		return models.Identity{}, false
	}

	token, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
	if err != nil {
		m.logger.Warn("Rejected ID token", zap.String("request_id", GetRequestID(c.Request.Context())), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized access"})
		return models.Identity{}, false
	}

	identity := models.Identity{UID: token.UID}
	identity.Email, _ = token.Claims["email"].(string)
	identity.DisplayName, _ = token.Claims["name"].(string)
	identity.PhotoURL, _ = token.Claims["picture"].(string)
	if identity.Email == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Token carries no email"})
		return models.Identity{}, false
	}
	return identity, true
}

// IdentityFrom returns the identity stored by VerifyToken or VerifyTokenIfPresent.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
