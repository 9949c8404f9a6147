package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/models"
)

// UserHandler handles user profile and administration endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// CreateUser handles POST /users. It is idempotent: calling it again for an
// existing account returns the stored user with created=false.
func (h *UserHandler) CreateUser(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req models.CreateUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), identity, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.logger.Info("User created", zap.String("email", user.Email))
	}
	c.JSON(status, CreateUserResponse{Success: true, Created: created, User: user})
}

// ProfileStats handles GET /users/profile-stats.
func (h *UserHandler) ProfileStats(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	stats, err := h.userService.ProfileStats(c.Request.Context(), identity.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UpdateProfile handles PATCH /users/profile and PATCH /admin/profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.userService.UpdateProfile(c.Request.Context(), identity.Email, req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Profile updated"})
}

// MyProfile handles GET /admin/profile.
func (h *UserHandler) MyProfile(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), identity.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetProfile handles GET /users/:email.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Role handles GET /users/:email/role. An unknown user answers 404 with a null role.
func (h *UserHandler) Role(c *gin.Context) {
	role, err := h.userService.Role(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, RoleResponse{Message: "User not found"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, RoleResponse{Role: &role})
}

// IsPremium handles GET /users/:email/isPremium.
func (h *UserHandler) IsPremium(c *gin.Context) {
	premium, err := h.userService.IsPremium(c.Request.Context(), strings.TrimSpace(c.Param("email")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, PremiumResponse{IsPremium: premium})
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateRole handles PATCH /users/:id/role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.userService.UpdateRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Role updated"})
}

// DeleteUser handles DELETE /users/:id.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("User deleted", zap.String("user_id", c.Param("id")))
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "User deleted"})
}
