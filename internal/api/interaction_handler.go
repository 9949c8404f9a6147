package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/models"
)

// InteractionHandler exposes likes, favorites and reports.
type InteractionHandler struct {
	interactions core.InteractionService
	logger       *zap.Logger
}

// NewInteractionHandler creates a new InteractionHandler.
func NewInteractionHandler(is core.InteractionService, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{interactions: is, logger: logger}
}

// ToggleLike handles PATCH /lessons/:id/like.
func (h *InteractionHandler) ToggleLike(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	liked, err := h.interactions.ToggleLike(c.Request.Context(), c.Param("id"), identity.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, LikeResponse{Success: true, IsLiked: liked})
}

// ToggleFavorite handles PATCH /lessons/:id/favorite.
func (h *InteractionHandler) ToggleFavorite(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	result, err := h.interactions.ToggleFavorite(c.Request.Context(), c.Param("id"), identity.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, FavoriteResponse{Success: true, IsFavorited: result.Favorited, Message: result.Message})
}

// Report handles POST /lessons/:id/report.
func (h *InteractionHandler) Report(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Reason is required"})
		return
	}
	if err := h.interactions.Report(c.Request.Context(), identity, c.Param("id"), req.Reason); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Message: "Report submitted"})
}
