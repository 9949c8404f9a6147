package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/models"
)

type CommentHandler struct {
	comments core.CommentService
	logger   *zap.Logger
}

func NewCommentHandler(cs core.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: cs, logger: logger}
}

// List handles GET /lessons/:id/comments.
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create handles POST /lessons/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), identity, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
