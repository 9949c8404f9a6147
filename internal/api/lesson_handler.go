package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/middleware"
	"lifelessons-backend-go/internal/models"
)

// LessonHandler handles lesson authoring, browsing and curation endpoints.
type LessonHandler struct {
	lessonService core.LessonService
	logger        *zap.Logger
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(ls core.LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{lessonService: ls, logger: logger}
}

// CreateLesson handles POST /lessons. Author fields always come from the
// verified identity, whatever the body carries.
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req models.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	lesson, err := h.lessonService.Create(c.Request.Context(), identity, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

// ListPublic handles GET /lessons.
func (h *LessonHandler) ListPublic(c *gin.Context) {
	h.respondList(c)(h.lessonService.ListPublic(c.Request.Context()))
}

// ListByAuthor handles GET /users/:email/lessons and GET /lessons/user/:email.
func (h *LessonHandler) ListByAuthor(c *gin.Context) {
	h.respondList(c)(h.lessonService.ListPublicByAuthor(c.Request.Context(), c.Param("email")))
}

// MyLessons handles GET /lessons/my-lessons.
func (h *LessonHandler) MyLessons(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	h.respondList(c)(h.lessonService.MyLessons(c.Request.Context(), identity.Email))
}

// Recent handles GET /lessons/recent.
func (h *LessonHandler) Recent(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	h.respondList(c)(h.lessonService.Recent(c.Request.Context(), identity.Email))
}

// Saved handles GET /lessons/saved?category=&tone=.
func (h *LessonHandler) Saved(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	h.respondList(c)(h.lessonService.Saved(c.Request.Context(), identity.Email, c.Query("category"), c.Query("tone")))
}

// Related handles GET /lessons/related?id=&category=&tone=.
func (h *LessonHandler) Related(c *gin.Context) {
	h.respondList(c)(h.lessonService.Related(c.Request.Context(), c.Query("id"), c.Query("category"), c.Query("tone")))
}

// Analytics handles GET /lessons/analytics.
func (h *LessonHandler) Analytics(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	analytics, err := h.lessonService.Analytics(c.Request.Context(), identity.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// Featured handles GET /lessons/featured?limit=.
func (h *LessonHandler) Featured(c *gin.Context) {
	limit := core.DefaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	lessons, err := h.lessonService.Featured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, FeaturedLessonsResponse{Success: true, Count: len(lessons), Lessons: lessons})
}

// MostSaved handles GET /most-saved-lessons.
func (h *LessonHandler) MostSaved(c *gin.Context) {
	h.respondList(c)(h.lessonService.MostSaved(c.Request.Context()))
}

// AdminList handles GET /lessons/admin.
func (h *LessonHandler) AdminList(c *gin.Context) {
	h.respondList(c)(h.lessonService.AdminList(c.Request.Context()))
}

// GetLesson handles GET /lessons/:id. The bearer token is optional; it only
// matters for private lessons, which are shown to their author alone.
func (h *LessonHandler) GetLesson(c *gin.Context) {
	viewer, _ := middleware.IdentityFrom(c)
	lesson, err := h.lessonService.Get(c.Request.Context(), c.Param("id"), viewer.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// UpdateLesson handles PATCH /lessons/:id.
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.lessonService.Update(c.Request.Context(), identity.Email, c.Param("id"), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Lesson updated"})
}

// TrashLesson handles PATCH /lessons/:id/trash.
func (h *LessonHandler) TrashLesson(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	if err := h.lessonService.Trash(c.Request.Context(), identity.Email, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Lesson moved to trash"})
}

// SetFeatured handles PATCH /lessons/:id/featured.
func (h *LessonHandler) SetFeatured(c *gin.Context) {
	var req models.FeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Featured == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "featured must be a boolean"})
		return
	}
	if err := h.lessonService.SetFeatured(c.Request.Context(), c.Param("id"), *req.Featured); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "featured": *req.Featured})
}

// SetReviewed handles PATCH /lessons/:id/reviewed.
func (h *LessonHandler) SetReviewed(c *gin.Context) {
	var req models.ReviewedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsReviewed == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "isReviewed must be a boolean"})
		return
	}
	if err := h.lessonService.SetReviewed(c.Request.Context(), c.Param("id"), *req.IsReviewed); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isReviewed": *req.IsReviewed})
}

// AdminDelete handles DELETE /lessons/:id/admin and DELETE /admin/lessons/:id.
func (h *LessonHandler) AdminDelete(c *gin.Context) {
	lessonID := c.Param("id")
	if err := h.lessonService.AdminDelete(c.Request.Context(), lessonID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("Lesson deleted by admin", zap.String("lesson_id", lessonID))
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Lesson deleted"})
}

// respondList returns a writer for the (lessons, err) pair of a listing call.
func (h *LessonHandler) respondList(c *gin.Context) func([]*models.Lesson, error) {
	return func(lessons []*models.Lesson, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, lessons)
	}
}
