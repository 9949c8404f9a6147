package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
)

const publicTopContributorsLimit = 4

// ModerationHandler serves the report queue, rankings and the admin dashboard.
type ModerationHandler struct {
	moderation core.ModerationService
	windowDays int
	logger     *zap.Logger
}

// NewModerationHandler creates a new ModerationHandler. windowDays is the
// trailing window of the public top contributors ranking.
func NewModerationHandler(ms core.ModerationService, windowDays int, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{moderation: ms, windowDays: windowDays, logger: logger}
}

// ReportedLessons handles GET /admin/reported-lessons.
func (h *ModerationHandler) ReportedLessons(c *gin.Context) {
	lessons, err := h.moderation.ListReported(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// ReportsFor handles GET /lessons/:id/reports.
func (h *ModerationHandler) ReportsFor(c *gin.Context) {
	reports, err := h.moderation.ReportsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// IgnoreReports handles PATCH /admin/lessons/:id/ignore-reports.
func (h *ModerationHandler) IgnoreReports(c *gin.Context) {
	lessonID := c.Param("id")
	if err := h.moderation.ResetReports(c.Request.Context(), lessonID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("Reports cleared", zap.String("lesson_id", lessonID))
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Reports cleared"})
}

// Stats handles GET /admin/stats.
func (h *ModerationHandler) Stats(c *gin.Context) {
	stats, err := h.moderation.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TopContributors handles GET /top-contributors.
func (h *ModerationHandler) TopContributors(c *gin.Context) {
	contributors, err := h.moderation.TopContributors(c.Request.Context(), h.windowDays, publicTopContributorsLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, contributors)
}
