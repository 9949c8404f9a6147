package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/config"
	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (request ID, logging, recovery, CORS) is expected to be applied
// to router before this function is called, typically in main.go.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	userService core.UserService,
	lessonService core.LessonService,
	interactionService core.InteractionService,
	moderationService core.ModerationService,
	commentService core.CommentService,
	billingService core.BillingService,
	healthHandler *HealthHandler,
) {
	userHandler := NewUserHandler(userService, logger)
	lessonHandler := NewLessonHandler(lessonService, logger)
	interactionHandler := NewInteractionHandler(interactionService, logger)
	moderationHandler := NewModerationHandler(moderationService, appConfig.TopContributorsWindowDays, logger)
	commentHandler := NewCommentHandler(commentService, logger)
	billingHandler := NewBillingHandler(billingService, logger)

	auth := authMW.VerifyToken()
	admin := []gin.HandlerFunc{auth, authMW.RequireAdmin(userService)}

	healthHandler.RegisterRoutes(router)

	// --- Users ---
	users := router.Group("/users")
	{
		users.POST("", auth, userHandler.CreateUser)
		users.GET("/profile-stats", auth, userHandler.ProfileStats)
		users.PATCH("/profile", auth, userHandler.UpdateProfile)
		users.GET("/:email/role", userHandler.Role)
		users.GET("/:email/isPremium", userHandler.IsPremium)
		users.GET("/:email/lessons", lessonHandler.ListByAuthor)
		users.GET("/:email", auth, userHandler.GetProfile)

		users.GET("", append(admin, userHandler.ListUsers)...)
		users.PATCH("/:id/role", append(admin, userHandler.UpdateRole)...)
		users.DELETE("/:id", append(admin, userHandler.DeleteUser)...)
	}

	// --- Lessons ---
	lessons := router.Group("/lessons")
	{
		lessons.GET("", lessonHandler.ListPublic)
		lessons.POST("", auth, lessonHandler.CreateLesson)
		lessons.GET("/my-lessons", auth, lessonHandler.MyLessons)
		lessons.GET("/saved", auth, lessonHandler.Saved)
		lessons.GET("/related", auth, lessonHandler.Related)
		lessons.GET("/recent", auth, lessonHandler.Recent)
		lessons.GET("/analytics", auth, lessonHandler.Analytics)
		lessons.GET("/featured", lessonHandler.Featured)
		lessons.GET("/user/:email", lessonHandler.ListByAuthor)
		lessons.GET("/admin", append(admin, lessonHandler.AdminList)...)
		lessons.GET("/:id", authMW.VerifyTokenIfPresent(), lessonHandler.GetLesson)

		lessons.PATCH("/:id", auth, lessonHandler.UpdateLesson)
		lessons.PATCH("/:id/trash", auth, lessonHandler.TrashLesson)
		lessons.PATCH("/:id/featured", append(admin, lessonHandler.SetFeatured)...)
		lessons.PATCH("/:id/reviewed", append(admin, lessonHandler.SetReviewed)...)
		lessons.DELETE("/:id/admin", append(admin, lessonHandler.AdminDelete)...)

		lessons.PATCH("/:id/like", auth, interactionHandler.ToggleLike)
		lessons.PATCH("/:id/favorite", auth, interactionHandler.ToggleFavorite)
		lessons.POST("/:id/report", auth, interactionHandler.Report)
		lessons.GET("/:id/reports", append(admin, moderationHandler.ReportsFor)...)

		lessons.GET("/:id/comments", commentHandler.List)
		lessons.POST("/:id/comments", auth, commentHandler.Create)
	}

	// --- Admin ---
	adminGroup := router.Group("/admin", admin...)
	{
		adminGroup.GET("/reported-lessons", moderationHandler.ReportedLessons)
		adminGroup.PATCH("/lessons/:id/ignore-reports", moderationHandler.IgnoreReports)
		adminGroup.DELETE("/lessons/:id", lessonHandler.AdminDelete)
		adminGroup.GET("/stats", moderationHandler.Stats)
		adminGroup.GET("/profile", userHandler.MyProfile)
		adminGroup.PATCH("/profile", userHandler.UpdateProfile)
	}

	// --- Public rankings ---
	router.GET("/top-contributors", moderationHandler.TopContributors)
	router.GET("/most-saved-lessons", lessonHandler.MostSaved)

	// --- Payments ---
	router.PATCH("/payment-success", auth, billingHandler.PaymentSuccess)
	router.GET("/payments/history", auth, billingHandler.History)

	logger.Info("API routes configured")
}
