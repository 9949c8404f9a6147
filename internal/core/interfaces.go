package core

import (
	"context"

	"lifelessons-backend-go/internal/models"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate returns the user registered under the identity's email,
	// creating it on first sign-in. The boolean reports whether it was created.
	GetOrCreate(ctx context.Context, caller models.Identity, req models.CreateUserRequest) (*models.User, bool, error)
	GetProfile(ctx context.Context, email string) (*models.User, error)
	ProfileStats(ctx context.Context, email string) (*models.ProfileStats, error)
	UpdateProfile(ctx context.Context, email string, req models.UpdateProfileRequest) error
	Role(ctx context.Context, email string) (string, error)
	IsPremium(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, userID, role string) error
	Delete(ctx context.Context, userID string) error
	// RequireAdmin returns ErrForbidden unless email belongs to an admin.
	RequireAdmin(ctx context.Context, email string) error
}

// LessonService defines the interface for lesson authoring and browsing.
type LessonService interface {
	Create(ctx context.Context, caller models.Identity, req models.CreateLessonRequest) (*models.Lesson, error)
	// Get returns a live lesson. Private lessons are only returned when viewerEmail is the author.
	Get(ctx context.Context, lessonID, viewerEmail string) (*models.Lesson, error)
	ListPublic(ctx context.Context) ([]*models.Lesson, error)
	ListPublicByAuthor(ctx context.Context, email string) ([]*models.Lesson, error)
	MyLessons(ctx context.Context, email string) ([]*models.Lesson, error)
	Recent(ctx context.Context, email string) ([]*models.Lesson, error)
	Saved(ctx context.Context, email, category, tone string) ([]*models.Lesson, error)
	Related(ctx context.Context, excludeID, category, tone string) ([]*models.Lesson, error)
	Analytics(ctx context.Context, email string) (*models.LessonAnalytics, error)
	Featured(ctx context.Context, limit int) ([]*models.Lesson, error)
	MostSaved(ctx context.Context) ([]*models.Lesson, error)
	AdminList(ctx context.Context) ([]*models.Lesson, error)
	Update(ctx context.Context, callerEmail, lessonID string, req models.UpdateLessonRequest) error
	Trash(ctx context.Context, callerEmail, lessonID string) error
	SetFeatured(ctx context.Context, lessonID string, featured bool) error
	SetReviewed(ctx context.Context, lessonID string, reviewed bool) error
	// AdminDelete hard-deletes the lesson together with its reports and favorites index entries.
	AdminDelete(ctx context.Context, lessonID string) error
}

// InteractionService applies the per-user interactions that mutate lesson counters.
type InteractionService interface {
	ToggleLike(ctx context.Context, lessonID, email string) (bool, error)
	ToggleFavorite(ctx context.Context, lessonID, email string) (*models.FavoriteResult, error)
	Report(ctx context.Context, caller models.Identity, lessonID, reason string) error
}

// ModerationService defines the admin-facing report and ranking operations.
type ModerationService interface {
	ListReported(ctx context.Context) ([]models.ReportedLesson, error)
	ReportsFor(ctx context.Context, lessonID string) ([]*models.Report, error)
	ResetReports(ctx context.Context, lessonID string) error
	// TopContributors ranks authors of public lessons created in the last
	// windowDays days. A windowDays of zero ranks over all time.
	TopContributors(ctx context.Context, windowDays, limit int) ([]models.Contributor, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
}

// CommentService defines the interface for lesson comments.
type CommentService interface {
	List(ctx context.Context, lessonID string) ([]*models.Comment, error)
	Create(ctx context.Context, caller models.Identity, lessonID, content string) (*models.Comment, error)
}

// BillingService settles payment confirmations.
type BillingService interface {
	Settle(ctx context.Context, confirmation models.PaymentConfirmation) (*models.SettlementResult, error)
	// ConfirmCheckout resolves a completed checkout session and settles it for caller.
	ConfirmCheckout(ctx context.Context, caller models.Identity, sessionID string) (*models.SettlementResult, error)
	History(ctx context.Context, email string) ([]*models.Payment, error)
}

// CheckoutSessionFetcher resolves a hosted checkout session into a payment confirmation.
type CheckoutSessionFetcher interface {
	FetchConfirmation(ctx context.Context, sessionID string) (*models.PaymentConfirmation, error)
}
