package db

import (
	"context"

	"lifelessons-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateIfAbsent inserts user unless a user with the same email exists.
	// It returns the stored user and whether it was created by this call.
	CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	UpdateProfile(ctx context.Context, email string, req models.UpdateProfileRequest) error
	UpdateRole(ctx context.Context, userID, role string) error
	Delete(ctx context.Context, userID string) error
	// MarkPremium sets isPremium and overwrites transactionId for the user with email.
	MarkPremium(ctx context.Context, email, transactionID string) error
}

// LessonRepository defines the interface for lesson data storage operations.
//
// ToggleLike, ToggleFavorite, IncrementReportCount and ResetReportCount must be
// implemented with the store's atomic operators; callers rely on them for the
// counter invariants and never rewrite whole lesson documents.
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) (string, error)
	GetByID(ctx context.Context, lessonID string) (*models.Lesson, error)
	// GetMany returns the lessons that exist among ids, in the order of ids.
	GetMany(ctx context.Context, ids []string) ([]*models.Lesson, error)
	List(ctx context.Context, q models.LessonQuery) ([]*models.Lesson, error)
	Count(ctx context.Context, q models.LessonQuery) (int, error)
	Update(ctx context.Context, lessonID string, patch models.LessonPatch) error
	Delete(ctx context.Context, lessonID string) error

	// ToggleLike flips email's membership in the like set and returns the new membership.
	ToggleLike(ctx context.Context, lessonID, email string) (bool, error)
	// ToggleFavorite flips email's membership in the favorite set and returns the new membership.
	// The favorite counter is never decremented below zero.
	ToggleFavorite(ctx context.Context, lessonID, email string) (bool, error)
	IncrementReportCount(ctx context.Context, lessonID string) error
	ResetReportCount(ctx context.Context, lessonID string) error
}

// SavedLessonRepository stores the per-user favorites index.
type SavedLessonRepository interface {
	// Sync makes the index entry for (lessonID, email) agree with the lesson's
	// current favorite set and reports whether an entry exists afterwards.
	// It is idempotent and safe to retry.
	Sync(ctx context.Context, lessonID, email string) (bool, error)
	Exists(ctx context.Context, lessonID, email string) (bool, error)
	ListByUser(ctx context.Context, email string) ([]*models.SavedLesson, error)
	CountByUser(ctx context.Context, email string) (int, error)
	DeleteByLesson(ctx context.Context, lessonID string) error
}

// CommentRepository defines the interface for comment storage operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (string, error)
	ListByLesson(ctx context.Context, lessonID string) ([]*models.Comment, error)
}

// ReportRepository defines the interface for report storage operations.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) (string, error)
	Delete(ctx context.Context, reportID string) error
	ListByLesson(ctx context.Context, lessonID string) ([]*models.Report, error)
	// DeleteByLesson removes every report referencing lessonID and returns how many were removed.
	DeleteByLesson(ctx context.Context, lessonID string) (int, error)
}

// PaymentRepository stores the append-only settlement history.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (string, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Payment, error)
}
