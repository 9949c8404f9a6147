package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
)

// Messages returned by ToggleFavorite.
const (
	MsgFavoriteAdded   = "Added to favorites"
	MsgFavoriteRemoved = "Removed from favorites"
)

// interactionService implements the InteractionService interface.
type interactionService struct {
	lessonRepo db.LessonRepository
	savedRepo  db.SavedLessonRepository
	reportRepo db.ReportRepository
	userRepo   db.UserRepository
	logger     *zap.Logger
}

// NewInteractionService creates a new InteractionService instance.
func NewInteractionService(
	lessonRepo db.LessonRepository,
	savedRepo db.SavedLessonRepository,
	reportRepo db.ReportRepository,
	userRepo db.UserRepository,
	logger *zap.Logger,
) InteractionService {
	return &interactionService{
		lessonRepo: lessonRepo,
		savedRepo:  savedRepo,
		reportRepo: reportRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// ToggleLike flips the caller's like and returns whether the lesson is now liked.
func (s *interactionService) ToggleLike(ctx context.Context, lessonID, email string) (bool, error) {
	if err := validateID("lesson", lessonID); err != nil {
		return false, err
	}
	liked, err := s.lessonRepo.ToggleLike(ctx, lessonID, email)
	if err != nil {
		return false, storeErr(err, "Lesson not found", "failed to toggle like")
	}
	return liked, nil
}

// ToggleFavorite flips the caller's favorite on the lesson, then brings the
// favorites index entry in line with the lesson. The index write is retried
// once; Sync derives the entry from the lesson's current favorite set, so the
// retry also repairs any drift left by an earlier failure.
func (s *interactionService) ToggleFavorite(ctx context.Context, lessonID, email string) (*models.FavoriteResult, error) {
	if err := validateID("lesson", lessonID); err != nil {
		return nil, err
	}
	favorited, err := s.lessonRepo.ToggleFavorite(ctx, lessonID, email)
	if err != nil {
		return nil, storeErr(err, "Lesson not found", "failed to toggle favorite")
	}

	if _, err := s.savedRepo.Sync(ctx, lessonID, email); err != nil {
		s.logger.Warn("Favorites index write failed, repairing",
			zap.String("lesson_id", lessonID), zap.String("email", email), zap.Error(err))
		if _, repairErr := s.savedRepo.Sync(ctx, lessonID, email); repairErr != nil {
			s.logger.Error("Favorites index repair failed",
				zap.String("lesson_id", lessonID), zap.String("email", email), zap.Error(repairErr))
			return nil, fmt.Errorf("failed to update favorites index for lesson '%s': %w", lessonID, errors.Join(err, repairErr))
		}
	}

	result := &models.FavoriteResult{Favorited: favorited, Message: MsgFavoriteRemoved}
	if favorited {
		result.Message = MsgFavoriteAdded
	}
	return result, nil
}

// Report records a complaint and bumps the lesson's report counter. When the
// counter cannot be bumped the report is removed again so the two stay equal.
func (s *interactionService) Report(ctx context.Context, caller models.Identity, lessonID, reason string) error {
	if err := validateID("lesson", lessonID); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return InvalidInputError("reason is required")
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return storeErr(err, "Lesson not found", "failed to get lesson")
	}
	if lesson.IsDeleted {
		return NotFoundError("Lesson not found")
	}

	reporterName := models.AnonymousName
	user, err := s.userRepo.GetByEmail(ctx, caller.Email)
	switch {
	case err == nil:
		reporterName = firstNonEmpty(user.DisplayName, reporterName)
	case !isNotFound(err):
		return fmt.Errorf("failed to load reporter '%s': %w", caller.Email, err)
	}

	report := &models.Report{
		LessonID:      lessonID,
		Reason:        reason,
		ReporterEmail: caller.Email,
		ReporterName:  reporterName,
		CreatedAt:     time.Now().UTC(),
	}
	reportID, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	if err := s.lessonRepo.IncrementReportCount(ctx, lessonID); err != nil {
		if delErr := s.reportRepo.Delete(ctx, reportID); delErr != nil {
			s.logger.Error("Failed to remove report after counter update failed",
				zap.String("report_id", reportID), zap.String("lesson_id", lessonID), zap.Error(delErr))
		}
		return storeErr(err, "Lesson not found", "failed to update report count")
	}

	s.logger.Info("Lesson reported", zap.String("lesson_id", lessonID), zap.String("reporter", caller.Email))
	return nil
}
