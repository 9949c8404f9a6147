package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/pkg/cache"
)

const (
	recentLessonsLimit  = 3
	relatedLessonsLimit = 6
	mostSavedLimit      = 6
	// DefaultFeaturedLimit is used when a featured listing does not ask for a size.
	DefaultFeaturedLimit = 6
	maxFeaturedLimit     = 50
)

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// lessonService implements the LessonService interface.
type lessonService struct {
	lessonRepo db.LessonRepository
	userRepo   db.UserRepository
	savedRepo  db.SavedLessonRepository
	reportRepo db.ReportRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewLessonService creates a new LessonService instance.
func NewLessonService(
	lessonRepo db.LessonRepository,
	userRepo db.UserRepository,
	savedRepo db.SavedLessonRepository,
	reportRepo db.ReportRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) LessonService {
	return &lessonService{
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		savedRepo:  savedRepo,
		reportRepo: reportRepo,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Create stores a new lesson authored by caller. Author fields are taken from
// the identity and the caller's user record, never from the request.
func (s *lessonService) Create(ctx context.Context, caller models.Identity, req models.CreateLessonRequest) (*models.Lesson, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, InvalidInputError("title is required")
	}
	visibility := firstNonEmpty(req.Visibility, models.VisibilityPublic)
	if !validVisibility(visibility) {
		return nil, InvalidInputError("visibility must be public or private")
	}
	accessLevel := firstNonEmpty(req.AccessLevel, models.AccessFree)
	if !validAccessLevel(accessLevel) {
		return nil, InvalidInputError("accessLevel must be free or premium")
	}

	authorName, authorImage := caller.DisplayName, caller.PhotoURL
	user, err := s.userRepo.GetByEmail(ctx, caller.Email)
	switch {
	case err == nil:
		authorName = firstNonEmpty(user.DisplayName, authorName)
		authorImage = firstNonEmpty(user.PhotoURL, authorImage)
	case !isNotFound(err):
		return nil, fmt.Errorf("failed to load author '%s': %w", caller.Email, err)
	}

	now := time.Now().UTC()
	lesson := &models.Lesson{
		AuthorEmail:   caller.Email,
		AuthorName:    authorName,
		AuthorImage:   authorImage,
		Title:         title,
		Description:   req.Description,
		Category:      req.Category,
		EmotionalTone: req.EmotionalTone,
		Image:         req.Image,
		Visibility:    visibility,
		AccessLevel:   accessLevel,
		Likes:         []string{},
		Favorites:     []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	s.logger.Info("Lesson created", zap.String("lesson_id", lesson.ID), zap.String("author", caller.Email))
	return lesson, nil
}

// Get returns a live lesson visible to viewerEmail.
func (s *lessonService) Get(ctx context.Context, lessonID, viewerEmail string) (*models.Lesson, error) {
	lesson, err := s.liveLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Visibility != models.VisibilityPublic && lesson.AuthorEmail != viewerEmail {
		return nil, NotFoundError("Lesson not found")
	}
	return lesson, nil
}

// ListPublic returns every public lesson, newest first.
func (s *lessonService) ListPublic(ctx context.Context) ([]*models.Lesson, error) {
	return s.list(ctx, models.LessonQuery{PublicOnly: true})
}

// ListPublicByAuthor returns the public lessons of one author, newest first.
func (s *lessonService) ListPublicByAuthor(ctx context.Context, email string) ([]*models.Lesson, error) {
	return s.list(ctx, models.LessonQuery{AuthorEmail: email, PublicOnly: true})
}

// MyLessons returns every live lesson of the caller, private ones included.
func (s *lessonService) MyLessons(ctx context.Context, email string) ([]*models.Lesson, error) {
	return s.list(ctx, models.LessonQuery{AuthorEmail: email})
}

// Recent returns the caller's newest lessons.
func (s *lessonService) Recent(ctx context.Context, email string) ([]*models.Lesson, error) {
	return s.list(ctx, models.LessonQuery{AuthorEmail: email, Limit: recentLessonsLimit})
}

// Saved joins the caller's favorites index with the lessons it points at.
// Deleted lessons and private lessons of other authors are dropped.
func (s *lessonService) Saved(ctx context.Context, email, category, tone string) ([]*models.Lesson, error) {
	entries, err := s.savedRepo.ListByUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved lessons: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.LessonID)
	}
	lessons, err := s.lessonRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved lessons: %w", err)
	}

	result := make([]*models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		switch {
		case l.IsDeleted:
		case l.Visibility != models.VisibilityPublic && l.AuthorEmail != email:
		case category != "" && l.Category != category:
		case tone != "" && l.EmotionalTone != tone:
		default:
			result = append(result, l)
		}
	}
	return result, nil
}

// Related returns public lessons sharing the category or the emotional tone,
// excluding excludeID.
func (s *lessonService) Related(ctx context.Context, excludeID, category, tone string) ([]*models.Lesson, error) {
	var queries []models.LessonQuery
	if category != "" {
		queries = append(queries, models.LessonQuery{PublicOnly: true, Category: category, Limit: relatedLessonsLimit + 1})
	}
	if tone != "" {
		queries = append(queries, models.LessonQuery{PublicOnly: true, EmotionalTone: tone, Limit: relatedLessonsLimit + 1})
	}

	seen := map[string]bool{excludeID: true}
	related := make([]*models.Lesson, 0, relatedLessonsLimit)
	for _, q := range queries {
		lessons, err := s.list(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, l := range lessons {
			if len(related) == relatedLessonsLimit {
				return related, nil
			}
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			related = append(related, l)
		}
	}
	return related, nil
}

// Analytics counts the caller's lessons by UTC weekday of creation.
func (s *lessonService) Analytics(ctx context.Context, email string) (*models.LessonAnalytics, error) {
	lessons, err := s.list(ctx, models.LessonQuery{AuthorEmail: email, OrderBy: models.LessonOrderNone})
	if err != nil {
		return nil, err
	}
	counts := make([]int, len(weekdayLabels))
	for _, l := range lessons {
		counts[l.CreatedAt.UTC().Weekday()]++
	}
	return &models.LessonAnalytics{Labels: weekdayLabels, Counts: counts}, nil
}

// Featured returns up to limit featured public lessons, most recently updated first.
func (s *lessonService) Featured(ctx context.Context, limit int) ([]*models.Lesson, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	limit = min(limit, maxFeaturedLimit)

	lessons, err := readThrough(ctx, s.cache, s.cacheTTL, s.logger, cacheKeyFeatured, func() ([]*models.Lesson, error) {
		return s.list(ctx, models.LessonQuery{
			PublicOnly:   true,
			FeaturedOnly: true,
			OrderBy:      models.LessonOrderUpdatedAt,
			Limit:        maxFeaturedLimit,
		})
	})
	if err != nil {
		return nil, err
	}
	if len(lessons) > limit {
		lessons = lessons[:limit]
	}
	return lessons, nil
}

// MostSaved returns the public lessons with the most favorites.
func (s *lessonService) MostSaved(ctx context.Context) ([]*models.Lesson, error) {
	return readThrough(ctx, s.cache, s.cacheTTL, s.logger, cacheKeyMostSaved, func() ([]*models.Lesson, error) {
		return s.list(ctx, models.LessonQuery{
			PublicOnly: true,
			OrderBy:    models.LessonOrderFavoritesCount,
			Limit:      mostSavedLimit,
		})
	})
}

// AdminList returns every lesson, deleted ones included.
func (s *lessonService) AdminList(ctx context.Context) ([]*models.Lesson, error) {
	return s.list(ctx, models.LessonQuery{IncludeDeleted: true})
}

// Update applies the author's edit as field-level writes.
func (s *lessonService) Update(ctx context.Context, callerEmail, lessonID string, req models.UpdateLessonRequest) error {
	lesson, err := s.liveLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson.AuthorEmail != callerEmail {
		return ForbiddenError("Forbidden access")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return InvalidInputError("title cannot be empty")
		}
		req.Title = &title
	}
	if req.Visibility != nil && !validVisibility(*req.Visibility) {
		return InvalidInputError("visibility must be public or private")
	}
	if req.AccessLevel != nil && !validAccessLevel(*req.AccessLevel) {
		return InvalidInputError("accessLevel must be free or premium")
	}

	patch := models.LessonPatch{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		EmotionalTone: req.EmotionalTone,
		Image:         req.Image,
		Visibility:    req.Visibility,
		AccessLevel:   req.AccessLevel,
	}
	if err := s.lessonRepo.Update(ctx, lessonID, patch); err != nil {
		return storeErr(err, "Lesson not found", "failed to update lesson")
	}
	if lesson.Featured {
		invalidate(ctx, s.cache, s.logger, cacheKeyFeatured)
	}
	return nil
}

// Trash soft-deletes a lesson on behalf of its author.
func (s *lessonService) Trash(ctx context.Context, callerEmail, lessonID string) error {
	lesson, err := s.liveLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson.AuthorEmail != callerEmail {
		return ForbiddenError("Forbidden access")
	}

	deleted := true
	deletedAt := time.Now().UTC()
	if err := s.lessonRepo.Update(ctx, lessonID, models.LessonPatch{IsDeleted: &deleted, DeletedAt: &deletedAt}); err != nil {
		return storeErr(err, "Lesson not found", "failed to move lesson to trash")
	}
	s.logger.Info("Lesson moved to trash", zap.String("lesson_id", lessonID), zap.String("author", callerEmail))
	invalidate(ctx, s.cache, s.logger, cacheKeyFeatured, cacheKeyMostSaved)
	return nil
}

// SetFeatured marks or unmarks a lesson as featured.
func (s *lessonService) SetFeatured(ctx context.Context, lessonID string, featured bool) error {
	if err := s.adminPatch(ctx, lessonID, models.LessonPatch{Featured: &featured}); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeyFeatured)
	return nil
}

// SetReviewed records whether a moderator reviewed the lesson.
func (s *lessonService) SetReviewed(ctx context.Context, lessonID string, reviewed bool) error {
	return s.adminPatch(ctx, lessonID, models.LessonPatch{IsReviewed: &reviewed})
}

// AdminDelete removes the lesson, then its reports and favorites index entries.
// The dependent deletes are idempotent, so a failed call can be repeated.
func (s *lessonService) AdminDelete(ctx context.Context, lessonID string) error {
	if err := validateID("lesson", lessonID); err != nil {
		return err
	}
	if err := s.lessonRepo.Delete(ctx, lessonID); err != nil {
		return storeErr(err, "Lesson not found", "failed to delete lesson")
	}
	removed, err := s.reportRepo.DeleteByLesson(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to delete reports of lesson '%s': %w", lessonID, err)
	}
	if err := s.savedRepo.DeleteByLesson(ctx, lessonID); err != nil {
		return fmt.Errorf("failed to delete saved entries of lesson '%s': %w", lessonID, err)
	}
	s.logger.Info("Lesson deleted by admin", zap.String("lesson_id", lessonID), zap.Int("reports_removed", removed))
	invalidate(ctx, s.cache, s.logger, cacheKeyFeatured, cacheKeyMostSaved)
	return nil
}

func (s *lessonService) adminPatch(ctx context.Context, lessonID string, patch models.LessonPatch) error {
	if err := validateID("lesson", lessonID); err != nil {
		return err
	}
	if err := s.lessonRepo.Update(ctx, lessonID, patch); err != nil {
		return storeErr(err, "Lesson not found", "failed to update lesson")
	}
	return nil
}

// liveLesson loads a lesson and treats soft-deleted ones as missing.
func (s *lessonService) liveLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	if err := validateID("lesson", lessonID); err != nil {
		return nil, err
	}
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, storeErr(err, "Lesson not found", "failed to get lesson")
	}
	if lesson.IsDeleted {
		return nil, NotFoundError("Lesson not found")
	}
	return lesson, nil
}

func (s *lessonService) list(ctx context.Context, q models.LessonQuery) ([]*models.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	if lessons == nil {
		lessons = []*models.Lesson{}
	}
	return lessons, nil
}
