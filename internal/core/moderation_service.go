package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/pkg/cache"
)

const adminTopContributorsLimit = 5

// moderationService implements the ModerationService interface.
type moderationService struct {
	lessonRepo db.LessonRepository
	reportRepo db.ReportRepository
	userRepo   db.UserRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewModerationService creates a new ModerationService instance.
func NewModerationService(
	lessonRepo db.LessonRepository,
	reportRepo db.ReportRepository,
	userRepo db.UserRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) ModerationService {
	return &moderationService{
		lessonRepo: lessonRepo,
		reportRepo: reportRepo,
		userRepo:   userRepo,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// ListReported returns the lessons with at least one outstanding report, most reported first.
func (s *moderationService) ListReported(ctx context.Context) ([]models.ReportedLesson, error) {
	lessons, err := s.lessonRepo.List(ctx, models.LessonQuery{ReportedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list reported lessons: %w", err)
	}
	reported := make([]models.ReportedLesson, 0, len(lessons))
	for _, l := range lessons {
		reported = append(reported, models.ReportedLesson{
			ID:          l.ID,
			Title:       l.Title,
			AuthorEmail: l.AuthorEmail,
			ReportCount: l.ReportCount,
		})
	}
	return reported, nil
}

// ReportsFor returns the report history of a lesson, newest first.
func (s *moderationService) ReportsFor(ctx context.Context, lessonID string) ([]*models.Report, error) {
	if err := validateID("lesson", lessonID); err != nil {
		return nil, err
	}
	reports, err := s.reportRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports of lesson '%s': %w", lessonID, err)
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	return reports, nil
}

// ResetReports dismisses every report of a lesson: the reports are deleted,
// then the counter is set to zero. Setting an absolute value lets a partially
// failed reset be repeated safely. Reports filed between the two steps are
// swept by a second delete so no report row outlives a zero counter.
func (s *moderationService) ResetReports(ctx context.Context, lessonID string) error {
	if err := validateID("lesson", lessonID); err != nil {
		return err
	}
	if _, err := s.lessonRepo.GetByID(ctx, lessonID); err != nil {
		return storeErr(err, "Lesson not found", "failed to get lesson")
	}

	removed, err := s.reportRepo.DeleteByLesson(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to delete reports of lesson '%s': %w", lessonID, err)
	}
	if err := s.lessonRepo.ResetReportCount(ctx, lessonID); err != nil {
		return storeErr(err, "Lesson not found", "failed to reset report count")
	}
	late, err := s.reportRepo.DeleteByLesson(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to delete reports of lesson '%s': %w", lessonID, err)
	}
	removed += late
	s.logger.Info("Reports dismissed", zap.String("lesson_id", lessonID), zap.Int("reports_removed", removed))
	return nil
}

// TopContributors ranks authors by the number of public lessons they created
// in the window. Ties are broken by email.
func (s *moderationService) TopContributors(ctx context.Context, windowDays, limit int) ([]models.Contributor, error) {
	if windowDays < 0 || limit <= 0 {
		return nil, InvalidInputError("window and limit must be positive")
	}
	key := fmt.Sprintf(cacheKeyTopContributors, windowDays, limit)
	return readThrough(ctx, s.cache, s.cacheTTL, s.logger, key, func() ([]models.Contributor, error) {
		q := models.LessonQuery{PublicOnly: true, OrderBy: models.LessonOrderNone}
		if windowDays > 0 {
			q.CreatedSince = time.Now().UTC().AddDate(0, 0, -windowDays)
		}
		lessons, err := s.lessonRepo.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to list lessons for ranking: %w", err)
		}
		return rankContributors(lessons, limit), nil
	})
}

func rankContributors(lessons []*models.Lesson, limit int) []models.Contributor {
	byEmail := map[string]*models.Contributor{}
	for _, l := range lessons {
		c, ok := byEmail[l.AuthorEmail]
		if !ok {
			c = &models.Contributor{Email: l.AuthorEmail}
			byEmail[l.AuthorEmail] = c
		}
		c.TotalLessons++
		c.Name = firstNonEmpty(c.Name, l.AuthorName)
		c.Photo = firstNonEmpty(c.Photo, l.AuthorImage)
	}

	ranked := make([]models.Contributor, 0, len(byEmail))
	for _, c := range byEmail {
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalLessons != ranked[j].TotalLessons {
			return ranked[i].TotalLessons > ranked[j].TotalLessons
		}
		return ranked[i].Email < ranked[j].Email
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Stats builds the admin dashboard summary.
func (s *moderationService) Stats(ctx context.Context) (*models.AdminStats, error) {
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	totalPublic, err := s.lessonRepo.Count(ctx, models.LessonQuery{PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to count public lessons: %w", err)
	}
	reported, err := s.lessonRepo.Count(ctx, models.LessonQuery{ReportedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to count reported lessons: %w", err)
	}
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.lessonRepo.Count(ctx, models.LessonQuery{CreatedSince: startOfDay})
	if err != nil {
		return nil, fmt.Errorf("failed to count today's lessons: %w", err)
	}
	top, err := s.TopContributors(ctx, 0, adminTopContributorsLimit)
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{
		TotalUsers:         totalUsers,
		TotalPublicLessons: totalPublic,
		ReportedLessons:    reported,
		TodayLessons:       today,
		TopContributors:    top,
	}, nil
}
