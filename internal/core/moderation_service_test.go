package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/pkg/cache"
)

func seedAuthored(svc *testServices, author, name string, n int, age time.Duration, visibility string) {
	for i := 0; i < n; i++ {
		l := publicLesson(author, fmt.Sprintf("%s lesson %d", author, i))
		l.AuthorName = name
		l.Visibility = visibility
		l.CreatedAt = time.Now().UTC().Add(-age)
		svc.store.PutLesson(l)
	}
}

func TestTopContributors_RanksWindowAndTies(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(nil, 0)
	seedAuthored(svc, "zoe@example.com", "Zoe", 3, time.Hour, models.VisibilityPublic)
	seedAuthored(svc, "amy@example.com", "Amy", 2, time.Hour, models.VisibilityPublic)
	seedAuthored(svc, "bob@example.com", "Bob", 2, 2*time.Hour, models.VisibilityPublic)
	// Outside the window, private, or deleted lessons never count.
	seedAuthored(svc, "old@example.com", "Old", 5, 10*24*time.Hour, models.VisibilityPublic)
	seedAuthored(svc, "shy@example.com", "Shy", 5, time.Hour, models.VisibilityPrivate)
	trashed := publicLesson("amy@example.com", "trashed")
	trashed.IsDeleted = true
	svc.store.PutLesson(trashed)

	top, err := svc.moderation.TopContributors(ctx, 7, 4)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, models.Contributor{Email: "zoe@example.com", Name: "Zoe", TotalLessons: 3}, top[0])
	assert.Equal(t, "amy@example.com", top[1].Email)
	assert.Equal(t, "bob@example.com", top[2].Email)

	top, err = svc.moderation.TopContributors(ctx, 7, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "zoe@example.com", top[0].Email)

	top, err = svc.moderation.TopContributors(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "old@example.com", top[0].Email)

	_, err = svc.moderation.TopContributors(ctx, 7, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTopContributors_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rc, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rc.Close()

	svc := newTestServices(rc, time.Minute)
	seedAuthored(svc, "amy@example.com", "Amy", 1, time.Hour, models.VisibilityPublic)

	first, err := svc.moderation.TopContributors(ctx, 7, 4)
	require.NoError(t, err)
	require.Len(t, first, 1)
	lists := svc.store.Calls("lessons.List")

	seedAuthored(svc, "bob@example.com", "Bob", 3, time.Hour, models.VisibilityPublic)
	cached, err := svc.moderation.TopContributors(ctx, 7, 4)
	require.NoError(t, err)
	assert.Equal(t, first, cached)
	assert.Equal(t, lists, svc.store.Calls("lessons.List"))

	mr.FastForward(2 * time.Minute)
	fresh, err := svc.moderation.TopContributors(ctx, 7, 4)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "bob@example.com", fresh[0].Email)
}

func TestTopContributors_CacheOutageFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rc, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rc.Close()
	mr.Close()

	svc := newTestServices(rc, time.Minute)
	seedAuthored(svc, "amy@example.com", "Amy", 2, time.Hour, models.VisibilityPublic)

	top, err := svc.moderation.TopContributors(ctx, 7, 4)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 2, top[0].TotalLessons)
}

func TestListReported(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(nil, 0)
	quiet := svc.store.PutLesson(publicLesson("a@example.com", "quiet"))
	once := publicLesson("a@example.com", "once")
	once.ReportCount = 1
	onceID := svc.store.PutLesson(once)
	often := publicLesson("b@example.com", "often")
	often.ReportCount = 4
	oftenID := svc.store.PutLesson(often)

	reported, err := svc.moderation.ListReported(ctx)
	require.NoError(t, err)
	require.Len(t, reported, 2)
	assert.Equal(t, models.ReportedLesson{ID: oftenID, Title: "often", AuthorEmail: "b@example.com", ReportCount: 4}, reported[0])
	assert.Equal(t, onceID, reported[1].ID)
	for _, r := range reported {
		assert.NotEqual(t, quiet, r.ID)
	}
}

func TestResetReports_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(nil, 0)

	assert.ErrorIs(t, svc.moderation.ResetReports(ctx, "missing"), ErrNotFound)
	assert.Equal(t, 0, svc.store.Calls("reports.DeleteByLesson"))

	l := publicLesson("a@example.com", "flagged")
	l.ReportCount = 2
	id := svc.store.PutLesson(l)
	svc.store.FailNext("lessons.ResetReportCount", errStoreDown)
	require.Error(t, svc.moderation.ResetReports(ctx, id))

	// A repeated reset completes the job.
	require.NoError(t, svc.moderation.ResetReports(ctx, id))
	stored, _ := svc.store.Lesson(id)
	assert.Equal(t, 0, stored.ReportCount)
}

// lateReportRepo files one more report right after the first bulk delete,
// the way a concurrent reporter would land between the delete and the reset.
type lateReportRepo struct {
	db.ReportRepository
	filed bool
}

func (r *lateReportRepo) DeleteByLesson(ctx context.Context, lessonID string) (int, error) {
	n, err := r.ReportRepository.DeleteByLesson(ctx, lessonID)
	if err == nil && !r.filed {
		r.filed = true
		_, err = r.ReportRepository.Create(ctx, &models.Report{LessonID: lessonID, Reason: "late", CreatedAt: time.Now().UTC()})
	}
	return n, err
}

func TestResetReports_SweepsReportFiledDuringReset(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(nil, 0)
	l := publicLesson("a@example.com", "flagged")
	l.ReportCount = 1
	id := svc.store.PutLesson(l)
	_, err := svc.store.Reports().Create(ctx, &models.Report{LessonID: id, Reason: "spam", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	moderation := NewModerationService(svc.store.Lessons(), &lateReportRepo{ReportRepository: svc.store.Reports()}, svc.store.Users(), nil, 0, zap.NewNop())
	require.NoError(t, moderation.ResetReports(ctx, id))

	stored, _ := svc.store.Lesson(id)
	assert.Equal(t, 0, stored.ReportCount)
	assert.Zero(t, svc.store.ReportRows(id))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(nil, 0)
	svc.store.PutUser(models.User{Email: "a@example.com"})
	svc.store.PutUser(models.User{Email: "b@example.com"})
	seedAuthored(svc, "a@example.com", "A", 2, time.Minute, models.VisibilityPublic)
	seedAuthored(svc, "b@example.com", "B", 1, 3*24*time.Hour, models.VisibilityPublic)
	seedAuthored(svc, "b@example.com", "B", 1, time.Minute, models.VisibilityPrivate)
	flagged := publicLesson("b@example.com", "flagged")
	flagged.ReportCount = 1
	flagged.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	svc.store.PutLesson(flagged)

	stats, err := svc.moderation.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 4, stats.TotalPublicLessons)
	assert.Equal(t, 1, stats.ReportedLessons)
	require.Len(t, stats.TopContributors, 2)
	assert.Equal(t, 2, stats.TopContributors[0].TotalLessons)
	assert.Equal(t, 2, stats.TopContributors[1].TotalLessons)
	assert.Equal(t, "a@example.com", stats.TopContributors[0].Email)
}
