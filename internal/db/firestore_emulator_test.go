package db

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelessons-backend-go/internal/models"
)

// emulatorClient connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST and skips the test when it is not set.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "demo-lifelessons")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func newEmulatorLesson(t *testing.T, repo LessonRepository) string {
	t.Helper()
	now := time.Now().UTC()
	id, err := repo.Create(context.Background(), &models.Lesson{
		AuthorEmail: uuid.NewString() + "@example.com",
		Title:       "Emulator lesson",
		Visibility:  models.VisibilityPublic,
		AccessLevel: models.AccessFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return id
}

func TestEmulatorToggleLikeKeepsCountInStep(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	lessons := NewFirestoreLessonRepository(client)
	id := newEmulatorLesson(t, lessons)

	for i := 0; i < 3; i++ {
		_, err := lessons.ToggleLike(ctx, id, "alice@example.com")
		require.NoError(t, err)
	}
	lesson, err := lessons.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, lesson.Likes)
	assert.Equal(t, 1, lesson.LikesCount)
}

func TestEmulatorFavoriteIndexConverges(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	lessons := NewFirestoreLessonRepository(client)
	saved := NewFirestoreSavedLessonRepository(client)
	id := newEmulatorLesson(t, lessons)
	email := uuid.NewString() + "@example.com"

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lessons.ToggleFavorite(ctx, id, email); err == nil {
				_, _ = saved.Sync(ctx, id, email)
			}
		}()
	}
	wg.Wait()
	_, err := saved.Sync(ctx, id, email)
	require.NoError(t, err)

	lesson, err := lessons.GetByID(ctx, id)
	require.NoError(t, err)
	exists, err := saved.Exists(ctx, id, email)
	require.NoError(t, err)
	assert.Equal(t, lesson.FavoritedBy(email), exists)
	assert.Equal(t, len(lesson.Favorites), lesson.FavoritesCount)
	assert.GreaterOrEqual(t, lesson.FavoritesCount, 0)
}

func TestEmulatorResetReports(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	lessons := NewFirestoreLessonRepository(client)
	reports := NewFirestoreReportRepository(client)
	id := newEmulatorLesson(t, lessons)

	for i := 0; i < 3; i++ {
		_, err := reports.Create(ctx, &models.Report{LessonID: id, Reason: "spam", CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
		require.NoError(t, lessons.IncrementReportCount(ctx, id))
	}
	deleted, err := reports.DeleteByLesson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	require.NoError(t, lessons.ResetReportCount(ctx, id))

	lesson, err := lessons.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, lesson.ReportCount)
	history, err := reports.ListByLesson(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestEmulatorCreateIfAbsentIsIdempotent(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	users := NewFirestoreUserRepository(client)
	email := uuid.NewString() + "@example.com"

	first, created, err := users.CreateIfAbsent(ctx, &models.User{ID: uuid.NewString(), Email: email, Role: models.RoleUser})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := users.CreateIfAbsent(ctx, &models.User{Email: email, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RoleUser, second.Role)

	_, err = users.GetByEmail(ctx, "missing-"+email)
	assert.ErrorIs(t, err, ErrNotFound)
}
