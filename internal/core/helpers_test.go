package core

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/db/dbtest"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/pkg/cache"
)

var errStoreDown = errors.New("store unavailable")

type testServices struct {
	store        *dbtest.Store
	users        UserService
	lessons      LessonService
	interactions InteractionService
	moderation   ModerationService
	comments     CommentService
}

func newTestServices(c cache.Cache, ttl time.Duration) *testServices {
	store := dbtest.NewStore()
	logger := zap.NewNop()
	return &testServices{
		store:        store,
		users:        NewUserService(store.Users(), store.Lessons(), store.SavedLessons(), logger),
		lessons:      NewLessonService(store.Lessons(), store.Users(), store.SavedLessons(), store.Reports(), c, ttl, logger),
		interactions: NewInteractionService(store.Lessons(), store.SavedLessons(), store.Reports(), store.Users(), logger),
		moderation:   NewModerationService(store.Lessons(), store.Reports(), store.Users(), c, ttl, logger),
		comments:     NewCommentService(store.Comments(), store.Lessons(), store.Users()),
	}
}

func identity(email string) models.Identity {
	return models.Identity{UID: "uid-" + email, Email: email}
}

func publicLesson(author, title string) models.Lesson {
	now := time.Now().UTC()
	return models.Lesson{
		AuthorEmail: author,
		Title:       title,
		Visibility:  models.VisibilityPublic,
		AccessLevel: models.AccessFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
