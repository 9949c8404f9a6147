package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/config"
	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/db/dbtest"
	"lifelessons-backend-go/internal/middleware"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/pkg/cache"
)

const (
	aliceEmail = "alice@example.com"
	bobEmail   = "bob@example.com"
	adminEmail = "admin@example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("invalid token")
}

type fakeSessions struct {
	confirmation models.PaymentConfirmation
}

func (f *fakeSessions) FetchConfirmation(ctx context.Context, sessionID string) (*models.PaymentConfirmation, error) {
	c := f.confirmation
	c.SessionID = sessionID
	return &c, nil
}

type testServer struct {
	router   *gin.Engine
	store    *dbtest.Store
	sessions *fakeSessions
}

func newTestServer(t *testing.T, ping PingFunc) *testServer {
	t.Helper()
	store := dbtest.NewStore()
	logger := zap.NewNop()
	sessions := &fakeSessions{}

	store.PutUser(models.User{ID: "uid-alice", Email: aliceEmail, DisplayName: "Alice", Role: models.RoleUser})
	store.PutUser(models.User{ID: "uid-bob", Email: bobEmail, DisplayName: "Bob", Role: models.RoleUser})
	store.PutUser(models.User{ID: "uid-admin", Email: adminEmail, DisplayName: "Admin", Role: models.RoleAdmin})

	verifier := fakeVerifier{
		"alice": {UID: "uid-alice", Claims: map[string]interface{}{"email": aliceEmail, "name": "Alice"}},
		"bob":   {UID: "uid-bob", Claims: map[string]interface{}{"email": bobEmail, "name": "Bob"}},
		"admin": {UID: "uid-admin", Claims: map[string]interface{}{"email": adminEmail}},
		"carol": {UID: "uid-carol", Claims: map[string]interface{}{"email": "carol@example.com", "name": "Carol"}},
	}

	userService := core.NewUserService(store.Users(), store.Lessons(), store.SavedLessons(), logger)
	router := gin.New()
	SetupRoutes(
		router,
		&config.Config{TopContributorsWindowDays: 7},
		logger,
		middleware.NewAuthMiddleware(verifier, logger),
		userService,
		core.NewLessonService(store.Lessons(), store.Users(), store.SavedLessons(), store.Reports(), cache.NoopCache{}, 0, logger),
		core.NewInteractionService(store.Lessons(), store.SavedLessons(), store.Reports(), store.Users(), logger),
		core.NewModerationService(store.Lessons(), store.Reports(), store.Users(), cache.NoopCache{}, 0, logger),
		core.NewCommentService(store.Comments(), store.Lessons(), store.Users()),
		core.NewBillingService(store.Users(), store.Payments(), sessions, logger),
		NewHealthHandler("lifelessons-backend", "test", ping),
	)
	return &testServer{router: router, store: store, sessions: sessions}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) seedLesson(author, title string) string {
	now := time.Now().UTC()
	return s.store.PutLesson(models.Lesson{
		AuthorEmail: author,
		Title:       title,
		Category:    "growth",
		Visibility:  models.VisibilityPublic,
		AccessLevel: models.AccessFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestCreateLessonTakesAuthorFromToken(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodPost, "/lessons", "alice", map[string]interface{}{
		"title":          "Patience",
		"authorEmail":    "mallory@example.com",
		"likesCount":     99,
		"favoritesCount": 42,
		"featured":       true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decode[models.Lesson](t, rr)
	stored, ok := s.store.Lesson(created.ID)
	require.True(t, ok)
	assert.Equal(t, aliceEmail, stored.AuthorEmail)
	assert.Equal(t, "Alice", stored.AuthorName)
	assert.Zero(t, stored.LikesCount)
	assert.Zero(t, stored.FavoritesCount)
	assert.False(t, stored.Featured)
	assert.Empty(t, stored.Favorites)
}

func TestCreateLessonValidation(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodPost, "/lessons", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodPost, "/lessons", "alice", map[string]string{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPost, "/lessons", "alice", map[string]string{"title": "x", "visibility": "friends"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLikeAndFavoriteEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(bobEmail, "Kindness")

	rr := s.do(http.MethodPatch, "/lessons/"+id+"/like", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, LikeResponse{Success: true, IsLiked: true}, decode[LikeResponse](t, rr))

	rr = s.do(http.MethodPatch, "/lessons/"+id+"/favorite", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	fav := decode[FavoriteResponse](t, rr)
	assert.True(t, fav.IsFavorited)
	assert.Equal(t, core.MsgFavoriteAdded, fav.Message)

	lesson, _ := s.store.Lesson(id)
	assert.Equal(t, 1, lesson.FavoritesCount)
	assert.Len(t, s.store.SavedEntries(), 1)

	rr = s.do(http.MethodPatch, "/lessons/"+id+"/favorite", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	fav = decode[FavoriteResponse](t, rr)
	assert.False(t, fav.IsFavorited)
	assert.Equal(t, core.MsgFavoriteRemoved, fav.Message)

	lesson, _ = s.store.Lesson(id)
	assert.Zero(t, lesson.FavoritesCount)
	assert.Empty(t, s.store.SavedEntries())

	rr = s.do(http.MethodPatch, "/lessons/missing/like", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSavedListingFollowsFavorites(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(bobEmail, "Gratitude")

	s.do(http.MethodPatch, "/lessons/"+id+"/favorite", "alice", nil)

	rr := s.do(http.MethodGet, "/lessons/saved", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	saved := decode[[]models.Lesson](t, rr)
	require.Len(t, saved, 1)
	assert.Equal(t, id, saved[0].ID)

	rr = s.do(http.MethodGet, "/users/profile-stats", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.ProfileStats{Created: 0, Saved: 1}, decode[models.ProfileStats](t, rr))
}

func TestAdminGateDoesNotTouchReports(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(bobEmail, "Reported")
	s.do(http.MethodPost, "/lessons/"+id+"/report", "alice", map[string]string{"reason": "spam"})
	before := s.store.CallsWithPrefix("reports.")

	rr := s.do(http.MethodGet, "/admin/reported-lessons", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, before, s.store.CallsWithPrefix("reports."))

	rr = s.do(http.MethodGet, "/admin/reported-lessons", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodGet, "/admin/reported-lessons", "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	reported := decode[[]models.ReportedLesson](t, rr)
	require.Len(t, reported, 1)
	assert.Equal(t, id, reported[0].ID)
}

func TestReportAggregationAndReset(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(bobEmail, "Controversial")

	for _, token := range []string{"alice", "carol", "admin"} {
		rr := s.do(http.MethodPost, "/lessons/"+id+"/report", token, map[string]string{"reason": "offensive"})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	lesson, _ := s.store.Lesson(id)
	assert.Equal(t, 3, lesson.ReportCount)

	rr := s.do(http.MethodGet, "/lessons/"+id+"/reports", "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Report](t, rr), 3)

	rr = s.do(http.MethodPatch, "/admin/lessons/"+id+"/ignore-reports", "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	lesson, _ = s.store.Lesson(id)
	assert.Zero(t, lesson.ReportCount)
	rr = s.do(http.MethodGet, "/lessons/"+id+"/reports", "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]models.Report](t, rr))
}

func TestReportRequiresReason(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(bobEmail, "Quiet")

	rr := s.do(http.MethodPost, "/lessons/"+id+"/report", "alice", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, s.store.ReportRows(id))
}

func TestPrivateLessonVisibility(t *testing.T) {
	s := newTestServer(t, nil)
	now := time.Now().UTC()
	id := s.store.PutLesson(models.Lesson{
		AuthorEmail: aliceEmail,
		Title:       "Diary",
		Visibility:  models.VisibilityPrivate,
		AccessLevel: models.AccessFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/lessons/"+id, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/lessons/"+id, "bob", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/lessons/"+id, "alice", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/lessons/"+id, "forged", nil).Code)
}

func TestUpdateAndTrashAreAuthorOnly(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(aliceEmail, "Draft")

	rr := s.do(http.MethodPatch, "/lessons/"+id, "bob", map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPatch, "/lessons/"+id, "alice", map[string]string{"title": "Final"})
	require.Equal(t, http.StatusOK, rr.Code)
	lesson, _ := s.store.Lesson(id)
	assert.Equal(t, "Final", lesson.Title)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, "/lessons/"+id+"/trash", "bob", nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/lessons/"+id+"/trash", "alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/lessons/"+id, "alice", nil).Code)
}

func TestFeaturedFlagRequiresBoolean(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(aliceEmail, "Shine")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/lessons/"+id+"/featured", "admin", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/lessons/"+id+"/featured", "admin", map[string]string{"featured": "yes"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, "/lessons/"+id+"/featured", "alice", map[string]bool{"featured": true}).Code)

	rr := s.do(http.MethodPatch, "/lessons/"+id+"/featured", "admin", map[string]bool{"featured": true})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/lessons/featured?limit=3", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	featured := decode[struct {
		Success bool            `json:"success"`
		Count   int             `json:"count"`
		Lessons []models.Lesson `json:"lessons"`
	}](t, rr)
	assert.True(t, featured.Success)
	assert.Equal(t, 1, featured.Count)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/lessons/featured?limit=abc", "", nil).Code)
}

func TestAdminDeleteRemovesDependents(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(bobEmail, "Gone")
	s.do(http.MethodPatch, "/lessons/"+id+"/favorite", "alice", nil)
	s.do(http.MethodPost, "/lessons/"+id+"/report", "alice", map[string]string{"reason": "spam"})

	rr := s.do(http.MethodDelete, "/admin/lessons/"+id, "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	_, ok := s.store.Lesson(id)
	assert.False(t, ok)
	assert.Zero(t, s.store.ReportRows(id))
	assert.Empty(t, s.store.SavedEntries())
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodPost, "/users", "carol", map[string]string{"displayName": "Carol C", "role": "admin"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[struct {
		Success bool        `json:"success"`
		Created bool        `json:"created"`
		User    models.User `json:"user"`
	}](t, rr)
	assert.True(t, created.Created)
	assert.Equal(t, models.RoleUser, created.User.Role)
	assert.False(t, created.User.IsPremium)

	rr = s.do(http.MethodPost, "/users", "carol", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/users/"+adminEmail+"/role", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	role := decode[RoleResponse](t, rr)
	require.NotNil(t, role.Role)
	assert.Equal(t, models.RoleAdmin, *role.Role)

	rr = s.do(http.MethodGet, "/users/nobody@example.com/role", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Contains(t, raw, "role")
	assert.Nil(t, raw["role"])

	rr = s.do(http.MethodGet, "/users/nobody@example.com/isPremium", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[PremiumResponse](t, rr).IsPremium)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/users/uid-bob/role", "admin", map[string]string{"role": "owner"}).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/users/uid-bob/role", "admin", map[string]string{"role": "admin"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/users", "alice", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users", "bob", nil).Code)
}

func TestPaymentSuccess(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/payment-success", "alice", nil).Code)

	s.sessions.confirmation = models.PaymentConfirmation{
		CallerEmail:     aliceEmail,
		AmountPaid:      15,
		TransactionID:   "pi_1",
		PaymentStatus:   "unpaid",
		TransactionType: models.TransactionTypePremiumUpgrade,
	}
	rr := s.do(http.MethodPatch, "/payment-success?session_id=cs_1", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[models.SettlementResult](t, rr).Settled)
	assert.Empty(t, s.store.AllPayments())

	s.sessions.confirmation.PaymentStatus = models.PaymentStatusPaid
	rr = s.do(http.MethodPatch, "/payment-success?session_id=cs_1", "bob", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPatch, "/payment-success?session_id=cs_1", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[models.SettlementResult](t, rr).Settled)

	rr = s.do(http.MethodGet, "/users/"+aliceEmail+"/isPremium", "", nil)
	assert.True(t, decode[PremiumResponse](t, rr).IsPremium)

	rr = s.do(http.MethodGet, "/payments/history", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Payment](t, rr), 1)
}

func TestCommentsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.seedLesson(bobEmail, "Listen")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/lessons/"+id+"/comments", "alice", map[string]string{"content": "  "}).Code)

	rr := s.do(http.MethodPost, "/lessons/"+id+"/comments", "alice", map[string]string{"content": "Thank you"})
	require.Equal(t, http.StatusCreated, rr.Code)
	comment := decode[models.Comment](t, rr)
	assert.Equal(t, "Alice", comment.UserName)

	rr = s.do(http.MethodGet, "/lessons/"+id+"/comments", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Comment](t, rr), 1)
}

func TestServerErrorsAreGeneric(t *testing.T) {
	s := newTestServer(t, nil)
	s.store.FailNext("lessons.List", errors.New("deadline exceeded talking to backend-7"))

	rr := s.do(http.MethodGet, "/lessons", "", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, internalErrorMessage, decode[ErrorResponse](t, rr).Message)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		ping PingFunc
		want string
	}{
		{name: "disabled", ping: nil, want: "disabled"},
		{name: "up", ping: func(context.Context) error { return nil }, want: "up"},
		{name: "down", ping: func(context.Context) error { return errors.New("unreachable") }, want: "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.ping)
			rr := s.do(http.MethodGet, "/health", "", nil)
			require.Equal(t, http.StatusOK, rr.Code)
			resp := decode[HealthResponse](t, rr)
			assert.Equal(t, "healthy", resp.Status)
			assert.Equal(t, tt.want, resp.DB)
		})
	}

	rr := newTestServer(t, nil).do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
