// Package dbtest provides in-memory implementations of the db repositories for tests.
//
// Every operation holds the store mutex for its whole read-decide-write, which
// gives the same per-document atomicity the Firestore transactions provide.
// Failures can be injected per operation and calls are counted, so tests can
// assert both partial-failure handling and the absence of store access.
package dbtest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
)

// Store is an in-memory entity store shared by all repositories it hands out.
type Store struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*models.User
	lessons  map[string]*models.Lesson
	saved    map[string]*models.SavedLesson
	comments map[string]*models.Comment
	reports  map[string]*models.Report
	payments []*models.Payment
	failures map[string][]error
	calls    map[string]int
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    map[string]*models.User{},
		lessons:  map[string]*models.Lesson{},
		saved:    map[string]*models.SavedLesson{},
		comments: map[string]*models.Comment{},
		reports:  map[string]*models.Report{},
		failures: map[string][]error{},
		calls:    map[string]int{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FailNext makes the next call of op return err. Calls queue up: FailNext
// twice fails the next two calls. Operation names are "<repo>.<Method>",
// for example "saved.Sync" or "lessons.IncrementReportCount".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// CallsWithPrefix returns the total number of calls to operations of one repository, e.g. "reports.".
func (s *Store) CallsWithPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for op, n := range s.calls {
		if strings.HasPrefix(op, prefix) {
			total += n
		}
	}
	return total
}

// enter records the call and returns an injected failure if one is queued.
// The caller must hold s.mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	if queued := s.failures[op]; len(queued) > 0 {
		s.failures[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

// Users returns a UserRepository backed by the store.
func (s *Store) Users() db.UserRepository { return &userRepo{s} }

// Lessons returns a LessonRepository backed by the store.
func (s *Store) Lessons() db.LessonRepository { return &lessonRepo{s} }

// SavedLessons returns a SavedLessonRepository backed by the store.
func (s *Store) SavedLessons() db.SavedLessonRepository { return &savedRepo{s} }

// Comments returns a CommentRepository backed by the store.
func (s *Store) Comments() db.CommentRepository { return &commentRepo{s} }

// Reports returns a ReportRepository backed by the store.
func (s *Store) Reports() db.ReportRepository { return &reportRepo{s} }

// Payments returns a PaymentRepository backed by the store.
func (s *Store) Payments() db.PaymentRepository { return &paymentRepo{s} }

// Lesson returns a copy of the stored lesson, bypassing call accounting.
func (s *Store) Lesson(id string) (*models.Lesson, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return nil, false
	}
	return cloneLesson(l), true
}

// SavedEntries returns every favorites index entry, bypassing call accounting.
func (s *Store) SavedEntries() []models.SavedLesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SavedLesson, 0, len(s.saved))
	for _, e := range s.saved {
		out = append(out, *e)
	}
	return out
}

// ReportRows returns the number of stored reports referencing lessonID.
func (s *Store) ReportRows(lessonID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reports {
		if r.LessonID == lessonID {
			n++
		}
	}
	return n
}

// AllPayments returns a copy of the payment log.
func (s *Store) AllPayments() []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, *p)
	}
	return out
}

// PutLesson stores lesson as-is, assigning an ID when empty. Tests use it to
// seed documents in states the services would not produce.
func (s *Store) PutLesson(lesson models.Lesson) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lesson.ID == "" {
		lesson.ID = s.nextID("lesson")
	}
	s.lessons[lesson.ID] = cloneLesson(&lesson)
	return lesson.ID
}

// PutUser stores user as-is, assigning an ID when empty.
func (s *Store) PutUser(user models.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = s.nextID("user")
	}
	u := user
	s.users[user.ID] = &u
	return user.ID
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s with ID '%s' not found: %w", kind, id, db.ErrNotFound)
}

func cloneLesson(l *models.Lesson) *models.Lesson {
	c := *l
	c.Likes = slices.Clone(l.Likes)
	c.Favorites = slices.Clone(l.Favorites)
	if c.Likes == nil {
		c.Likes = []string{}
	}
	if c.Favorites == nil {
		c.Favorites = []string{}
	}
	if l.DeletedAt != nil {
		t := *l.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) findByEmail(email string) *models.User {
	for _, u := range r.s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	c := *u
	return &c, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.GetByEmail"); err != nil {
		return nil, err
	}
	u := r.findByEmail(email)
	if u == nil {
		return nil, fmt.Errorf("user with email '%s' not found: %w", email, db.ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (r *userRepo) CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.CreateIfAbsent"); err != nil {
		return nil, false, err
	}
	if existing := r.findByEmail(user.Email); existing != nil {
		c := *existing
		return &c, false, nil
	}
	if user.ID == "" {
		user.ID = r.s.nextID("user")
	}
	stored := *user
	r.s.users[user.ID] = &stored
	c := stored
	return &c, true, nil
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.List"); err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.Count"); err != nil {
		return 0, err
	}
	return len(r.s.users), nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, email string, req models.UpdateProfileRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.UpdateProfile"); err != nil {
		return err
	}
	u := r.findByEmail(email)
	if u == nil {
		return fmt.Errorf("user with email '%s' not found: %w", email, db.ErrNotFound)
	}
	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.PhotoURL != nil {
		u.PhotoURL = *req.PhotoURL
	}
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) UpdateRole(ctx context.Context, userID, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.UpdateRole"); err != nil {
		return err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	u.Role = role
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) Delete(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.users[userID]; !ok {
		return notFound("user", userID)
	}
	delete(r.s.users, userID)
	return nil
}

func (r *userRepo) MarkPremium(ctx context.Context, email, transactionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.MarkPremium"); err != nil {
		return err
	}
	u := r.findByEmail(email)
	if u == nil {
		return fmt.Errorf("user with email '%s' not found: %w", email, db.ErrNotFound)
	}
	u.IsPremium = true
	u.TransactionID = transactionID
	u.UpdatedAt = r.s.now()
	return nil
}

// --- lessons ---

type lessonRepo struct{ s *Store }

// live returns the stored lesson unless it is missing or soft-deleted.
func (r *lessonRepo) live(lessonID string) (*models.Lesson, error) {
	l, ok := r.s.lessons[lessonID]
	if !ok || l.IsDeleted {
		return nil, notFound("lesson", lessonID)
	}
	return l, nil
}

func (r *lessonRepo) Create(ctx context.Context, lesson *models.Lesson) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.Create"); err != nil {
		return "", err
	}
	lesson.ID = r.s.nextID("lesson")
	r.s.lessons[lesson.ID] = cloneLesson(lesson)
	return lesson.ID, nil
}

func (r *lessonRepo) GetByID(ctx context.Context, lessonID string) (*models.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.GetByID"); err != nil {
		return nil, err
	}
	l, ok := r.s.lessons[lessonID]
	if !ok {
		return nil, notFound("lesson", lessonID)
	}
	return cloneLesson(l), nil
}

func (r *lessonRepo) GetMany(ctx context.Context, ids []string) ([]*models.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.GetMany"); err != nil {
		return nil, err
	}
	var out []*models.Lesson
	for _, id := range ids {
		if l, ok := r.s.lessons[id]; ok {
			out = append(out, cloneLesson(l))
		}
	}
	return out, nil
}

func matches(l *models.Lesson, q models.LessonQuery) bool {
	switch {
	case q.AuthorEmail != "" && l.AuthorEmail != q.AuthorEmail:
		return false
	case q.PublicOnly && l.Visibility != models.VisibilityPublic:
		return false
	case !q.IncludeDeleted && l.IsDeleted:
		return false
	case q.FeaturedOnly && !l.Featured:
		return false
	case q.ReportedOnly && l.ReportCount <= 0:
		return false
	case q.Category != "" && l.Category != q.Category:
		return false
	case q.EmotionalTone != "" && l.EmotionalTone != q.EmotionalTone:
		return false
	case !q.CreatedSince.IsZero() && l.CreatedAt.Before(q.CreatedSince):
		return false
	}
	return true
}

func (r *lessonRepo) List(ctx context.Context, q models.LessonQuery) ([]*models.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.List"); err != nil {
		return nil, err
	}
	var out []*models.Lesson
	for _, l := range r.s.lessons {
		if matches(l, q) {
			out = append(out, cloneLesson(l))
		}
	}

	key := func(l *models.Lesson) (int64, string) {
		switch {
		case q.ReportedOnly:
			return int64(l.ReportCount), l.ID
		case q.OrderBy == models.LessonOrderUpdatedAt:
			return l.UpdatedAt.UnixNano(), l.ID
		case q.OrderBy == models.LessonOrderFavoritesCount:
			return int64(l.FavoritesCount), l.ID
		default:
			return l.CreatedAt.UnixNano(), l.ID
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ki, idi := key(out[i])
		kj, idj := key(out[j])
		if ki != kj {
			return ki > kj
		}
		return idi < idj
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *lessonRepo) Count(ctx context.Context, q models.LessonQuery) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.Count"); err != nil {
		return 0, err
	}
	n := 0
	for _, l := range r.s.lessons {
		if matches(l, q) {
			n++
		}
	}
	return n, nil
}

func (r *lessonRepo) Update(ctx context.Context, lessonID string, patch models.LessonPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.Update"); err != nil {
		return err
	}
	l, ok := r.s.lessons[lessonID]
	if !ok {
		return notFound("lesson", lessonID)
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&l.Title, patch.Title)
	set(&l.Description, patch.Description)
	set(&l.Category, patch.Category)
	set(&l.EmotionalTone, patch.EmotionalTone)
	set(&l.Image, patch.Image)
	set(&l.Visibility, patch.Visibility)
	set(&l.AccessLevel, patch.AccessLevel)
	if patch.Featured != nil {
		l.Featured = *patch.Featured
	}
	if patch.IsReviewed != nil {
		l.IsReviewed = *patch.IsReviewed
	}
	if patch.IsDeleted != nil {
		l.IsDeleted = *patch.IsDeleted
	}
	if patch.DeletedAt != nil {
		t := *patch.DeletedAt
		l.DeletedAt = &t
	}
	l.UpdatedAt = r.s.now()
	return nil
}

func (r *lessonRepo) Delete(ctx context.Context, lessonID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.lessons[lessonID]; !ok {
		return notFound("lesson", lessonID)
	}
	delete(r.s.lessons, lessonID)
	return nil
}

func (r *lessonRepo) ToggleLike(ctx context.Context, lessonID, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.ToggleLike"); err != nil {
		return false, err
	}
	l, err := r.live(lessonID)
	if err != nil {
		return false, err
	}
	if i := slices.Index(l.Likes, email); i >= 0 {
		l.Likes = slices.Delete(l.Likes, i, i+1)
		l.LikesCount--
		return false, nil
	}
	l.Likes = append(l.Likes, email)
	l.LikesCount++
	return true, nil
}

func (r *lessonRepo) ToggleFavorite(ctx context.Context, lessonID, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.ToggleFavorite"); err != nil {
		return false, err
	}
	l, err := r.live(lessonID)
	if err != nil {
		return false, err
	}
	if i := slices.Index(l.Favorites, email); i >= 0 {
		l.Favorites = slices.Delete(l.Favorites, i, i+1)
		if l.FavoritesCount > 0 {
			l.FavoritesCount--
		} else {
			l.FavoritesCount = 0
		}
		return false, nil
	}
	l.Favorites = append(l.Favorites, email)
	l.FavoritesCount++
	return true, nil
}

func (r *lessonRepo) IncrementReportCount(ctx context.Context, lessonID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.IncrementReportCount"); err != nil {
		return err
	}
	l, ok := r.s.lessons[lessonID]
	if !ok {
		return notFound("lesson", lessonID)
	}
	l.ReportCount++
	return nil
}

func (r *lessonRepo) ResetReportCount(ctx context.Context, lessonID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("lessons.ResetReportCount"); err != nil {
		return err
	}
	l, ok := r.s.lessons[lessonID]
	if !ok {
		return notFound("lesson", lessonID)
	}
	l.ReportCount = 0
	l.UpdatedAt = r.s.now()
	return nil
}

// --- favorites index ---

type savedRepo struct{ s *Store }

func (r *savedRepo) Sync(ctx context.Context, lessonID, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("saved.Sync"); err != nil {
		return false, err
	}
	key := db.SavedLessonID(lessonID, email)
	_, exists := r.s.saved[key]
	l, ok := r.s.lessons[lessonID]
	want := ok && l.FavoritedBy(email)
	switch {
	case want && !exists:
		r.s.saved[key] = &models.SavedLesson{
			ID:        key,
			LessonID:  lessonID,
			UserEmail: email,
			Title:     l.Title,
			Image:     l.Image,
			SavedAt:   r.s.now(),
		}
	case !want && exists:
		delete(r.s.saved, key)
	}
	return want, nil
}

func (r *savedRepo) Exists(ctx context.Context, lessonID, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("saved.Exists"); err != nil {
		return false, err
	}
	_, ok := r.s.saved[db.SavedLessonID(lessonID, email)]
	return ok, nil
}

func (r *savedRepo) ListByUser(ctx context.Context, email string) ([]*models.SavedLesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("saved.ListByUser"); err != nil {
		return nil, err
	}
	var out []*models.SavedLesson
	for _, e := range r.s.saved {
		if e.UserEmail == email {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].LessonID < out[j].LessonID
	})
	return out, nil
}

func (r *savedRepo) CountByUser(ctx context.Context, email string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("saved.CountByUser"); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range r.s.saved {
		if e.UserEmail == email {
			n++
		}
	}
	return n, nil
}

func (r *savedRepo) DeleteByLesson(ctx context.Context, lessonID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("saved.DeleteByLesson"); err != nil {
		return err
	}
	for key, e := range r.s.saved {
		if e.LessonID == lessonID {
			delete(r.s.saved, key)
		}
	}
	return nil
}

// --- comments ---

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("comments.Create"); err != nil {
		return "", err
	}
	comment.ID = r.s.nextID("comment")
	c := *comment
	r.s.comments[c.ID] = &c
	return c.ID, nil
}

func (r *commentRepo) ListByLesson(ctx context.Context, lessonID string) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("comments.ListByLesson"); err != nil {
		return nil, err
	}
	var out []*models.Comment
	for _, c := range r.s.comments {
		if c.LessonID == lessonID {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// --- reports ---

type reportRepo struct{ s *Store }

func (r *reportRepo) Create(ctx context.Context, report *models.Report) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reports.Create"); err != nil {
		return "", err
	}
	report.ID = r.s.nextID("report")
	c := *report
	r.s.reports[c.ID] = &c
	return c.ID, nil
}

func (r *reportRepo) Delete(ctx context.Context, reportID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reports.Delete"); err != nil {
		return err
	}
	delete(r.s.reports, reportID)
	return nil
}

func (r *reportRepo) ListByLesson(ctx context.Context, lessonID string) ([]*models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reports.ListByLesson"); err != nil {
		return nil, err
	}
	var out []*models.Report
	for _, rep := range r.s.reports {
		if rep.LessonID == lessonID {
			c := *rep
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *reportRepo) DeleteByLesson(ctx context.Context, lessonID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reports.DeleteByLesson"); err != nil {
		return 0, err
	}
	n := 0
	for id, rep := range r.s.reports {
		if rep.LessonID == lessonID {
			delete(r.s.reports, id)
			n++
		}
	}
	return n, nil
}

// --- payments ---

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.Create"); err != nil {
		return "", err
	}
	if payment.ID != "" {
		for _, p := range r.s.payments {
			if p.ID == payment.ID {
				return p.ID, fmt.Errorf("payment '%s' already recorded: %w", p.ID, db.ErrAlreadyExists)
			}
		}
	} else {
		payment.ID = r.s.nextID("payment")
	}
	c := *payment
	r.s.payments = append(r.s.payments, &c)
	return c.ID, nil
}

func (r *paymentRepo) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.ListByEmail"); err != nil {
		return nil, err
	}
	var out []*models.Payment
	for i := len(r.s.payments) - 1; i >= 0; i-- {
		if p := r.s.payments[i]; p.Email == email {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}
