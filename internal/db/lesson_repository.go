package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifelessons-backend-go/internal/models"
)

// firestoreLessonRepository implements the LessonRepository interface using Firestore.
type firestoreLessonRepository struct {
	client *firestore.Client
}

// NewFirestoreLessonRepository creates a new instance of firestoreLessonRepository.
func NewFirestoreLessonRepository(client *firestore.Client) LessonRepository {
	return &firestoreLessonRepository{client: client}
}

func (r *firestoreLessonRepository) doc(lessonID string) *firestore.DocumentRef {
	return r.client.Collection(lessonsCollection).Doc(lessonID)
}

// Create adds a new lesson document with an auto-generated ID.
func (r *firestoreLessonRepository) Create(ctx context.Context, lesson *models.Lesson) (string, error) {
	docRef := r.client.Collection(lessonsCollection).NewDoc()
	lesson.ID = docRef.ID
	if lesson.Likes == nil {
		lesson.Likes = []string{}
	}
	if lesson.Favorites == nil {
		lesson.Favorites = []string{}
	}
	if _, err := docRef.Create(ctx, lesson); err != nil {
		return "", fmt.Errorf("failed to create lesson: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a lesson document by its ID.
func (r *firestoreLessonRepository) GetByID(ctx context.Context, lessonID string) (*models.Lesson, error) {
	docSnap, err := r.doc(lessonID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("lesson with ID '%s' not found: %w", lessonID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson with ID '%s': %w", lessonID, err)
	}
	return decodeLesson(docSnap)
}

// GetMany fetches lessons by ID in one round trip. Missing documents are skipped.
func (r *firestoreLessonRepository) GetMany(ctx context.Context, ids []string) ([]*models.Lesson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.doc(id))
	}
	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}
	lessons := make([]*models.Lesson, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		lesson, err := decodeLesson(snap)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// List returns the lessons matching q.
func (r *firestoreLessonRepository) List(ctx context.Context, q models.LessonQuery) ([]*models.Lesson, error) {
	iter := r.query(q).Documents(ctx)
	defer iter.Stop()

	var lessons []*models.Lesson
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate lessons: %w", err)
		}
		lesson, err := decodeLesson(doc)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// Count returns the number of lessons matching q.
func (r *firestoreLessonRepository) Count(ctx context.Context, q models.LessonQuery) (int, error) {
	q.OrderBy = models.LessonOrderNone
	q.Limit = 0
	return countDocuments(ctx, r.query(q))
}

// query translates a LessonQuery into Firestore filters. Composite indexes
// are required for the equality + ordering combinations used here.
func (r *firestoreLessonRepository) query(q models.LessonQuery) firestore.Query {
	query := r.client.Collection(lessonsCollection).Query
	if q.AuthorEmail != "" {
		query = query.Where("authorEmail", "==", q.AuthorEmail)
	}
	if q.PublicOnly {
		query = query.Where("visibility", "==", models.VisibilityPublic)
	}
	if !q.IncludeDeleted {
		query = query.Where("isDeleted", "==", false)
	}
	if q.FeaturedOnly {
		query = query.Where("featured", "==", true)
	}
	if q.Category != "" {
		query = query.Where("category", "==", q.Category)
	}
	if q.EmotionalTone != "" {
		query = query.Where("emotionalTone", "==", q.EmotionalTone)
	}
	if !q.CreatedSince.IsZero() {
		query = query.Where("createdAt", ">=", q.CreatedSince)
	}

	switch {
	case q.ReportedOnly:
		// The inequality field has to lead the ordering.
		query = query.Where("reportCount", ">", 0).OrderBy("reportCount", firestore.Desc)
	case q.OrderBy == models.LessonOrderNone:
	case q.OrderBy == models.LessonOrderUpdatedAt:
		query = query.OrderBy("updatedAt", firestore.Desc)
	case q.OrderBy == models.LessonOrderFavoritesCount:
		query = query.OrderBy("favoritesCount", firestore.Desc)
	default:
		query = query.OrderBy("createdAt", firestore.Desc)
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

// Update writes only the fields present in patch. Counters and sets are never
// part of a patch, so concurrent toggles are not overwritten.
func (r *firestoreLessonRepository) Update(ctx context.Context, lessonID string, patch models.LessonPatch) error {
	updates := []firestore.Update{{Path: "updatedAt", Value: firestore.ServerTimestamp}}
	add := func(path string, value any) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.EmotionalTone != nil {
		add("emotionalTone", *patch.EmotionalTone)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.Visibility != nil {
		add("visibility", *patch.Visibility)
	}
	if patch.AccessLevel != nil {
		add("accessLevel", *patch.AccessLevel)
	}
	if patch.Featured != nil {
		add("featured", *patch.Featured)
	}
	if patch.IsReviewed != nil {
		add("isReviewed", *patch.IsReviewed)
	}
	if patch.IsDeleted != nil {
		add("isDeleted", *patch.IsDeleted)
	}
	if patch.DeletedAt != nil {
		add("deletedAt", *patch.DeletedAt)
	}

	if _, err := r.doc(lessonID).Update(ctx, updates); err != nil {
		return wrapLessonErr(lessonID, "update", err)
	}
	return nil
}

// Delete removes the lesson document.
func (r *firestoreLessonRepository) Delete(ctx context.Context, lessonID string) error {
	if _, err := r.doc(lessonID).Delete(ctx, firestore.Exists); err != nil {
		return wrapLessonErr(lessonID, "delete", err)
	}
	return nil
}

// ToggleLike reads the like set inside a transaction and applies ArrayUnion or
// ArrayRemove together with an Increment of the same sign.
func (r *firestoreLessonRepository) ToggleLike(ctx context.Context, lessonID, email string) (bool, error) {
	ref := r.doc(lessonID)
	var liked bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		lesson, err := getLessonTx(tx, ref)
		if err != nil {
			return err
		}
		if lesson.LikedBy(email) {
			liked = false
			return tx.Update(ref, []firestore.Update{
				{Path: "likes", Value: firestore.ArrayRemove(email)},
				{Path: "likesCount", Value: firestore.Increment(-1)},
			})
		}
		liked = true
		return tx.Update(ref, []firestore.Update{
			{Path: "likes", Value: firestore.ArrayUnion(email)},
			{Path: "likesCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return false, wrapLessonErr(lessonID, "toggle like on", err)
	}
	return liked, nil
}

// ToggleFavorite is the favorite counterpart of ToggleLike. A removal on a
// counter that already reads zero resets it to zero instead of decrementing.
func (r *firestoreLessonRepository) ToggleFavorite(ctx context.Context, lessonID, email string) (bool, error) {
	ref := r.doc(lessonID)
	var favorited bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		lesson, err := getLessonTx(tx, ref)
		if err != nil {
			return err
		}
		if lesson.FavoritedBy(email) {
			favorited = false
			var count any = firestore.Increment(-1)
			if lesson.FavoritesCount <= 0 {
				count = 0
			}
			return tx.Update(ref, []firestore.Update{
				{Path: "favorites", Value: firestore.ArrayRemove(email)},
				{Path: "favoritesCount", Value: count},
			})
		}
		favorited = true
		return tx.Update(ref, []firestore.Update{
			{Path: "favorites", Value: firestore.ArrayUnion(email)},
			{Path: "favoritesCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return false, wrapLessonErr(lessonID, "toggle favorite on", err)
	}
	return favorited, nil
}

// IncrementReportCount atomically adds one to reportCount.
func (r *firestoreLessonRepository) IncrementReportCount(ctx context.Context, lessonID string) error {
	_, err := r.doc(lessonID).Update(ctx, []firestore.Update{
		{Path: "reportCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		return wrapLessonErr(lessonID, "increment report count on", err)
	}
	return nil
}

// ResetReportCount sets reportCount to exactly zero.
func (r *firestoreLessonRepository) ResetReportCount(ctx context.Context, lessonID string) error {
	_, err := r.doc(lessonID).Update(ctx, []firestore.Update{
		{Path: "reportCount", Value: 0},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return wrapLessonErr(lessonID, "reset report count on", err)
	}
	return nil
}

// getLessonTx loads a live lesson inside a transaction. Soft-deleted lessons
// are reported as not found.
func getLessonTx(tx *firestore.Transaction, ref *firestore.DocumentRef) (*models.Lesson, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		return nil, err
	}
	lesson, err := decodeLesson(snap)
	if err != nil {
		return nil, err
	}
	if lesson.IsDeleted {
		return nil, fmt.Errorf("lesson '%s' is deleted: %w", ref.ID, ErrNotFound)
	}
	return lesson, nil
}

func decodeLesson(snap *firestore.DocumentSnapshot) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := snap.DataTo(&lesson); err != nil {
		return nil, fmt.Errorf("failed to decode lesson data for ID '%s': %w", snap.Ref.ID, err)
	}
	lesson.ID = snap.Ref.ID
	return &lesson, nil
}

func wrapLessonErr(lessonID, action string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("lesson with ID '%s' not found: %w", lessonID, ErrNotFound)
	}
	return fmt.Errorf("failed to %s lesson '%s': %w", action, lessonID, err)
}
