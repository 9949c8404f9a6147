package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifelessons-backend-go/internal/models"
)

// savedLessonNamespace scopes the deterministic IDs of favorites index entries.
var savedLessonNamespace = uuid.MustParse("6f1d2c8e-6a51-4d38-9a55-3f0b8f6c2e17")

// SavedLessonID returns the document ID of the index entry for (lessonID, email).
// The ID is derived from the pair, so an upsert can never create a duplicate entry.
func SavedLessonID(lessonID, email string) string {
	return uuid.NewSHA1(savedLessonNamespace, []byte(lessonID+"\x00"+email)).String()
}

// firestoreSavedLessonRepository implements SavedLessonRepository using Firestore.
type firestoreSavedLessonRepository struct {
	client *firestore.Client
}

// NewFirestoreSavedLessonRepository creates a new instance of firestoreSavedLessonRepository.
func NewFirestoreSavedLessonRepository(client *firestore.Client) SavedLessonRepository {
	return &firestoreSavedLessonRepository{client: client}
}

// Sync reads the lesson and the index entry in one transaction and writes
// whatever is needed for the entry to mirror the lesson's favorite set.
// Because the lesson is read inside the transaction, the last Sync to commit
// always observes the final membership, which is what makes concurrent
// toggles by the same user converge.
func (r *firestoreSavedLessonRepository) Sync(ctx context.Context, lessonID, email string) (bool, error) {
	lessonRef := r.client.Collection(lessonsCollection).Doc(lessonID)
	entryRef := r.client.Collection(savedLessonsCollection).Doc(SavedLessonID(lessonID, email))

	var saved bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		saved = false
		lessonSnap, err := tx.Get(lessonRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		entrySnap, err := tx.Get(entryRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		entryExists := entrySnap != nil && entrySnap.Exists()

		var lesson *models.Lesson
		if lessonSnap != nil && lessonSnap.Exists() {
			if lesson, err = decodeLesson(lessonSnap); err != nil {
				return err
			}
		}

		want := lesson != nil && lesson.FavoritedBy(email)
		saved = want
		switch {
		case want && !entryExists:
			return tx.Set(entryRef, models.SavedLesson{
				LessonID:  lessonID,
				UserEmail: email,
				Title:     lesson.Title,
				Image:     lesson.Image,
			})
		case !want && entryExists:
			return tx.Delete(entryRef)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to sync saved lesson '%s' for '%s': %w", lessonID, email, err)
	}
	return saved, nil
}

// Exists reports whether the index entry for (lessonID, email) is present.
func (r *firestoreSavedLessonRepository) Exists(ctx context.Context, lessonID, email string) (bool, error) {
	_, err := r.client.Collection(savedLessonsCollection).Doc(SavedLessonID(lessonID, email)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to read saved lesson '%s' for '%s': %w", lessonID, email, err)
	}
	return true, nil
}

// ListByUser returns the user's index entries, most recently saved first.
func (r *firestoreSavedLessonRepository) ListByUser(ctx context.Context, email string) ([]*models.SavedLesson, error) {
	iter := r.client.Collection(savedLessonsCollection).
		Where("userEmail", "==", email).
		OrderBy("savedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*models.SavedLesson
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate saved lessons for '%s': %w", email, err)
		}
		var entry models.SavedLesson
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode saved lesson '%s': %w", doc.Ref.ID, err)
		}
		entry.ID = doc.Ref.ID
		entries = append(entries, &entry)
	}
	return entries, nil
}

// CountByUser returns the number of index entries for email.
func (r *firestoreSavedLessonRepository) CountByUser(ctx context.Context, email string) (int, error) {
	return countDocuments(ctx, r.client.Collection(savedLessonsCollection).Where("userEmail", "==", email))
}

// DeleteByLesson removes every index entry pointing at lessonID.
func (r *firestoreSavedLessonRepository) DeleteByLesson(ctx context.Context, lessonID string) error {
	query := r.client.Collection(savedLessonsCollection).Where("lessonId", "==", lessonID)
	if _, err := deleteMatching(ctx, r.client, query); err != nil {
		return fmt.Errorf("failed to delete saved lessons for lesson '%s': %w", lessonID, err)
	}
	return nil
}

// deleteMatching deletes the documents matched by query in batches of at most
// maxBatchWrites and returns the number deleted. Delete is idempotent, so a
// failed run can simply be repeated.
func deleteMatching(ctx context.Context, client *firestore.Client, query firestore.Query) (int, error) {
	iter := query.Select().Documents(ctx)
	defer iter.Stop()

	deleted := 0
	batch := client.Batch()
	pending := 0
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return deleted, err
		}
		batch.Delete(doc.Ref)
		pending++
		if pending == maxBatchWrites {
			if _, err := batch.Commit(ctx); err != nil {
				return deleted, err
			}
			deleted += pending
			batch = client.Batch()
			pending = 0
		}
	}
	if pending > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return deleted, err
		}
		deleted += pending
	}
	return deleted, nil
}
