package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"lifelessons-backend-go/internal/models"
)

// firestoreCommentRepository implements the CommentRepository interface using Firestore.
type firestoreCommentRepository struct {
	client *firestore.Client
}

// NewFirestoreCommentRepository creates a new instance of firestoreCommentRepository.
func NewFirestoreCommentRepository(client *firestore.Client) CommentRepository {
	return &firestoreCommentRepository{client: client}
}

// Create adds a new comment document with an auto-generated ID.
func (r *firestoreCommentRepository) Create(ctx context.Context, comment *models.Comment) (string, error) {
	docRef := r.client.Collection(commentsCollection).NewDoc()
	comment.ID = docRef.ID
	if _, err := docRef.Create(ctx, comment); err != nil {
		return "", fmt.Errorf("failed to create comment on lesson '%s': %w", comment.LessonID, err)
	}
	return docRef.ID, nil
}

// ListByLesson returns the comments on lessonID, newest first.
func (r *firestoreCommentRepository) ListByLesson(ctx context.Context, lessonID string) ([]*models.Comment, error) {
	iter := r.client.Collection(commentsCollection).
		Where("lessonId", "==", lessonID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var comments []*models.Comment
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate comments for lesson '%s': %w", lessonID, err)
		}
		var comment models.Comment
		if err := doc.DataTo(&comment); err != nil {
			return nil, fmt.Errorf("failed to decode comment '%s': %w", doc.Ref.ID, err)
		}
		comment.ID = doc.Ref.ID
		comments = append(comments, &comment)
	}
	return comments, nil
}
