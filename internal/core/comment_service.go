package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
)

const maxCommentLength = 2000

// commentService implements the CommentService interface.
type commentService struct {
	commentRepo db.CommentRepository
	lessonRepo  db.LessonRepository
	userRepo    db.UserRepository
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(commentRepo db.CommentRepository, lessonRepo db.LessonRepository, userRepo db.UserRepository) CommentService {
	return &commentService{commentRepo: commentRepo, lessonRepo: lessonRepo, userRepo: userRepo}
}

// List returns the comments of a lesson, newest first.
func (s *commentService) List(ctx context.Context, lessonID string) ([]*models.Comment, error) {
	if err := validateID("lesson", lessonID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of lesson '%s': %w", lessonID, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// Create posts a comment. The author's name and picture are copied from the
// user record at the time of posting.
func (s *commentService) Create(ctx context.Context, caller models.Identity, lessonID, content string) (*models.Comment, error) {
	if err := validateID("lesson", lessonID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, InvalidInputError("Comment is required")
	}
	if len(content) > maxCommentLength {
		return nil, InvalidInputError(fmt.Sprintf("Comment cannot exceed %d characters", maxCommentLength))
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, storeErr(err, "Lesson not found", "failed to get lesson")
	}
	if lesson.IsDeleted {
		return nil, NotFoundError("Lesson not found")
	}

	comment := &models.Comment{
		LessonID:  lessonID,
		UserEmail: caller.Email,
		UserName:  models.AnonymousName,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	user, err := s.userRepo.GetByEmail(ctx, caller.Email)
	switch {
	case err == nil:
		comment.UserName = firstNonEmpty(user.DisplayName, models.AnonymousName)
		comment.UserImg = user.PhotoURL
	case !isNotFound(err):
		return nil, fmt.Errorf("failed to load commenter '%s': %w", caller.Email, err)
	}

	if _, err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}
	return comment, nil
}
