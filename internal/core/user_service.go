package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
)

// userService implements the UserService interface.
type userService struct {
	userRepo   db.UserRepository
	lessonRepo db.LessonRepository
	savedRepo  db.SavedLessonRepository
	logger     *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, lessonRepo db.LessonRepository, savedRepo db.SavedLessonRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		lessonRepo: lessonRepo,
		savedRepo:  savedRepo,
		logger:     logger,
	}
}

// GetOrCreate registers the caller on first sign-in. The email and UID come from
// the verified token; the request may only supply a display name and photo,
// falling back to the token's claims.
func (s *userService) GetOrCreate(ctx context.Context, caller models.Identity, req models.CreateUserRequest) (*models.User, bool, error) {
	if err := validateEmail(caller.Email); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	newUser := &models.User{
		ID:          caller.UID,
		Email:       caller.Email,
		DisplayName: firstNonEmpty(strings.TrimSpace(req.DisplayName), caller.DisplayName),
		PhotoURL:    firstNonEmpty(strings.TrimSpace(req.PhotoURL), caller.PhotoURL),
		Role:        models.RoleUser,
		IsPremium:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	user, created, err := s.userRepo.CreateIfAbsent(ctx, newUser)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get or create user '%s': %w", caller.Email, err)
	}
	if created {
		s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	}
	return withoutTransaction(user), created, nil
}

// GetProfile returns the user registered with email, without its payment reference.
func (s *userService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, "User not found", "failed to get user profile")
	}
	return withoutTransaction(user), nil
}

// ProfileStats counts the lessons the user authored and the lessons they saved.
func (s *userService) ProfileStats(ctx context.Context, email string) (*models.ProfileStats, error) {
	created, err := s.lessonRepo.Count(ctx, models.LessonQuery{AuthorEmail: email})
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons for '%s': %w", email, err)
	}
	saved, err := s.savedRepo.CountByUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to count saved lessons for '%s': %w", email, err)
	}
	return &models.ProfileStats{Created: created, Saved: saved}, nil
}

// UpdateProfile changes the display name and photo of the user with email.
func (s *userService) UpdateProfile(ctx context.Context, email string, req models.UpdateProfileRequest) error {
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		req.DisplayName = &name
	}
	if req.PhotoURL != nil {
		photo := strings.TrimSpace(*req.PhotoURL)
		req.PhotoURL = &photo
	}
	if err := s.userRepo.UpdateProfile(ctx, email, req); err != nil {
		return storeErr(err, "User not found", "failed to update profile")
	}
	return nil
}

// Role returns the role of the user with email.
func (s *userService) Role(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", storeErr(err, "User not found", "failed to get user role")
	}
	return user.Role, nil
}

// IsPremium reports whether the user with email has premium membership.
// Unknown users are not premium.
func (s *userService) IsPremium(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get premium status: %w", err)
	}
	return user.IsPremium, nil
}

// List returns every registered user.
func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateRole sets the role of the user with userID.
func (s *userService) UpdateRole(ctx context.Context, userID, role string) error {
	if err := validateID("user", userID); err != nil {
		return err
	}
	if !validRole(role) {
		return InvalidInputError("Invalid role")
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return storeErr(err, "User not found", "failed to update role")
	}
	s.logger.Info("User role updated", zap.String("user_id", userID), zap.String("role", role))
	return nil
}

// Delete removes the user with userID.
func (s *userService) Delete(ctx context.Context, userID string) error {
	if err := validateID("user", userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return storeErr(err, "User not found", "failed to delete user")
	}
	s.logger.Info("User deleted", zap.String("user_id", userID))
	return nil
}

// RequireAdmin fails with ErrForbidden when email has no user record or the
// record is not an admin. Lookup failures are server errors.
func (s *userService) RequireAdmin(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ForbiddenError("Forbidden access")
		}
		return fmt.Errorf("failed to look up role for '%s': %w", email, err)
	}
	if !user.IsAdmin() {
		return ForbiddenError("Forbidden access")
	}
	return nil
}

func withoutTransaction(user *models.User) *models.User {
	u := *user
	u.TransactionID = ""
	return &u
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
