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

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

func (r *firestoreUserRepository) byEmail(email string) firestore.Query {
	return r.client.Collection(usersCollection).Where("email", "==", email).Limit(1)
}

// GetByID retrieves a user document by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	return decodeUser(docSnap)
}

// GetByEmail retrieves the user registered with email.
func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	snap, err := r.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return decodeUser(snap)
}

func (r *firestoreUserRepository) findByEmail(ctx context.Context, email string) (*firestore.DocumentSnapshot, error) {
	iter := r.byEmail(email).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, fmt.Errorf("user with email '%s' not found: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user with email '%s': %w", email, err)
	}
	return snap, nil
}

// CreateIfAbsent runs the email lookup and the insert in one transaction so
// two concurrent first sign-ins produce a single user document.
func (r *firestoreUserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, bool, error) {
	ref := r.client.Collection(usersCollection).NewDoc()
	if user.ID != "" {
		ref = r.client.Collection(usersCollection).Doc(user.ID)
	}

	var stored *models.User
	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored, created = nil, false
		snaps, err := tx.Documents(r.byEmail(user.Email)).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			stored, err = decodeUser(snaps[0])
			return err
		}
		if err := tx.Create(ref, user); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, false, fmt.Errorf("user with ID '%s' already exists under another email: %w", ref.ID, err)
		}
		return nil, false, fmt.Errorf("failed to create user '%s': %w", user.Email, err)
	}
	if created {
		user.ID = ref.ID
		stored = user
	}
	return stored, created, nil
}

// List returns every user, newest first.
func (r *firestoreUserRepository) List(ctx context.Context) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var users []*models.User
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Count returns the number of registered users.
func (r *firestoreUserRepository) Count(ctx context.Context) (int, error) {
	return countDocuments(ctx, r.client.Collection(usersCollection).Query)
}

// UpdateProfile writes only the profile fields present in req.
func (r *firestoreUserRepository) UpdateProfile(ctx context.Context, email string, req models.UpdateProfileRequest) error {
	snap, err := r.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	updates := []firestore.Update{{Path: "updatedAt", Value: firestore.ServerTimestamp}}
	if req.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "displayName", Value: *req.DisplayName})
	}
	if req.PhotoURL != nil {
		updates = append(updates, firestore.Update{Path: "photoURL", Value: *req.PhotoURL})
	}
	if _, err := snap.Ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update profile for '%s': %w", email, err)
	}
	return nil
}

// UpdateRole changes the role of the user with userID.
func (r *firestoreUserRepository) UpdateRole(ctx context.Context, userID, role string) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "role", Value: role},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
}

// Delete removes the user document with userID.
func (r *firestoreUserRepository) Delete(ctx context.Context, userID string) error {
	ref := r.client.Collection(usersCollection).Doc(userID)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user with ID '%s' not found for deletion: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete user with ID '%s': %w", userID, err)
	}
	return nil
}

// MarkPremium sets the premium flag and the latest transaction id with a
// field-level update, leaving the rest of the document untouched.
func (r *firestoreUserRepository) MarkPremium(ctx context.Context, email, transactionID string) error {
	snap, err := r.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = snap.Ref.Update(ctx, []firestore.Update{
		{Path: "isPremium", Value: true},
		{Path: "transactionId", Value: transactionID},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("failed to mark '%s' as premium: %w", email, err)
	}
	return nil
}

func (r *firestoreUserRepository) update(ctx context.Context, userID string, updates []firestore.Update) error {
	if userID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to update user with ID '%s': %w", userID, err)
	}
	return nil
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", snap.Ref.ID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

// countDocuments counts the documents matched by query by iterating them.
// Aggregation queries would be cheaper for large collections.
func countDocuments(ctx context.Context, query firestore.Query) (int, error) {
	iter := query.Select().Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return count, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count documents: %w", err)
		}
		count++
	}
}
