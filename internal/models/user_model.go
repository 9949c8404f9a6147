package models

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user of the platform.
// The document ID is the Firebase Auth UID; email is unique and never changes.
type User struct {
	ID            string    `json:"id" firestore:"-"`
	Email         string    `json:"email" firestore:"email"`
	DisplayName   string    `json:"displayName,omitempty" firestore:"displayName"`
	PhotoURL      string    `json:"photoURL,omitempty" firestore:"photoURL"`
	Role          string    `json:"role" firestore:"role"`
	IsPremium     bool      `json:"isPremium" firestore:"isPremium"`
	TransactionID string    `json:"transactionId,omitempty" firestore:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Identity is the verified caller of a request.
// It is produced by the token verifier and threaded explicitly through every
// operation that acts on behalf of a user.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// ProfileStats summarizes a user's activity.
type ProfileStats struct {
	Created int `json:"created"`
	Saved   int `json:"saved"`
}
