package models

import (
	"slices"
	"time"
)

// Visibility values for a lesson.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Access levels for a lesson.
const (
	AccessFree    = "free"
	AccessPremium = "premium"
)

// Lesson is a short post authored by a user.
//
// LikesCount and FavoritesCount cache the sizes of Likes and Favorites. They are
// only ever changed together with the matching set, inside one store transaction.
type Lesson struct {
	ID             string     `json:"id" firestore:"-"`
	AuthorEmail    string     `json:"authorEmail" firestore:"authorEmail"`
	AuthorName     string     `json:"authorName,omitempty" firestore:"authorName"`
	AuthorImage    string     `json:"authorImage,omitempty" firestore:"authorImage"`
	Title          string     `json:"title" firestore:"title"`
	Description    string     `json:"description" firestore:"description"`
	Category       string     `json:"category" firestore:"category"`
	EmotionalTone  string     `json:"emotionalTone" firestore:"emotionalTone"`
	Image          string     `json:"image,omitempty" firestore:"image"`
	Visibility     string     `json:"visibility" firestore:"visibility"`
	AccessLevel    string     `json:"accessLevel" firestore:"accessLevel"`
	Likes          []string   `json:"likes" firestore:"likes"`
	LikesCount     int        `json:"likesCount" firestore:"likesCount"`
	Favorites      []string   `json:"favorites" firestore:"favorites"`
	FavoritesCount int        `json:"favoritesCount" firestore:"favoritesCount"`
	ReportCount    int        `json:"reportCount" firestore:"reportCount"`
	Featured       bool       `json:"featured" firestore:"featured"`
	IsReviewed     bool       `json:"isReviewed" firestore:"isReviewed"`
	IsDeleted      bool       `json:"isDeleted" firestore:"isDeleted"`
	CreatedAt      time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt" firestore:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty" firestore:"deletedAt,omitempty"`
}

// IsPublic reports whether the lesson may be shown to anyone.
func (l *Lesson) IsPublic() bool {
	return l.Visibility == VisibilityPublic && !l.IsDeleted
}

// LikedBy reports whether email is in the like set.
func (l *Lesson) LikedBy(email string) bool {
	return slices.Contains(l.Likes, email)
}

// FavoritedBy reports whether email is in the favorite set.
func (l *Lesson) FavoritedBy(email string) bool {
	return slices.Contains(l.Favorites, email)
}

// LessonPatch carries the fields an author may change on an existing lesson.
// Nil fields are left untouched.
type LessonPatch struct {
	Title         *string
	Description   *string
	Category      *string
	EmotionalTone *string
	Image         *string
	Visibility    *string
	AccessLevel   *string
	Featured      *bool
	IsReviewed    *bool
	IsDeleted     *bool
	DeletedAt     *time.Time
}

// LessonQuery describes a filtered lesson listing.
// Zero values mean "no constraint"; soft-deleted lessons are excluded unless IncludeDeleted is set.
type LessonQuery struct {
	AuthorEmail    string
	PublicOnly     bool
	FeaturedOnly   bool
	ReportedOnly   bool
	IncludeDeleted bool
	Category       string
	EmotionalTone  string
	CreatedSince   time.Time
	OrderBy        string // one of the LessonOrder* constants; defaults to createdAt
	Limit          int
}

// Sort keys understood by LessonQuery. All orderings are descending.
const (
	LessonOrderCreatedAt      = "createdAt"
	LessonOrderUpdatedAt      = "updatedAt"
	LessonOrderFavoritesCount = "favoritesCount"
	LessonOrderNone           = "none"
)

// LessonAnalytics counts a user's lessons by weekday of creation, Sunday first.
type LessonAnalytics struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// FavoriteResult is the outcome of a favorite toggle.
type FavoriteResult struct {
	Favorited bool   `json:"isFavorited"`
	Message   string `json:"message"`
}
