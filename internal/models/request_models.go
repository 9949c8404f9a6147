package models

// CreateUserRequest is the body of POST /users. Identity fields come from the token.
type CreateUserRequest struct {
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// UpdateProfileRequest represents a partial profile update.
// Pointers are used to distinguish between empty values and fields not provided.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

// UpdateRoleRequest is the body of PATCH /users/:id/role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateLessonRequest lists every field a client may set on a new lesson.
// Author, counters and moderation flags are never read from the body.
type CreateLessonRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	EmotionalTone string `json:"emotionalTone"`
	Image         string `json:"image"`
	Visibility    string `json:"visibility"`
	AccessLevel   string `json:"accessLevel"`
}

// UpdateLessonRequest represents the request body for editing an existing lesson.
type UpdateLessonRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	EmotionalTone *string `json:"emotionalTone,omitempty"`
	Image         *string `json:"image,omitempty"`
	Visibility    *string `json:"visibility,omitempty"`
	AccessLevel   *string `json:"accessLevel,omitempty"`
}

// FeaturedRequest is the body of PATCH /lessons/:id/featured.
type FeaturedRequest struct {
	Featured *bool `json:"featured"`
}

// ReviewedRequest is the body of PATCH /lessons/:id/reviewed.
type ReviewedRequest struct {
	IsReviewed *bool `json:"isReviewed"`
}

// ReportRequest is the body of POST /lessons/:id/report.
type ReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CommentRequest is the body of POST /lessons/:id/comments.
type CommentRequest struct {
	Content string `json:"content"`
}
