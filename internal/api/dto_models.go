package api

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// SuccessResponse is the body of mutations that return nothing else.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateUserResponse is returned by POST /users.
type CreateUserResponse struct {
	Success bool        `json:"success"`
	Created bool        `json:"created"`
	User    interface{} `json:"user"`
}

// LikeResponse is returned by PATCH /lessons/:id/like.
type LikeResponse struct {
	Success bool `json:"success"`
	IsLiked bool `json:"isLiked"`
}

// FavoriteResponse is returned by PATCH /lessons/:id/favorite.
type FavoriteResponse struct {
	Success     bool   `json:"success"`
	IsFavorited bool   `json:"isFavorited"`
	Message     string `json:"message"`
}

// FeaturedLessonsResponse is returned by GET /lessons/featured.
type FeaturedLessonsResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Lessons interface{} `json:"lessons"`
}

// RoleResponse is returned by GET /users/:email/role. Role is null when the user is unknown.
type RoleResponse struct {
	Role    *string `json:"role"`
	Message string  `json:"message,omitempty"`
}

// PremiumResponse is returned by GET /users/:email/isPremium.
type PremiumResponse struct {
	IsPremium bool `json:"isPremium"`
}
