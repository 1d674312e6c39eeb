package dto

import "time"

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the payload for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UpdateProfileRequest is the payload for profile updates.
type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2"`
	Bio       string `json:"bio" validate:"omitempty,max=500"`
	Website   string `json:"website" validate:"omitempty,url"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// UserResponse is the user profile returned in API responses.
type UserResponse struct {
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	AvatarURL  string     `json:"avatar_url"`
	Bio        string     `json:"bio"`
	Website    string     `json:"website"`
	Role       string     `json:"role"`
	Plan       string     `json:"plan"`
	TotalBlogs int        `json:"total_blogs"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AuthResponse pairs a token with the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
