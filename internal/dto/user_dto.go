package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/models"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the signed token together with the account snapshot.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileUpdateRequest mutates the public profile fields.
type ProfileUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=255"`
	Bio       *string `json:"bio" validate:"omitempty,max=1000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=512"`
	Location  *string `json:"location" validate:"omitempty,max=255"`
}

// SettingsUpdateRequest toggles notification and privacy preference flags.
// Nil fields are left untouched.
type SettingsUpdateRequest struct {
	PushNewFollowers *bool `json:"push_new_followers"`
	PushMessages     *bool `json:"push_messages"`
	PushPostLikes    *bool `json:"push_post_likes"`
	PushPostComments *bool `json:"push_post_comments"`
	PushPostShares   *bool `json:"push_post_shares"`
	PushReports      *bool `json:"push_reports"`
	PrivateProfile   *bool `json:"private_profile"`
}

// UserResponse is the serialized representation of an account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Location  string    `json:"location,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		Location:  user.Location,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponseSlice converts a slice of models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

// SettingsResponse echoes the current preference flags.
type SettingsResponse struct {
	PushNewFollowers bool `json:"push_new_followers"`
	PushMessages     bool `json:"push_messages"`
	PushPostLikes    bool `json:"push_post_likes"`
	PushPostComments bool `json:"push_post_comments"`
	PushPostShares   bool `json:"push_post_shares"`
	PushReports      bool `json:"push_reports"`
	PrivateProfile   bool `json:"private_profile"`
}

// NewSettingsResponse converts a model into a DTO.
func NewSettingsResponse(user models.User) SettingsResponse {
	return SettingsResponse{
		PushNewFollowers: user.PushNewFollowers,
		PushMessages:     user.PushMessages,
		PushPostLikes:    user.PushPostLikes,
		PushPostComments: user.PushPostComments,
		PushPostShares:   user.PushPostShares,
		PushReports:      user.PushReports,
		PrivateProfile:   user.PrivateProfile,
	}
}
