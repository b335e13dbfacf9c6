// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/gatekeep/gatekeep/internal/model"
)

// SignupRequest represents the request body for registering an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for authenticating.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses.
// The password hash never appears here.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is returned by signup and login.
// The token is the only time the client ever sees the session secret.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ErrorResponse represents an API error.
// Email echoes the submitted address back on validation failures so
// clients can re-render the form.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Email string `json:"email,omitempty"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToSessionResponse builds the signup/login response payload.
func ToSessionResponse(user *model.User, session *model.Session) *SessionResponse {
	return &SessionResponse{
		User:      ToUserResponse(user),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}
}
