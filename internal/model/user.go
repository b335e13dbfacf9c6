// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account. PasswordHash is only populated on
// the credential-verification path and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy of the user with the password hash stripped.
func (u *User) Public() *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
