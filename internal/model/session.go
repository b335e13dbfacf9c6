package model

import "time"

// Session represents server-side state for an authenticated client,
// referenced by an opaque bearer token. The raw token is only held in
// memory on the issue path; the store keys sessions by a token digest.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
