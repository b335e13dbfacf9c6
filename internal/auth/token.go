package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: st_{secret}
// Example: st_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const (
	// TokenSecretLen is the secret length (hex encoded 32 bytes).
	TokenSecretLen = 64
)

var (
	// ErrInvalidTokenFormat indicates the session token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^st_[a-f0-9]{64}$`)
)

// NewSessionToken generates an opaque session token from 32 bytes of
// OS entropy. The token is shown to the client once and never persisted
// in raw form.
func NewSessionToken() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return fmt.Sprintf("st_%s", hex.EncodeToString(secretBytes)), nil
}

// ValidateTokenFormat checks if the token matches the expected format.
// Used to reject garbage before any store lookup happens.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
