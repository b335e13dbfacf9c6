package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gatekeep/gatekeep/internal/auth"
	"github.com/gatekeep/gatekeep/internal/model"
)

// ErrSessionNotFound is returned when no live session matches a token.
var ErrSessionNotFound = errors.New("session not found")

// SessionCache is the keyed session store the service depends on.
type SessionCache interface {
	SetSession(ctx context.Context, sess *model.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// SessionService issues, resolves, and destroys sessions. Sessions are
// referenced by opaque bearer tokens; the store keys them by token digest.
type SessionService struct {
	cache  SessionCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(cache SessionCache, ttl time.Duration, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create issues a new session for the given user.
func (s *SessionService) Create(ctx context.Context, user *model.User) (*model.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	now := time.Now().UTC()
	sess := &model.Session{
		ID:        ulid.Make().String(),
		Token:     token,
		UserID:    user.ID,
		UserEmail: user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.cache.SetSession(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("session created",
		slog.String("session_id", sess.ID),
		slog.Int64("user_id", sess.UserID),
	)

	return sess, nil
}

// Get resolves a token to its session. Garbage tokens are rejected before
// any store lookup; expired or unknown tokens yield ErrSessionNotFound.
func (s *SessionService) Get(ctx context.Context, token string) (*model.Session, error) {
	if !auth.ValidateTokenFormat(token) {
		return nil, ErrSessionNotFound
	}

	sess, err := s.cache.GetSession(ctx, token)
	if err != nil {
		s.logger.Error("session lookup failed", slog.String("error", err.Error()))
		return nil, ErrSessionNotFound
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	// The store TTL normally handles expiry; this guards against stores
	// without native expiration.
	if sess.Expired() {
		_ = s.cache.DeleteSession(ctx, token)
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Destroy removes a session. Destroying an unknown token is not an error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if !auth.ValidateTokenFormat(token) {
		return nil
	}

	if err := s.cache.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	return nil
}
