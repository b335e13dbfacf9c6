package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gatekeep/gatekeep/internal/auth"
	"github.com/gatekeep/gatekeep/internal/model"
)

// sessionPrefix is the Redis key prefix for session records.
const sessionPrefix = "session:"

// cachedSession is the session record as stored in Redis. The raw token is
// not part of the record; sessions are keyed by a digest of the token.
type cachedSession struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SetSession stores a session record with the given TTL. Redis expiry is
// the source of truth for session lifetime.
func (c *Cache) SetSession(ctx context.Context, sess *model.Session, ttl time.Duration) error {
	key := sessionPrefix + auth.QuickHash(sess.Token)

	cached := cachedSession{
		ID:        sess.ID,
		UserID:    sess.UserID,
		UserEmail: sess.UserEmail,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetSession retrieves a session by its token.
// Returns nil if not found (miss, expired, or corrupted entry).
func (c *Cache) GetSession(ctx context.Context, token string) (*model.Session, error) {
	key := sessionPrefix + auth.QuickHash(token)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Session{
		ID:        cached.ID,
		Token:     token,
		UserID:    cached.UserID,
		UserEmail: cached.UserEmail,
		CreatedAt: cached.CreatedAt,
		ExpiresAt: cached.ExpiresAt,
	}, nil
}

// DeleteSession removes a session record. Used on logout.
func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	key := sessionPrefix + auth.QuickHash(token)
	return c.client.Del(ctx, key).Err()
}
