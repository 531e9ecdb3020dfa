// Package session holds refresh-token state in Redis so logout and
// 401 handling can invalidate sessions across API instances.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no refresh token is stored for
// the user, i.e. the session was revoked or expired.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps one refresh token per user. Saving overwrites the
// previous token, which implicitly revokes older sessions.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return "session:refresh:" + userID
}

// SaveRefreshToken stores the user's current refresh token.
func (s *Store) SaveRefreshToken(ctx context.Context, userID, token string) error {
	if err := s.rdb.Set(ctx, key(userID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// ValidateRefreshToken checks the presented token against the stored
// one. A mismatch means the token was rotated or the session revoked.
func (s *Store) ValidateRefreshToken(ctx context.Context, userID, token string) error {
	stored, err := s.rdb.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to read refresh token: %w", err)
	}
	if stored != token {
		return ErrSessionNotFound
	}
	return nil
}

// Revoke drops the user's session.
func (s *Store) Revoke(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
