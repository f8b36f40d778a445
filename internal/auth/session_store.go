package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"todoapp/internal/cache"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound is returned when a session is absent, expired or revoked.
var ErrSessionNotFound = fmt.Errorf("session not found")

// SessionStoreInterface defines the interface for session storage operations.
type SessionStoreInterface interface {
	StoreSession(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (userID uint, email string, err error)
	DeleteSession(ctx context.Context, tokenID string) error
}

// SessionStore handles storage and retrieval of live sessions in Redis.
// Expiry is enforced by the key TTL; logout deletes the key.
type SessionStore struct {
	cache *cache.Client
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

type sessionData struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// StoreSession stores a session in Redis with TTL.
func (s *SessionStore) StoreSession(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error {
	payload, err := json.Marshal(sessionData{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+tokenID, payload, ttl)
}

// GetSession retrieves session data from Redis.
func (s *SessionStore) GetSession(ctx context.Context, tokenID string) (uint, string, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+tokenID)
	if err != nil {
		return 0, "", fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return 0, "", ErrSessionNotFound
	}

	var sess sessionData
	if err := json.Unmarshal(data, &sess); err != nil {
		return 0, "", fmt.Errorf("unmarshal session data: %w", err)
	}
	return sess.UserID, sess.Email, nil
}

// DeleteSession removes a session from Redis.
func (s *SessionStore) DeleteSession(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+tokenID)
}
