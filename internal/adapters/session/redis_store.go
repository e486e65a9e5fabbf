package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bhamfamilies/directory/internal/domain/providers"
	redisclient "github.com/bhamfamilies/directory/internal/infrastructure/clients/redis"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis, one key per session id with the TTL
// doing the expiry. There is no sliding renewal; a session lives exactly as
// long as the login grant.
type RedisStore struct {
	client *redisclient.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redisclient.Client) providers.SessionStore {
	return &RedisStore{client: client}
}

// Create issues a new opaque session id for the user.
func (s *RedisStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	sessionID := uuid.NewString()
	if err := s.client.Client().Set(ctx, keyPrefix+sessionID, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, nil
}

// Lookup resolves a session id to its user id. Missing and expired
// sessions are indistinguishable to Redis, so both come back unauthorized.
func (s *RedisStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Client().Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", apperrors.NewUnauthorizedError("session not found or expired")
	}
	if err != nil {
		return "", apperrors.NewInternalError("failed to look up session", err)
	}
	return userID, nil
}

// Delete revokes a session. Deleting an unknown session is a no-op.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Client().Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
