package providers

import (
	"context"
	"time"
)

// SessionStore defines the interface for the cookie-session backing store.
// Sessions belong to the external identity flow; this service only creates
// them after a completed login redirect and resolves them on each request.
type SessionStore interface {
	// Create issues a new session id for the user
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)

	// Lookup resolves a session id to a user id; a missing or expired
	// session yields an unauthorized error
	Lookup(ctx context.Context, sessionID string) (string, error)

	// Delete revokes a session
	Delete(ctx context.Context, sessionID string) error
}
