// Package ports defines shared interfaces for the access module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks KVStore,SessionDirectory,Notifier,Clock

import (
	"context"
	"time"

	"aegis/internal/access/models"
	id "aegis/pkg/domain"
)

// KVStore is the shared key-value store every access component persists to.
// Implementations must be safe for concurrent use across processes; a value
// written by one process is visible to every other process sharing the store.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// SessionDirectory enumerates and revokes sessions owned by the authentication module.
type SessionDirectory interface {
	// Create persists a new session.
	Create(ctx context.Context, session *models.SessionRecord) error

	// ListNonExpired returns the user's sessions whose ExpiresAt is after now.
	ListNonExpired(ctx context.Context, userID id.UserID, now time.Time) ([]*models.SessionRecord, error)

	// Delete revokes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// Notifier delivers user-facing security notifications.
type Notifier interface {
	Send(ctx context.Context, userID id.UserID, eventType string, data map[string]any) error
}

// Clock is the injected time source.
type Clock interface {
	Now() time.Time
}
