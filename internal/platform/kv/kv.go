// Package kv provides the shared key-value store adapters used by the access
// services: Redis in production, an in-memory TTL map for tests and single
// process deployments, and a wrapper that bounds every round trip.
package kv

import (
	"context"
	"time"
)

// Store is the get/set/delete contract with TTL support.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
