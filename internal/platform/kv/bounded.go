package kv

import (
	"context"
	"time"

	dErrors "aegis/pkg/domain-errors"
)

// DefaultTimeout bounds a store round trip when no timeout is configured.
const DefaultTimeout = 250 * time.Millisecond

// Bounded wraps a Store so that every call carries a deadline and every
// failure surfaces as a CodeStoreUnavailable domain error.
type Bounded struct {
	next    Store
	timeout time.Duration
}

// NewBounded wraps next. A non-positive timeout uses DefaultTimeout.
func NewBounded(next Store, timeout time.Duration) *Bounded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bounded{next: next, timeout: timeout}
}

func (b *Bounded) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	value, found, err := b.next.Get(ctx, key)
	if err != nil {
		return nil, false, unavailable(ctx, err, "store get failed")
	}
	return value, found, nil
}

func (b *Bounded) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.next.Set(ctx, key, value, ttl); err != nil {
		return unavailable(ctx, err, "store set failed")
	}
	return nil
}

func (b *Bounded) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.next.Delete(ctx, key); err != nil {
		return unavailable(ctx, err, "store delete failed")
	}
	return nil
}

func unavailable(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil {
		msg += ": " + ctx.Err().Error()
	}
	return &dErrors.Error{Code: dErrors.CodeStoreUnavailable, Message: msg, Err: err}
}
