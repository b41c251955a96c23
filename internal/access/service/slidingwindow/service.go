// Package slidingwindow counts events per key over a trailing time window.
//
// Each key stores the timestamps of its recent events as a JSON array of
// unix nanoseconds in the shared store, with a TTL equal to the window.
// Reads and writes are independent round trips: two concurrent callers may
// both observe N < max and both append, admitting at most one extra event per
// in-flight caller. The limiter never admits fewer events than configured.
// WithKeyLock serializes updates to a key within one process; it does not
// extend across processes sharing the store.
package slidingwindow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"aegis/internal/access/models"
	"aegis/internal/access/ports"
	dErrors "aegis/pkg/domain-errors"
	psync "aegis/pkg/platform/sync"
)

// DefaultMaxStoredEvents caps the timestamps persisted per key.
const DefaultMaxStoredEvents = 100

type Limiter struct {
	store     ports.KVStore
	clock     ports.Clock
	maxStored int
	locks     *psync.KeyLock
	logger    *slog.Logger
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithMaxStoredEvents caps the persisted sequence. A limit larger than the
// cap still counts correctly: the cap is raised to maxEvents per call.
func WithMaxStoredEvents(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.maxStored = n
		}
	}
}

// WithKeyLock serializes read-modify-write cycles per key in this process.
func WithKeyLock(locks *psync.KeyLock) Option {
	return func(l *Limiter) {
		l.locks = locks
	}
}

func New(store ports.KVStore, clock ports.Clock, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("sliding window store is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("sliding window clock is required")
	}

	l := &Limiter{
		store:     store,
		clock:     clock,
		maxStored: DefaultMaxStoredEvents,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CheckAndRecord admits one event for key unless maxEvents events already
// fall inside the window. A denied call records nothing.
func (l *Limiter) CheckAndRecord(ctx context.Context, key string, maxEvents int, window time.Duration) (allowed bool, remaining int, err error) {
	if err := checkArgs(key, window); err != nil {
		return false, 0, err
	}
	if maxEvents <= 0 {
		return false, 0, dErrors.New(dErrors.CodeInvariantViolation, "max events must be positive")
	}

	err = l.update(key, func() error {
		now := l.clock.Now()
		events, err := l.load(ctx, key)
		if err != nil {
			return err
		}
		events = trim(events, now, window)

		if len(events) >= maxEvents {
			return nil
		}

		events = append(events, now.UnixNano())
		if err := l.save(ctx, key, events, window, maxEvents); err != nil {
			return err
		}
		allowed, remaining = true, maxEvents-len(events)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return allowed, remaining, nil
}

// Peek reports how many events for key fall inside the window, without
// recording one.
func (l *Limiter) Peek(ctx context.Context, key string, window time.Duration) (models.WindowState, error) {
	if err := checkArgs(key, window); err != nil {
		return models.WindowState{}, err
	}

	now := l.clock.Now()
	events, err := l.load(ctx, key)
	if err != nil {
		return models.WindowState{}, err
	}
	events = trim(events, now, window)

	state := models.WindowState{Count: len(events)}
	if oldest, ok := oldest(events); ok {
		state.ResetAt = time.Unix(0, oldest).Add(window)
	}
	return state, nil
}

// Record appends an event for key unconditionally and returns the count
// inside the window after recording, at most Capacity. An empty key is a no-op.
func (l *Limiter) Record(ctx context.Context, key string, window time.Duration) (int, error) {
	if key == "" {
		return 0, nil
	}
	if err := checkArgs(key, window); err != nil {
		return 0, err
	}

	var count int
	err := l.update(key, func() error {
		now := l.clock.Now()
		events, err := l.load(ctx, key)
		if err != nil {
			return err
		}
		events = append(trim(events, now, window), now.UnixNano())
		if err := l.save(ctx, key, events, window, 0); err != nil {
			return err
		}
		count = min(len(events), l.maxStored)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Capacity is the number of timestamps Record keeps per key. Limits checked
// with Peek against recorded keys must not exceed it.
func (l *Limiter) Capacity() int {
	return l.maxStored
}

// Reset forgets every event recorded for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := l.store.Delete(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to reset window")
	}
	return nil
}

func (l *Limiter) update(key string, fn func() error) error {
	if l.locks == nil {
		return fn()
	}
	return l.locks.Do(key, fn)
}

func (l *Limiter) load(ctx context.Context, key string) ([]int64, error) {
	raw, found, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read window")
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}

	var events []int64
	if err := json.Unmarshal(raw, &events); err != nil {
		if l.logger != nil {
			l.logger.WarnContext(ctx, "corrupt sliding window payload", "error", err)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to decode window")
	}
	return events, nil
}

func (l *Limiter) save(ctx context.Context, key string, events []int64, window time.Duration, maxEvents int) error {
	limit := max(l.maxStored, maxEvents)
	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	raw, err := json.Marshal(events)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode window")
	}
	if err := l.store.Set(ctx, key, raw, window); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to write window")
	}
	return nil
}

func checkArgs(key string, window time.Duration) error {
	if key == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "window key cannot be empty")
	}
	if window <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "window must be positive")
	}
	return nil
}

// trim drops events at or before now-window, preserving order.
func trim(events []int64, now time.Time, window time.Duration) []int64 {
	cutoff := now.Add(-window).UnixNano()
	kept := events[:0]
	for _, ts := range events {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	return kept
}

func oldest(events []int64) (int64, bool) {
	if len(events) == 0 {
		return 0, false
	}
	least := events[0]
	for _, ts := range events[1:] {
		least = min(least, ts)
	}
	return least, true
}
