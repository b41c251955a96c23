// Package cleanup sweeps expired sessions out of directories that have no
// native expiry. The Redis directory relies on key TTLs and needs no sweeper.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"aegis/internal/access/metrics"
	"aegis/internal/access/ports"
)

// Result describes one sweep.
type Result struct {
	Removed  int
	Duration time.Duration
}

type ExpiredSessionStore interface {
	DeleteExpired(ctx context.Context, now time.Time) int
}

type Option func(*SessionSweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *SessionSweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *SessionSweeper) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SessionSweeper) {
		s.metrics = m
	}
}

type SessionSweeper struct {
	store    ExpiredSessionStore
	clock    ports.Clock
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

func New(store ExpiredSessionStore, clock ports.Clock, opts ...Option) *SessionSweeper {
	sweeper := &SessionSweeper{
		store:    store,
		clock:    clock,
		logger:   slog.Default(),
		interval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(sweeper)
	}
	return sweeper
}

// Start sweeps on every tick until ctx is cancelled.
func (s *SessionSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error("session_cleanup_failed", "error", err)
				if s.metrics != nil {
					s.metrics.ObserveSessionCleanup("error", 0, 0)
				}
				continue
			}
			s.logger.Info("session_cleanup_completed",
				"sessions_removed", res.Removed,
				"duration_ms", res.Duration.Milliseconds(),
			)
			if s.metrics != nil {
				s.metrics.ObserveSessionCleanup("success", res.Removed, res.Duration)
			}
		case <-ctx.Done():
			s.logger.Info("session cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single sweep. Logging is handled by the caller (Start).
func (s *SessionSweeper) RunOnce(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	removed := s.store.DeleteExpired(ctx, s.clock.Now())
	return &Result{Removed: removed, Duration: time.Since(start)}, nil
}
