// Package bruteforce composes two sliding windows, one per client IP and one
// per username, into a lockout verdict for login attempts.
package bruteforce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aegis/internal/access/config"
	"aegis/internal/access/models"
	"aegis/internal/access/observability"
	"aegis/internal/access/ports"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/privacy"
	"aegis/pkg/validation"
)

// WindowCounter is the subset of the sliding window limiter the guard uses.
type WindowCounter interface {
	Peek(ctx context.Context, key string, window time.Duration) (models.WindowState, error)
	Record(ctx context.Context, key string, window time.Duration) (int, error)
}

type Guard struct {
	windows WindowCounter
	clock   ports.Clock
	logger  *slog.Logger
	config  *config.Config
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(g *Guard) {
		if cfg != nil {
			g.config = cfg
		}
	}
}

func New(windows WindowCounter, clock ports.Clock, opts ...Option) (*Guard, error) {
	if windows == nil {
		return nil, fmt.Errorf("brute force window counter is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("brute force clock is required")
	}

	g := &Guard{
		windows: windows,
		clock:   clock,
		config:  config.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if c, ok := windows.(interface{ Capacity() int }); ok {
		largest := max(g.config.IPLimit.MaxEvents, g.config.UsernameLimit.MaxEvents)
		if c.Capacity() < largest {
			return nil, fmt.Errorf("window capacity %d is below the largest lockout limit %d", c.Capacity(), largest)
		}
	}
	return g, nil
}

// Evaluate reports whether either scope has exhausted its window. It does not
// record an attempt. On a store failure the verdict is blocked until now plus
// the failing scope's window, and the cause is returned for the caller to log.
func (g *Guard) Evaluate(ctx context.Context, ip, username string) (models.LockoutStatus, error) {
	if err := validation.IP(ip); err != nil {
		return models.LockoutStatus{}, err
	}
	if err := validation.Username(username); err != nil {
		return models.LockoutStatus{}, err
	}

	now := g.clock.Now()
	ipState, err := g.windows.Peek(ctx, models.IPKey(ip).String(), g.config.IPLimit.Window)
	if err != nil {
		return g.failSafe(ctx, now, g.config.IPLimit.Window, "ip", err)
	}
	userState, err := g.windows.Peek(ctx, models.UsernameKey(username).String(), g.config.UsernameLimit.Window)
	if err != nil {
		return g.failSafe(ctx, now, g.config.UsernameLimit.Window, "username", err)
	}

	ipRemaining := g.config.IPLimit.MaxEvents - ipState.Count
	userRemaining := g.config.UsernameLimit.MaxEvents - userState.Count
	status := models.LockoutStatus{
		RemainingAttempts: max(min(ipRemaining, userRemaining), 0),
	}

	if ipRemaining <= 0 {
		status.IsBlocked = true
		status.BlockExpiresAt = latest(status.BlockExpiresAt, ipState.ResetAt)
	}
	if userRemaining <= 0 {
		status.IsBlocked = true
		status.BlockExpiresAt = latest(status.BlockExpiresAt, userState.ResetAt)
	}

	if status.IsBlocked {
		observability.LogAudit(ctx, g.logger, observability.EventLoginBlocked,
			"ip_prefix", privacy.AnonymizeIP(ip),
			"username", privacy.MaskUsername(username),
			"ip_blocked", ipRemaining <= 0,
			"username_blocked", userRemaining <= 0,
			"block_expires_at", status.BlockExpiresAt,
		)
	}
	return status, nil
}

// RecordAttempt appends one event to each scope so the windows advance
// regardless of outcome. An empty scope value is skipped.
func (g *Guard) RecordAttempt(ctx context.Context, ip, username string) error {
	var errs []error

	if ip != "" {
		if err := validation.IP(ip); err != nil {
			return err
		}
		if _, err := g.windows.Record(ctx, models.IPKey(ip).String(), g.config.IPLimit.Window); err != nil {
			errs = append(errs, err)
		}
	}
	if username != "" {
		if err := validation.Username(username); err != nil {
			return err
		}
		if _, err := g.windows.Record(ctx, models.UsernameKey(username).String(), g.config.UsernameLimit.Window); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return dErrors.Wrap(errors.Join(errs...), dErrors.CodeStoreUnavailable, "failed to record attempt")
	}
	return nil
}

func (g *Guard) failSafe(ctx context.Context, now time.Time, window time.Duration, scope string, cause error) (models.LockoutStatus, error) {
	observability.LogAudit(ctx, g.logger, observability.EventLockoutStoreDegraded,
		"scope", scope,
		"error", cause,
	)
	return models.LockoutStatus{
		IsBlocked:      true,
		BlockExpiresAt: now.Add(window),
	}, dErrors.Wrap(cause, dErrors.CodeStoreUnavailable, "lockout state unavailable")
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
