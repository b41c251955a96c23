// Package history keeps the per-user login history the risk signals are
// derived from: addresses of recent successful logins and the trailing
// window of failed credential checks.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"aegis/internal/access/config"
	"aegis/internal/access/models"
	"aegis/internal/access/ports"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

// WindowCounter is the subset of the sliding window limiter the tracker uses.
type WindowCounter interface {
	Peek(ctx context.Context, key string, window time.Duration) (models.WindowState, error)
	Record(ctx context.Context, key string, window time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}

// knownIPs maps address to the last successful login from it.
type knownIPs map[string]time.Time

type Tracker struct {
	store   ports.KVStore
	windows WindowCounter
	clock   ports.Clock
	logger  *slog.Logger
	risk    config.RiskConfig
	fail    config.FailureConfig
	// thresholds are the failure counts that carry a notification marker
	thresholds []int
}

type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(t *Tracker) {
		if cfg == nil {
			return
		}
		if cfg.Risk.KnownLocationWindow > 0 {
			t.risk.KnownLocationWindow = cfg.Risk.KnownLocationWindow
		}
		if cfg.Risk.MaxKnownLocations > 0 {
			t.risk.MaxKnownLocations = cfg.Risk.MaxKnownLocations
		}
		if cfg.Failures.Window > 0 {
			t.fail.Window = cfg.Failures.Window
		}
		t.thresholds = cfg.NotificationThresholds()
	}
}

func New(store ports.KVStore, windows WindowCounter, clock ports.Clock, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if windows == nil {
		return nil, fmt.Errorf("history window counter is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("history clock is required")
	}

	defaults := config.DefaultConfig()
	t := &Tracker{
		store:      store,
		windows:    windows,
		clock:      clock,
		risk:       defaults.Risk,
		fail:       defaults.Failures,
		thresholds: defaults.NotificationThresholds(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// IsNewLocation reports whether ip is absent from the user's recent
// successful logins. A user without history is always at a new location.
func (t *Tracker) IsNewLocation(ctx context.Context, userID id.UserID, ip string) (bool, error) {
	if userID.IsNil() {
		return true, nil
	}
	known, err := t.loadKnown(ctx, userID)
	if err != nil {
		return false, err
	}
	lastSeen, ok := known[models.CanonicalIP(ip)]
	if !ok {
		return true, nil
	}
	return t.clock.Now().Sub(lastSeen) > t.risk.KnownLocationWindow, nil
}

// RememberLocation records ip as a successful-login address for the user.
// The set keeps at most MaxKnownLocations entries, dropping the stalest.
func (t *Tracker) RememberLocation(ctx context.Context, userID id.UserID, ip string) error {
	if userID.IsNil() || ip == "" {
		return nil
	}

	now := t.clock.Now()
	known, err := t.loadKnown(ctx, userID)
	if err != nil {
		return err
	}
	for addr, seen := range known {
		if now.Sub(seen) > t.risk.KnownLocationWindow {
			delete(known, addr)
		}
	}
	known[models.CanonicalIP(ip)] = now
	for len(known) > t.risk.MaxKnownLocations {
		delete(known, stalest(known))
	}

	raw, err := json.Marshal(known)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode known locations")
	}
	if err := t.store.Set(ctx, models.KnownIPsKey(userID).String(), raw, t.risk.KnownLocationWindow); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to write known locations")
	}
	return nil
}

// FailedAttempts returns the failed credential checks for username inside
// the failure window.
func (t *Tracker) FailedAttempts(ctx context.Context, username string) (int, error) {
	state, err := t.windows.Peek(ctx, models.FailedAttemptsKey(username).String(), t.fail.Window)
	if err != nil {
		return 0, err
	}
	return state.Count, nil
}

// RecordFailure appends a failed credential check and returns the count
// inside the window after recording.
func (t *Tracker) RecordFailure(ctx context.Context, username string) (int, error) {
	return t.windows.Record(ctx, models.FailedAttemptsKey(username).String(), t.fail.Window)
}

// ClearFailures forgets the failure window of username and every
// notification marker tied to it.
func (t *Tracker) ClearFailures(ctx context.Context, username string) error {
	if err := t.windows.Reset(ctx, models.FailedAttemptsKey(username).String()); err != nil {
		return err
	}
	for _, threshold := range t.thresholds {
		if err := t.store.Delete(ctx, models.NotifiedKey(username, threshold).String()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to clear notification marker")
		}
	}
	return nil
}

// MarkNotified sets the notification marker for threshold and reports
// whether this call set it. The marker lives as long as the failure window.
func (t *Tracker) MarkNotified(ctx context.Context, username string, threshold int) (bool, error) {
	key := models.NotifiedKey(username, threshold).String()
	_, found, err := t.store.Get(ctx, key)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read notification marker")
	}
	if found {
		return false, nil
	}
	stamp := fmt.Appendf(nil, "%d", t.clock.Now().Unix())
	if err := t.store.Set(ctx, key, stamp, t.fail.Window); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to write notification marker")
	}
	return true, nil
}

func (t *Tracker) loadKnown(ctx context.Context, userID id.UserID) (knownIPs, error) {
	raw, found, err := t.store.Get(ctx, models.KnownIPsKey(userID).String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read known locations")
	}
	known := make(knownIPs)
	if !found || len(raw) == 0 {
		return known, nil
	}
	if err := json.Unmarshal(raw, &known); err != nil {
		if t.logger != nil {
			t.logger.WarnContext(ctx, "corrupt known locations payload", "user_id", userID.String(), "error", err)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to decode known locations")
	}
	return known, nil
}

func stalest(known knownIPs) string {
	var victim string
	var victimSeen time.Time
	for addr, seen := range known {
		if victim == "" || seen.Before(victimSeen) || (seen.Equal(victimSeen) && addr < victim) {
			victim, victimSeen = addr, seen
		}
	}
	return victim
}
