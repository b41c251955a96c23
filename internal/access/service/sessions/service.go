// Package sessions caps the number of live sessions per user and validates
// presented sessions against expiry, idle timeout and device binding.
package sessions

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"aegis/internal/access/config"
	"aegis/internal/access/metrics"
	"aegis/internal/access/models"
	"aegis/internal/access/observability"
	"aegis/internal/access/ports"
	"aegis/internal/access/service/fingerprint"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

type Manager struct {
	directory ports.SessionDirectory
	clock     ports.Clock
	logger    *slog.Logger
	config    config.SessionConfig
	metrics   *metrics.Metrics
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithMetrics(reg *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = reg
	}
}

func WithConfig(cfg config.SessionConfig) Option {
	return func(m *Manager) {
		if cfg.MaxConcurrentSessions > 0 {
			m.config.MaxConcurrentSessions = cfg.MaxConcurrentSessions
		}
		if cfg.IdleTimeout > 0 {
			m.config.IdleTimeout = cfg.IdleTimeout
		}
	}
}

func New(directory ports.SessionDirectory, clock ports.Clock, opts ...Option) (*Manager, error) {
	if directory == nil {
		return nil, fmt.Errorf("session directory is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("session clock is required")
	}

	m := &Manager{
		directory: directory,
		clock:     clock,
		config:    config.DefaultConfig().Sessions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Enforce deletes the user's sessions closest to expiry until at most
// maxSessions remain, and returns how many it deleted. Interleaved calls may
// briefly leave more than maxSessions; the next call corrects it.
func (m *Manager) Enforce(ctx context.Context, userID id.UserID, maxSessions int) (int, error) {
	if userID.IsNil() {
		return 0, dErrors.New(dErrors.CodeValidation, "user ID cannot be nil")
	}
	if maxSessions < 1 {
		return 0, dErrors.New(dErrors.CodeValidation, "max sessions must be at least 1")
	}

	now := m.clock.Now()
	active, err := m.listActive(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	if len(active) <= maxSessions {
		return 0, nil
	}

	slices.SortFunc(active, byExpiry)
	excess := active[:len(active)-maxSessions]

	evicted := 0
	var errs []error
	for _, session := range excess {
		if err := m.directory.Delete(ctx, session.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		evicted++
		observability.LogAudit(ctx, m.logger, observability.EventSessionEvicted,
			"user_id", userID.String(),
			"session_id", session.ID.String(),
			"expires_at", session.ExpiresAt,
		)
	}

	if m.metrics != nil && evicted > 0 {
		m.metrics.AddSessionsEvicted(evicted)
	}
	if len(errs) > 0 {
		return evicted, dErrors.Wrap(errors.Join(errs...), dErrors.CodeStoreUnavailable, "failed to evict sessions")
	}
	return evicted, nil
}

// ListActive returns the user's live sessions, most recently created first.
func (m *Manager) ListActive(ctx context.Context, userID id.UserID) ([]models.SessionRecord, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user ID cannot be nil")
	}

	active, err := m.listActive(ctx, userID, m.clock.Now())
	if err != nil {
		return nil, err
	}

	out := make([]models.SessionRecord, 0, len(active))
	for _, session := range active {
		out = append(out, *session)
	}
	slices.SortFunc(out, func(a, b models.SessionRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

// Track registers a newly established session and enforces the configured cap.
func (m *Manager) Track(ctx context.Context, session *models.SessionRecord) (int, error) {
	if session == nil {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "session cannot be nil")
	}
	if _, err := models.NewSessionRecord(session.ID, session.UserID, session.CreatedAt, session.ExpiresAt, session.DeviceFingerprint); err != nil {
		return 0, err
	}

	if err := m.directory.Create(ctx, session); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to create session")
	}
	return m.Enforce(ctx, session.UserID, m.config.MaxConcurrentSessions)
}

// Revoke deletes a single session. Revoking an unknown session is a no-op.
func (m *Manager) Revoke(ctx context.Context, sessionID id.SessionID) error {
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "session ID cannot be nil")
	}
	if err := m.directory.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to revoke session")
	}
	observability.LogAudit(ctx, m.logger, observability.EventSessionRevoked,
		"session_id", sessionID.String(),
	)
	return nil
}

// Validate checks a presented session against expiry, idle timeout and the
// device it was bound to. A session bound to no device accepts any caller.
func (m *Manager) Validate(session *models.SessionRecord, presentedFingerprint string, now time.Time) models.SessionVerdict {
	switch {
	case session == nil || !session.IsActive(now):
		return models.SessionVerdict{Reason: models.SessionReasonExpired}
	case now.Sub(session.LastSeenAt) > m.config.IdleTimeout:
		return models.SessionVerdict{Reason: models.SessionReasonIdle}
	case session.DeviceFingerprint != "" && !fingerprint.Match(session.DeviceFingerprint, presentedFingerprint):
		return models.SessionVerdict{Reason: models.SessionReasonInvalidDevice}
	}
	return models.SessionVerdict{Valid: true}
}

// listActive returns the directory listing restricted to sessions of userID
// that are live at now.
func (m *Manager) listActive(ctx context.Context, userID id.UserID, now time.Time) ([]*models.SessionRecord, error) {
	sessions, err := m.directory.ListNonExpired(ctx, userID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list sessions")
	}
	active := make([]*models.SessionRecord, 0, len(sessions))
	for _, session := range sessions {
		if session != nil && session.UserID == userID && session.IsActive(now) {
			active = append(active, session)
		}
	}
	return active, nil
}

// byExpiry orders sessions soonest-to-expire first; ties fall back to
// creation time, then ID, so eviction is deterministic.
func byExpiry(a, b *models.SessionRecord) int {
	if c := a.ExpiresAt.Compare(b.ExpiresAt); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}
