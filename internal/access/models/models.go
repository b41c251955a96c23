package models

import (
	"time"

	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

// LoginEvent is what the authentication handler hands to the coordinator for
// every login attempt or authenticated request.
type LoginEvent struct {
	IP       string    `validate:"required,ip"`
	Username string    `validate:"required,username"`
	UserID   id.UserID `validate:"-"`
	// Fingerprint is optional; when present it must be a 64 character hex digest.
	Fingerprint string            `validate:"omitempty,fingerprint"`
	RequestData map[string]string `validate:"-"`
}

// WindowState is the observed state of one sliding-window counter.
type WindowState struct {
	Count int
	// ResetAt is when the oldest counted event leaves the window.
	// Zero when the window is empty.
	ResetAt time.Time
}

// LockoutStatus is the brute-force verdict across the IP and username scopes.
type LockoutStatus struct {
	IsBlocked         bool      `json:"is_blocked"`
	RemainingAttempts int       `json:"remaining_attempts"`
	BlockExpiresAt    time.Time `json:"block_expires_at,omitzero"`
}

// TrustedDevice is one entry of a user's trust set.
type TrustedDevice struct {
	Fingerprint string    `json:"fingerprint"`
	UserID      id.UserID `json:"-"`
	LastSeen    time.Time `json:"last_seen"`
	Trusted     bool      `json:"trusted"`
}

// IsExpired reports whether the device has not been seen within maxAge.
func (d TrustedDevice) IsExpired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(d.LastSeen) > maxAge
}

// SessionRecord is an authenticated session as seen by the session directory.
// CreatedAt is stored explicitly; it is never derived from ExpiresAt.
type SessionRecord struct {
	ID                id.SessionID `json:"id"`
	UserID            id.UserID    `json:"user_id"`
	CreatedAt         time.Time    `json:"created_at"`
	ExpiresAt         time.Time    `json:"expires_at"`
	LastSeenAt        time.Time    `json:"last_seen_at"`
	DeviceFingerprint string       `json:"device_fingerprint,omitempty"`
}

// NewSessionRecord creates a SessionRecord with domain invariant validation.
func NewSessionRecord(sessionID id.SessionID, userID id.UserID, createdAt, expiresAt time.Time, fingerprint string) (*SessionRecord, error) {
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session id cannot be empty")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id cannot be empty")
	}
	if !expiresAt.After(createdAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session must expire after it is created")
	}
	return &SessionRecord{
		ID:                sessionID,
		UserID:            userID,
		CreatedAt:         createdAt,
		ExpiresAt:         expiresAt,
		LastSeenAt:        createdAt,
		DeviceFingerprint: fingerprint,
	}, nil
}

// IsActive reports whether the session has not yet expired at now.
func (s SessionRecord) IsActive(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// SessionVerdict is the result of validating a presented session.
type SessionVerdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

const (
	SessionReasonExpired       = "session_expired"
	SessionReasonIdle          = "session_idle"
	SessionReasonInvalidDevice = "invalid_device"
)
