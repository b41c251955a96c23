package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"aegis/internal/access/models"
	id "aegis/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	UserID1    id.UserID
	UserID2    id.UserID
	SessionID1 id.SessionID
	SessionID2 id.SessionID
}{
	UserID1:    id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:    id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	SessionID1: id.SessionID(uuid.MustParse("eeee0000-0000-0000-0000-000000000001")),
	SessionID2: id.SessionID(uuid.MustParse("eeee0000-0000-0000-0000-000000000002")),
}

// Epoch is a fixed daytime instant for clock-driven tests.
var Epoch = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

// Fingerprint derives a stable, valid device fingerprint from a label.
func Fingerprint(label string) string {
	sum := sha256.Sum256([]byte(label))
	return hex.EncodeToString(sum[:])
}

// SessionBuilder provides a fluent interface for building test sessions.
type SessionBuilder struct {
	session *models.SessionRecord
}

// NewSessionBuilder creates a new SessionBuilder with sensible defaults
// relative to now.
func NewSessionBuilder(now time.Time) *SessionBuilder {
	return &SessionBuilder{
		session: &models.SessionRecord{
			ID:         id.NewSessionID(),
			UserID:     TestIDs.UserID1,
			CreatedAt:  now,
			ExpiresAt:  now.Add(14 * 24 * time.Hour),
			LastSeenAt: now,
		},
	}
}

func (b *SessionBuilder) WithID(sessionID id.SessionID) *SessionBuilder {
	b.session.ID = sessionID
	return b
}

func (b *SessionBuilder) WithUserID(userID id.UserID) *SessionBuilder {
	b.session.UserID = userID
	return b
}

func (b *SessionBuilder) WithFingerprint(fp string) *SessionBuilder {
	b.session.DeviceFingerprint = fp
	return b
}

func (b *SessionBuilder) CreatedAt(t time.Time) *SessionBuilder {
	b.session.CreatedAt = t
	b.session.LastSeenAt = t
	return b
}

func (b *SessionBuilder) ExpiresAt(t time.Time) *SessionBuilder {
	b.session.ExpiresAt = t
	return b
}

func (b *SessionBuilder) LastSeenAt(t time.Time) *SessionBuilder {
	b.session.LastSeenAt = t
	return b
}

func (b *SessionBuilder) Build() *models.SessionRecord {
	return b.session
}

// LoginEventBuilder provides a fluent interface for building login events.
type LoginEventBuilder struct {
	event models.LoginEvent
}

// NewLoginEventBuilder creates a well-formed login event for TestIDs.UserID1.
func NewLoginEventBuilder() *LoginEventBuilder {
	return &LoginEventBuilder{
		event: models.LoginEvent{
			IP:       "93.184.216.34",
			Username: "alice",
			UserID:   TestIDs.UserID1,
		},
	}
}

func (b *LoginEventBuilder) WithIP(ip string) *LoginEventBuilder {
	b.event.IP = ip
	return b
}

func (b *LoginEventBuilder) WithUsername(username string) *LoginEventBuilder {
	b.event.Username = username
	return b
}

func (b *LoginEventBuilder) WithUserID(userID id.UserID) *LoginEventBuilder {
	b.event.UserID = userID
	return b
}

func (b *LoginEventBuilder) WithFingerprint(fp string) *LoginEventBuilder {
	b.event.Fingerprint = fp
	return b
}

func (b *LoginEventBuilder) WithRequestData(data map[string]string) *LoginEventBuilder {
	b.event.RequestData = data
	return b
}

func (b *LoginEventBuilder) Build() models.LoginEvent {
	return b.event
}
