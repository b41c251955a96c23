package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"aegis/internal/access/models"
	"aegis/internal/access/ports"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

const (
	// Redis key prefixes for session data
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"

	// maxSessionsPerUser caps the number of sessions loaded per user.
	maxSessionsPerUser = 100

	// userSetGrace keeps the per-user index alive slightly past its newest session.
	userSetGrace = time.Hour
)

// sessionJSON is the JSON-serializable representation of a SessionRecord.
type sessionJSON struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	CreatedAt         int64  `json:"created_at"`   // Unix nano
	ExpiresAt         int64  `json:"expires_at"`   // Unix nano
	LastSeenAt        int64  `json:"last_seen_at"` // Unix nano
}

func sessionToJSON(s *models.SessionRecord) *sessionJSON {
	return &sessionJSON{
		ID:                s.ID.String(),
		UserID:            s.UserID.String(),
		DeviceFingerprint: s.DeviceFingerprint,
		CreatedAt:         s.CreatedAt.UnixNano(),
		ExpiresAt:         s.ExpiresAt.UnixNano(),
		LastSeenAt:        s.LastSeenAt.UnixNano(),
	}
}

func sessionFromJSON(j *sessionJSON) (*models.SessionRecord, error) {
	sessionID, err := uuid.Parse(j.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	userID, err := uuid.Parse(j.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &models.SessionRecord{
		ID:                id.SessionID(sessionID),
		UserID:            id.UserID(userID),
		DeviceFingerprint: j.DeviceFingerprint,
		CreatedAt:         time.Unix(0, j.CreatedAt),
		ExpiresAt:         time.Unix(0, j.ExpiresAt),
		LastSeenAt:        time.Unix(0, j.LastSeenAt),
	}, nil
}

// RedisStore persists sessions in Redis so every instance sees the same
// session set. Each session lives under its own key with a TTL matching its
// expiry; a per-user set indexes the session IDs.
type RedisStore struct {
	client redis.UniversalClient
	clock  ports.Clock
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client redis.UniversalClient, clock ports.Clock) *RedisStore {
	return &RedisStore{client: client, clock: clock}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func userSessionsKey(userID id.UserID) string {
	return userSessionKeyPrefix + userID.String()
}

func decodeSession(data string) (*models.SessionRecord, error) {
	var j sessionJSON
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return sessionFromJSON(&j)
}

func (s *RedisStore) Create(ctx context.Context, session *models.SessionRecord) error {
	if session == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "session is required")
	}

	data, err := json.Marshal(sessionToJSON(session))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := session.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}

	userKey := userSessionsKey(session.UserID)
	indexTTL := ttl + userSetGrace
	// The index TTL only ever grows; a shorter-lived session must not cut it.
	if current, err := s.client.TTL(ctx, userKey).Result(); err == nil && current > indexTTL {
		indexTTL = current
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID.String()), data, ttl)
	pipe.SAdd(ctx, userKey, session.ID.String())
	pipe.Expire(ctx, userKey, indexTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *RedisStore) ListNonExpired(ctx context.Context, userID id.UserID, now time.Time) ([]*models.SessionRecord, error) {
	userKey := userSessionsKey(userID)

	sessionIDs, err := s.client.SRandMemberN(ctx, userKey, maxSessionsPerUser).Result()
	if err != nil {
		return nil, fmt.Errorf("list session ids by user: %w", err)
	}
	if len(sessionIDs) == 0 {
		return []*models.SessionRecord{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(sessionIDs))
	for i, sid := range sessionIDs {
		cmds[i] = pipe.Get(ctx, sessionKey(sid))
	}
	// Missing keys surface per command as redis.Nil.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]*models.SessionRecord, 0, len(sessionIDs))
	stale := make([]any, 0)
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			stale = append(stale, sessionIDs[i])
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		session, err := decodeSession(data)
		if err != nil {
			stale = append(stale, sessionIDs[i])
			continue
		}
		if session.IsActive(now) {
			sessions = append(sessions, session)
		}
	}

	if len(stale) > 0 {
		// Index cleanup is best effort; a failure leaves IDs that the next
		// listing skips again.
		_ = s.client.SRem(ctx, userKey, stale...).Err()
	}
	return sessions, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	key := sessionKey(sessionID.String())

	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find session for delete: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if session, err := decodeSession(data); err == nil {
		pipe.SRem(ctx, userSessionsKey(session.UserID), sessionID.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
