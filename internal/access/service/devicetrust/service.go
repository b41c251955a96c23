// Package devicetrust maintains each user's bounded set of trusted device
// fingerprints with recency eviction.
package devicetrust

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"aegis/internal/access/config"
	"aegis/internal/access/models"
	"aegis/internal/access/observability"
	"aegis/internal/access/ports"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/privacy"
	"aegis/pkg/validation"
)

// trustSet maps fingerprint to last-seen time. It is the stored form of a
// user's trusted devices.
type trustSet map[string]time.Time

type Store struct {
	store  ports.KVStore
	clock  ports.Clock
	logger *slog.Logger
	config config.DeviceConfig
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithConfig(cfg config.DeviceConfig) Option {
	return func(s *Store) {
		if cfg.MaxTrustedDevices > 0 {
			s.config.MaxTrustedDevices = cfg.MaxTrustedDevices
		}
		if cfg.TrustedDeviceExpiry > 0 {
			s.config.TrustedDeviceExpiry = cfg.TrustedDeviceExpiry
		}
	}
}

func New(store ports.KVStore, clock ports.Clock, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("device trust store is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("device trust clock is required")
	}

	s := &Store{
		store:  store,
		clock:  clock,
		config: config.DefaultConfig().Devices,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsTrusted reports whether fingerprint is a live member of the user's trust
// set, refreshing its last-seen time on a hit. Any failure reads as not trusted.
func (s *Store) IsTrusted(ctx context.Context, userID id.UserID, fingerprint string) bool {
	if userID.IsNil() || validation.Fingerprint(fingerprint) != nil {
		return false
	}

	now := s.clock.Now()
	set, err := s.load(ctx, userID)
	if err != nil {
		s.warn(ctx, "trusted device lookup failed", userID, err)
		return false
	}
	pruned := s.prune(set, now)

	if _, ok := set[fingerprint]; !ok {
		if pruned > 0 {
			if err := s.save(ctx, userID, set); err != nil {
				s.warn(ctx, "failed to persist pruned trust set", userID, err)
			}
		}
		return false
	}

	set[fingerprint] = now
	if err := s.save(ctx, userID, set); err != nil {
		s.warn(ctx, "failed to refresh trusted device", userID, err)
		return false
	}
	return true
}

// AddTrusted grants trust to fingerprint. When the set grows past the cap, the
// least recently seen device is evicted; ties go to the lowest fingerprint.
func (s *Store) AddTrusted(ctx context.Context, userID id.UserID, fingerprint string) error {
	if err := validateInput(userID, fingerprint); err != nil {
		return err
	}

	now := s.clock.Now()
	set, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	s.prune(set, now)
	set[fingerprint] = now

	for len(set) > s.config.MaxTrustedDevices {
		victim := oldest(set)
		delete(set, victim)
		observability.LogAudit(ctx, s.logger, observability.EventDeviceEvicted,
			"user_id", userID.String(),
			"fingerprint_prefix", privacy.ShortFingerprint(victim),
		)
	}

	if err := s.save(ctx, userID, set); err != nil {
		return err
	}
	observability.LogAudit(ctx, s.logger, observability.EventDeviceTrusted,
		"user_id", userID.String(),
		"fingerprint_prefix", privacy.ShortFingerprint(fingerprint),
		"trusted_devices", len(set),
	)
	return nil
}

// RemoveTrusted revokes trust in fingerprint. Removing an unknown fingerprint
// is a no-op.
func (s *Store) RemoveTrusted(ctx context.Context, userID id.UserID, fingerprint string) error {
	if err := validateInput(userID, fingerprint); err != nil {
		return err
	}

	set, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := set[fingerprint]; !ok {
		return nil
	}
	delete(set, fingerprint)

	if len(set) == 0 {
		if err := s.store.Delete(ctx, models.TrustedDevicesKey(userID).String()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to delete trust set")
		}
	} else if err := s.save(ctx, userID, set); err != nil {
		return err
	}

	observability.LogAudit(ctx, s.logger, observability.EventDeviceRevoked,
		"user_id", userID.String(),
		"fingerprint_prefix", privacy.ShortFingerprint(fingerprint),
	)
	return nil
}

// List returns the user's live trusted devices, most recently seen first.
func (s *Store) List(ctx context.Context, userID id.UserID) ([]models.TrustedDevice, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user ID cannot be nil")
	}

	set, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.prune(set, s.clock.Now())

	devices := make([]models.TrustedDevice, 0, len(set))
	for fp, lastSeen := range set {
		devices = append(devices, models.TrustedDevice{
			Fingerprint: fp,
			UserID:      userID,
			LastSeen:    lastSeen,
			Trusted:     true,
		})
	}
	slices.SortFunc(devices, func(a, b models.TrustedDevice) int {
		if c := b.LastSeen.Compare(a.LastSeen); c != 0 {
			return c
		}
		return cmp.Compare(a.Fingerprint, b.Fingerprint)
	})
	return devices, nil
}

func (s *Store) load(ctx context.Context, userID id.UserID) (trustSet, error) {
	raw, found, err := s.store.Get(ctx, models.TrustedDevicesKey(userID).String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read trust set")
	}
	set := make(trustSet)
	if !found || len(raw) == 0 {
		return set, nil
	}
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to decode trust set")
	}
	return set, nil
}

func (s *Store) save(ctx context.Context, userID id.UserID, set trustSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode trust set")
	}
	if err := s.store.Set(ctx, models.TrustedDevicesKey(userID).String(), raw, s.config.TrustedDeviceExpiry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to write trust set")
	}
	return nil
}

// prune drops entries not seen within the expiry and returns how many it dropped.
func (s *Store) prune(set trustSet, now time.Time) int {
	dropped := 0
	for fp, lastSeen := range set {
		device := models.TrustedDevice{Fingerprint: fp, LastSeen: lastSeen}
		if device.IsExpired(now, s.config.TrustedDeviceExpiry) {
			delete(set, fp)
			dropped++
		}
	}
	return dropped
}

func (s *Store) warn(ctx context.Context, msg string, userID id.UserID, err error) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, "user_id", userID.String(), "error", err)
	}
}

func oldest(set trustSet) string {
	var victim string
	var victimSeen time.Time
	for fp, lastSeen := range set {
		if victim == "" || lastSeen.Before(victimSeen) || (lastSeen.Equal(victimSeen) && fp < victim) {
			victim, victimSeen = fp, lastSeen
		}
	}
	return victim
}

func validateInput(userID id.UserID, fingerprint string) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user ID cannot be nil")
	}
	return validation.Fingerprint(fingerprint)
}
