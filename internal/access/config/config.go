package config

import (
	"time"
)

// Config holds the access-control policy.
type Config struct {
	// Brute-force scopes
	IPLimit       Limit
	UsernameLimit Limit

	// MaxStoredEvents caps the timestamps kept per counter key
	MaxStoredEvents int

	Devices  DeviceConfig
	Sessions SessionConfig
	Risk     RiskConfig
	Failures FailureConfig

	// StoreTimeout bounds every shared-store round trip
	StoreTimeout time.Duration
}

// Limit defines sliding window parameters for one scope.
type Limit struct {
	MaxEvents int
	Window    time.Duration
}

// DeviceConfig bounds the per-user trust set.
type DeviceConfig struct {
	MaxTrustedDevices   int           // 5
	TrustedDeviceExpiry time.Duration // 30 days
}

// SessionConfig bounds concurrent sessions.
type SessionConfig struct {
	MaxConcurrentSessions int           // 5
	IdleTimeout           time.Duration // 30 minutes
}

// RiskConfig parameterizes signal gathering for the risk scorer.
type RiskConfig struct {
	KnownLocationWindow time.Duration // successful-login IPs remembered for 30 days
	MaxKnownLocations   int
	// Location is the reference clock zone for the unusual-time signal
	Location *time.Location
}

// FailureConfig governs the failed-credential window and notification thresholds.
type FailureConfig struct {
	Window            time.Duration // 30 minutes
	MultipleThreshold int           // >= 5 failures is a risk signal
	MaxAttempts       int           // 5, notification at this count
	NotifyAtAttempt   int           // 3, early warning notification
}

// DefaultConfig returns the policy defaults.
func DefaultConfig() *Config {
	return &Config{
		IPLimit:         Limit{MaxEvents: 20, Window: 15 * time.Minute},
		UsernameLimit:   Limit{MaxEvents: 50, Window: 60 * time.Minute},
		MaxStoredEvents: 100,
		Devices: DeviceConfig{
			MaxTrustedDevices:   5,
			TrustedDeviceExpiry: 30 * 24 * time.Hour,
		},
		Sessions: SessionConfig{
			MaxConcurrentSessions: 5,
			IdleTimeout:           30 * time.Minute,
		},
		Risk: RiskConfig{
			KnownLocationWindow: 30 * 24 * time.Hour,
			MaxKnownLocations:   50,
			Location:            time.UTC,
		},
		Failures: FailureConfig{
			Window:            30 * time.Minute,
			MultipleThreshold: 5,
			MaxAttempts:       5,
			NotifyAtAttempt:   3,
		},
		StoreTimeout: 250 * time.Millisecond,
	}
}

// NotificationThresholds returns the failed-attempt counts that trigger a
// notification, deduplicated and ascending.
func (c *Config) NotificationThresholds() []int {
	early, maxAttempts := c.Failures.NotifyAtAttempt, c.Failures.MaxAttempts
	switch {
	case early <= 0 && maxAttempts <= 0:
		return nil
	case early <= 0:
		return []int{maxAttempts}
	case maxAttempts <= 0 || early == maxAttempts:
		return []int{early}
	case early > maxAttempts:
		return []int{maxAttempts, early}
	}
	return []int{early, maxAttempts}
}
