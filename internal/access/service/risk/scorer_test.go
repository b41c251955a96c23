package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/access/models"
)

func TestScore(t *testing.T) {
	scorer := New(nil)

	tests := []struct {
		name    string
		signals models.RiskSignals
		score   int
		level   models.RiskLevel
		factors []models.RiskFactor
	}{
		{name: "no signals", score: 0, level: models.RiskLow, factors: []models.RiskFactor{}},
		{
			name:    "failed attempts alone stay medium",
			signals: models.RiskSignals{MultipleFailedAttempts: true},
			score:   40, level: models.RiskMedium,
			factors: []models.RiskFactor{models.FactorMultipleFailedAttempts},
		},
		{
			name:    "failed attempts from a private address is high",
			signals: models.RiskSignals{MultipleFailedAttempts: true, PrivateIP: true},
			score:   60, level: models.RiskHigh,
			factors: []models.RiskFactor{models.FactorMultipleFailedAttempts, models.FactorPrivateIP},
		},
		{
			name:    "new location alone is medium",
			signals: models.RiskSignals{NewLocation: true},
			score:   30, level: models.RiskMedium,
			factors: []models.RiskFactor{models.FactorNewLocation},
		},
		{
			name:    "unusual time alone is low",
			signals: models.RiskSignals{UnusualTime: true},
			score:   20, level: models.RiskLow,
			factors: []models.RiskFactor{models.FactorUnusualTime},
		},
		{
			name:    "new location at night from a private address",
			signals: models.RiskSignals{NewLocation: true, UnusualTime: true, PrivateIP: true},
			score:   70, level: models.RiskHigh,
			factors: []models.RiskFactor{models.FactorNewLocation, models.FactorUnusualTime, models.FactorPrivateIP},
		},
		{
			name:    "every signal",
			signals: models.RiskSignals{NewLocation: true, MultipleFailedAttempts: true, UnusualTime: true, PrivateIP: true},
			score:   110, level: models.RiskHigh,
			factors: []models.RiskFactor{
				models.FactorNewLocation, models.FactorMultipleFailedAttempts,
				models.FactorUnusualTime, models.FactorPrivateIP,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.signals)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.factors, got.Factors)
			assert.Equal(t, tt.signals, got.Signals)
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	scorer := New(nil)
	for mask := range 16 {
		signals := models.RiskSignals{
			NewLocation:            mask&1 != 0,
			MultipleFailedAttempts: mask&2 != 0,
			UnusualTime:            mask&4 != 0,
			PrivateIP:              mask&8 != 0,
		}
		first := scorer.Score(signals)
		for range 3 {
			assert.Equal(t, first, scorer.Score(signals))
		}
		assert.Len(t, first.Factors, len(first.Factors))
		assert.True(t, first.Level.IsValid())
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, models.RiskLow, LevelFor(29))
	assert.Equal(t, models.RiskMedium, LevelFor(30))
	assert.Equal(t, models.RiskMedium, LevelFor(59))
	assert.Equal(t, models.RiskHigh, LevelFor(60))

	for _, level := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		assert.Equal(t, level, LevelFor(MinScore(level)))
	}
}

func TestIsUnusualHour(t *testing.T) {
	scorer := New(nil)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	for hour := range 24 {
		want := hour < 6 || hour > 22
		assert.Equal(t, want, scorer.IsUnusualHour(day.Add(time.Duration(hour)*time.Hour)), "hour %d", hour)
	}

	t.Run("evaluated in the configured zone", func(t *testing.T) {
		tokyo, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)
		// 14:00 UTC is 23:00 in Tokyo.
		afternoon := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
		assert.False(t, New(time.UTC).IsUnusualHour(afternoon))
		assert.True(t, New(tokyo).IsUnusualHour(afternoon))
	})
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{
		"10.1.2.3", "172.16.0.1", "192.168.1.10", "127.0.0.1", "169.254.10.10",
		"224.0.0.1", "0.0.0.0", "240.0.0.1", "255.255.255.255", "198.18.0.1",
		"192.0.2.1", "198.51.100.9", "203.0.113.10",
		"::1", "::", "fc00::1", "fe80::1", "fe80::1%eth0", "ff02::1", "::ffff:192.168.1.1",
		"2001:db8::1", "64:ff9b::808:808", "::ffff:203.0.113.10",
		"not-an-ip", "",
	}
	public := []string{
		"8.8.8.8", "1.1.1.1", "100.64.1.1", "192.0.0.9", "93.184.216.34",
		"2606:4700:4700::1111", "::ffff:8.8.8.8", "2001:4860:4860::8888",
	}

	for _, ip := range private {
		assert.True(t, IsPrivateIP(ip), ip)
	}
	for _, ip := range public {
		assert.False(t, IsPrivateIP(ip), ip)
	}
}
