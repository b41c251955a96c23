// Package risk turns precomputed login signals into a numeric score and a
// coarse risk level. Scoring performs no I/O.
package risk

import (
	"net/netip"
	"time"

	"aegis/internal/access/models"
)

// Signal weights.
const (
	WeightNewLocation            = 30
	WeightMultipleFailedAttempts = 40
	WeightUnusualTime            = 20
	WeightPrivateIP              = 20
)

// Level thresholds.
const (
	HighThreshold   = 60
	MediumThreshold = 30
)

// Quiet hours: an hour before QuietHoursEnd or after QuietHoursStart is unusual.
const (
	QuietHoursEnd   = 6
	QuietHoursStart = 22
)

// privatePrefixes follows the IANA special-purpose registries: documentation
// and benchmarking ranges are private, shared address space (100.64.0.0/10)
// is not.
var privatePrefixes = prefixes(
	"0.0.0.0/8", "10.0.0.0/8", "127.0.0.0/8", "169.254.0.0/16", "172.16.0.0/12",
	"192.0.0.0/24", "192.0.2.0/24", "192.168.0.0/16", "198.18.0.0/15",
	"198.51.100.0/24", "203.0.113.0/24", "240.0.0.0/4", "255.255.255.255/32",
	"::1/128", "::/128", "64:ff9b:1::/48", "100::/64", "2001::/23",
	"2001:db8::/32", "2002::/16", "fc00::/7", "fe80::/10",
)

// globalPrefixes are routable carve-outs of privatePrefixes.
var globalPrefixes = prefixes(
	"192.0.0.9/32", "192.0.0.10/32",
	"2001:1::1/128", "2001:1::2/128", "2001:3::/32", "2001:4:112::/48",
	"2001:20::/28", "2001:30::/28",
)

// reservedPrefixes are IETF-reserved blocks.
var reservedPrefixes = prefixes(
	"240.0.0.0/4",
	"::/8", "100::/8", "200::/7", "400::/6", "800::/5", "1000::/4",
	"4000::/3", "6000::/3", "8000::/3", "a000::/3", "c000::/3",
	"e000::/4", "f000::/5", "f800::/6", "fe00::/9",
)

func prefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, len(cidrs))
	for i, cidr := range cidrs {
		out[i] = netip.MustParsePrefix(cidr)
	}
	return out
}

func containedIn(set []netip.Prefix, addr netip.Addr) bool {
	for _, prefix := range set {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Scorer evaluates risk signals against a reference clock zone.
type Scorer struct {
	location *time.Location
}

// New creates a Scorer whose unusual-time check runs in loc. A nil loc uses UTC.
func New(loc *time.Location) *Scorer {
	if loc == nil {
		loc = time.UTC
	}
	return &Scorer{location: loc}
}

// Score is deterministic: identical signals always produce identical assessments.
func (s *Scorer) Score(signals models.RiskSignals) models.RiskAssessment {
	assessment := models.RiskAssessment{
		Factors: make([]models.RiskFactor, 0, 4),
		Signals: signals,
	}

	add := func(present bool, weight int, factor models.RiskFactor) {
		if present {
			assessment.Score += weight
			assessment.Factors = append(assessment.Factors, factor)
		}
	}
	add(signals.NewLocation, WeightNewLocation, models.FactorNewLocation)
	add(signals.MultipleFailedAttempts, WeightMultipleFailedAttempts, models.FactorMultipleFailedAttempts)
	add(signals.UnusualTime, WeightUnusualTime, models.FactorUnusualTime)
	add(signals.PrivateIP, WeightPrivateIP, models.FactorPrivateIP)

	assessment.Level = LevelFor(assessment.Score)
	return assessment
}

// LevelFor maps a score to its risk level.
func LevelFor(score int) models.RiskLevel {
	switch {
	case score >= HighThreshold:
		return models.RiskHigh
	case score >= MediumThreshold:
		return models.RiskMedium
	}
	return models.RiskLow
}

// MinScore returns the lowest score that maps to level.
func MinScore(level models.RiskLevel) int {
	switch level {
	case models.RiskHigh:
		return HighThreshold
	case models.RiskMedium:
		return MediumThreshold
	}
	return 0
}

// IsUnusualHour reports whether t falls in the quiet hours of the scorer's zone.
func (s *Scorer) IsUnusualHour(t time.Time) bool {
	hour := t.In(s.location).Hour()
	return hour < QuietHoursEnd || hour > QuietHoursStart
}

// IsPrivateIP classifies ip; see the package-level IsPrivateIP.
func (s *Scorer) IsPrivateIP(ip string) bool {
	return IsPrivateIP(ip)
}

// IsPrivateIP reports whether ip is private, reserved or multicast.
// IPv4-mapped IPv6 addresses are classified as their IPv4 form. Unparseable
// input counts as private.
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return true
	}
	addr = addr.Unmap().WithZone("")

	if addr.IsMulticast() || containedIn(reservedPrefixes, addr) {
		return true
	}
	return containedIn(privatePrefixes, addr) && !containedIn(globalPrefixes, addr)
}
