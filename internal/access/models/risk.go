package models

import (
	"strings"

	dErrors "aegis/pkg/domain-errors"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel parses a risk level constant, rejecting unknown values.
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown risk level: must be 'low', 'medium' or 'high'")
	}
	return l, nil
}

// RiskFactor tags a signal that contributed to a score.
type RiskFactor string

const (
	FactorNewLocation            RiskFactor = "new_location"
	FactorMultipleFailedAttempts RiskFactor = "multiple_failed_attempts"
	FactorUnusualTime            RiskFactor = "unusual_time"
	FactorPrivateIP              RiskFactor = "private_ip"
)

// RiskSignals are the precomputed boolean inputs to the risk scorer.
type RiskSignals struct {
	NewLocation            bool `json:"new_location"`
	MultipleFailedAttempts bool `json:"multiple_failed_attempts"`
	UnusualTime            bool `json:"unusual_time"`
	PrivateIP              bool `json:"private_ip"`
}

// RiskAssessment is a deterministic function of RiskSignals.
type RiskAssessment struct {
	Score   int          `json:"score"`
	Level   RiskLevel    `json:"level"`
	Factors []RiskFactor `json:"factors"`
	Signals RiskSignals  `json:"signals"`
}

// HasFactor reports whether f contributed to the assessment.
func (a RiskAssessment) HasFactor(f RiskFactor) bool {
	for _, got := range a.Factors {
		if got == f {
			return true
		}
	}
	return false
}
