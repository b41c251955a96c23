package models

import "time"

type Outcome string

const (
	OutcomeAllow     Outcome = "allow"
	OutcomeDeny      Outcome = "deny"
	OutcomeChallenge Outcome = "challenge"
)

type Reason string

const (
	ReasonOK              Reason = "ok"
	ReasonRateLimited     Reason = "rate_limited"
	ReasonHighRisk        Reason = "high_risk"
	ReasonValidationError Reason = "validation_error"
)

// AccessDecision is the single verdict produced per authentication event.
type AccessDecision struct {
	Outcome    Outcome         `json:"outcome"`
	Reason     Reason          `json:"reason"`
	RetryAfter time.Duration   `json:"retry_after,omitempty"`
	Risk       *RiskAssessment `json:"risk,omitempty"`
	// DeviceTrusted lets the caller decide whether a second factor can be skipped.
	DeviceTrusted bool `json:"device_trusted"`
}

func Allow(risk *RiskAssessment, trusted bool) *AccessDecision {
	return &AccessDecision{Outcome: OutcomeAllow, Reason: ReasonOK, Risk: risk, DeviceTrusted: trusted}
}

func Challenge(risk *RiskAssessment, trusted bool) *AccessDecision {
	return &AccessDecision{Outcome: OutcomeChallenge, Reason: ReasonHighRisk, Risk: risk, DeviceTrusted: trusted}
}

func DenyRateLimited(retryAfter time.Duration) *AccessDecision {
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &AccessDecision{Outcome: OutcomeDeny, Reason: ReasonRateLimited, RetryAfter: retryAfter}
}

func DenyValidation() *AccessDecision {
	return &AccessDecision{Outcome: OutcomeDeny, Reason: ReasonValidationError}
}
