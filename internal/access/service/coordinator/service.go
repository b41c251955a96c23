// Package coordinator combines the lockout guard, device trust, login history
// and risk scoring into one access decision per authentication event.
package coordinator

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks LockoutGuard,TrustChecker,LoginHistory,RiskScorer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"aegis/internal/access/config"
	"aegis/internal/access/metrics"
	"aegis/internal/access/models"
	"aegis/internal/access/notify"
	"aegis/internal/access/observability"
	"aegis/internal/access/ports"
	"aegis/internal/access/service/fingerprint"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/privacy"
	"aegis/pkg/validation"
)

// LockoutGuard is the brute-force verdict across IP and username scopes.
type LockoutGuard interface {
	Evaluate(ctx context.Context, ip, username string) (models.LockoutStatus, error)
	RecordAttempt(ctx context.Context, ip, username string) error
}

// TrustChecker reports device trust. It never fails; errors read as untrusted.
type TrustChecker interface {
	IsTrusted(ctx context.Context, userID id.UserID, fingerprint string) bool
}

// LoginHistory supplies the history-based risk signals and failure bookkeeping.
type LoginHistory interface {
	IsNewLocation(ctx context.Context, userID id.UserID, ip string) (bool, error)
	RememberLocation(ctx context.Context, userID id.UserID, ip string) error
	FailedAttempts(ctx context.Context, username string) (int, error)
	RecordFailure(ctx context.Context, username string) (int, error)
	ClearFailures(ctx context.Context, username string) error
	MarkNotified(ctx context.Context, username string, threshold int) (bool, error)
}

// RiskScorer turns signals into an assessment and classifies raw inputs.
type RiskScorer interface {
	Score(signals models.RiskSignals) models.RiskAssessment
	IsUnusualHour(t time.Time) bool
	IsPrivateIP(ip string) bool
}

type Coordinator struct {
	guard    LockoutGuard
	trust    TrustChecker
	history  LoginHistory
	scorer   RiskScorer
	notifier ports.Notifier
	clock    ports.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	config   *config.Config
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(c *Coordinator) {
		if cfg != nil {
			c.config = cfg
		}
	}
}

func New(
	guard LockoutGuard,
	trust TrustChecker,
	history LoginHistory,
	scorer RiskScorer,
	notifier ports.Notifier,
	clock ports.Clock,
	opts ...Option,
) (*Coordinator, error) {
	if guard == nil {
		return nil, fmt.Errorf("lockout guard is required")
	}
	if trust == nil {
		return nil, fmt.Errorf("trust checker is required")
	}
	if history == nil {
		return nil, fmt.Errorf("login history is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("risk scorer is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}

	c := &Coordinator{
		guard:    guard,
		trust:    trust,
		history:  history,
		scorer:   scorer,
		notifier: notifier,
		clock:    clock,
		tracer:   otel.Tracer("aegis/access"),
		config:   config.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// signals holds the results of parallel signal gathering. Each goroutine
// writes only its own field.
type signals struct {
	newLocation    bool
	failedAttempts int
	trusted        bool
}

// Evaluate produces the access decision for one authentication event.
//
// Malformed input yields deny/validation_error together with the validation
// error. Any other dependency failure yields deny/validation_error with a nil
// error; the cause is logged. The attempt is recorded on every path past
// validation.
func (c *Coordinator) Evaluate(ctx context.Context, event models.LoginEvent) (*models.AccessDecision, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "access.evaluate",
		trace.WithAttributes(attribute.String("ip_prefix", privacy.AnonymizeIP(event.IP))))

	decision, err := c.evaluate(ctx, event)

	span.SetAttributes(
		attribute.String("outcome", string(decision.Outcome)),
		attribute.String("reason", string(decision.Reason)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	if c.metrics != nil {
		c.metrics.IncrementDecision(string(decision.Outcome), string(decision.Reason))
		c.metrics.ObserveEvaluation(start)
		if decision.Risk != nil {
			c.metrics.ObserveRiskScore(decision.Risk.Score)
		}
	}
	return decision, err
}

func (c *Coordinator) evaluate(ctx context.Context, event models.LoginEvent) (*models.AccessDecision, error) {
	if err := validation.Validate(event); err != nil {
		return models.DenyValidation(), err
	}
	event.IP = models.CanonicalIP(event.IP)

	now := c.clock.Now()
	decision, failedAttempts, countKnown := c.decide(ctx, event, now)

	if err := c.guard.RecordAttempt(ctx, event.IP, event.Username); err != nil {
		c.storeFailure(ctx, "record_attempt", err)
	}

	if decision.Outcome != models.OutcomeAllow && decision.Reason != models.ReasonValidationError {
		if !countKnown {
			count, err := c.history.FailedAttempts(ctx, event.Username)
			if err != nil {
				c.storeFailure(ctx, "failed_attempts", err)
				return decision, nil
			}
			failedAttempts = count
		}
		c.notifyThresholds(ctx, event, failedAttempts)
	}
	return decision, nil
}

// decide runs the guard, gathers signals and scores them. It reports the
// failed-attempt count when signal gathering read it.
func (c *Coordinator) decide(ctx context.Context, event models.LoginEvent, now time.Time) (*models.AccessDecision, int, bool) {
	status, err := c.guard.Evaluate(ctx, event.IP, event.Username)
	if err != nil {
		c.failSafe(ctx, event, "lockout_evaluate", err)
		return models.DenyValidation(), 0, false
	}
	if status.IsBlocked {
		return models.DenyRateLimited(status.BlockExpiresAt.Sub(now)), 0, false
	}

	gathered, err := c.gatherSignals(ctx, event)
	if err != nil {
		c.failSafe(ctx, event, "gather_signals", err)
		return models.DenyValidation(), 0, false
	}

	assessment := c.scorer.Score(models.RiskSignals{
		NewLocation:            gathered.newLocation,
		MultipleFailedAttempts: gathered.failedAttempts >= c.config.Failures.MultipleThreshold,
		UnusualTime:            c.scorer.IsUnusualHour(now),
		PrivateIP:              c.scorer.IsPrivateIP(event.IP),
	})

	if assessment.Level == models.RiskHigh {
		observability.LogAudit(ctx, c.logger, observability.EventLoginChallenged,
			"ip_prefix", privacy.AnonymizeIP(event.IP),
			"username", privacy.MaskUsername(event.Username),
			"risk_score", assessment.Score,
			"risk_factors", assessment.Factors,
		)
		c.notifySuspicious(ctx, event, assessment)
		return models.Challenge(&assessment, gathered.trusted), gathered.failedAttempts, true
	}
	return models.Allow(&assessment, gathered.trusted), gathered.failedAttempts, true
}

func (c *Coordinator) gatherSignals(ctx context.Context, event models.LoginEvent) (signals, error) {
	var result signals
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		isNew, err := c.history.IsNewLocation(gctx, event.UserID, event.IP)
		if err != nil {
			return err
		}
		result.newLocation = isNew
		return nil
	})
	g.Go(func() error {
		count, err := c.history.FailedAttempts(gctx, event.Username)
		if err != nil {
			return err
		}
		result.failedAttempts = count
		return nil
	})
	if fp := deviceFingerprint(event); fp != "" && !event.UserID.IsNil() {
		g.Go(func() error {
			result.trusted = c.trust.IsTrusted(gctx, event.UserID, fp)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return signals{}, err
	}
	return result, nil
}

// RecordOutcome applies the credential check result. A success remembers the
// address and clears the failure window; a failure extends it and sends any
// threshold notification that has not been sent yet. Store failures are
// logged and absorbed; only malformed input is returned.
func (c *Coordinator) RecordOutcome(ctx context.Context, event models.LoginEvent, success bool) error {
	if err := validation.IP(event.IP); err != nil {
		return err
	}
	if err := validation.Username(event.Username); err != nil {
		return err
	}
	event.IP = models.CanonicalIP(event.IP)

	if success {
		if err := c.history.RememberLocation(ctx, event.UserID, event.IP); err != nil {
			c.storeFailure(ctx, "remember_location", err)
		}
		if err := c.history.ClearFailures(ctx, event.Username); err != nil {
			c.storeFailure(ctx, "clear_failures", err)
		}
		return nil
	}

	count, err := c.history.RecordFailure(ctx, event.Username)
	if err != nil {
		c.storeFailure(ctx, "record_failure", err)
		return nil
	}
	if c.metrics != nil {
		c.metrics.IncrementFailedAttempts()
	}
	c.notifyThresholds(ctx, event, count)
	return nil
}

// notifyThresholds sends one notification per threshold the failure count
// has reached, guarded by a marker so each crossing is announced once.
func (c *Coordinator) notifyThresholds(ctx context.Context, event models.LoginEvent, count int) {
	if event.UserID.IsNil() {
		return
	}
	for _, threshold := range c.config.NotificationThresholds() {
		if count < threshold {
			return
		}
		first, err := c.history.MarkNotified(ctx, event.Username, threshold)
		if err != nil {
			c.storeFailure(ctx, "mark_notified", err)
			return
		}
		if !first {
			continue
		}

		c.send(ctx, event.UserID, notify.EventFailedLoginAttempts, map[string]any{
			"attempt_count": count,
			"threshold":     threshold,
		})
		observability.LogAudit(ctx, c.logger, observability.EventThresholdNotified,
			"user_id", event.UserID.String(),
			"threshold", threshold,
			"attempt_count", count,
		)
	}
}

func (c *Coordinator) notifySuspicious(ctx context.Context, event models.LoginEvent, assessment models.RiskAssessment) {
	if event.UserID.IsNil() {
		return
	}
	factors := make([]string, len(assessment.Factors))
	for i, f := range assessment.Factors {
		factors[i] = string(f)
	}
	c.send(ctx, event.UserID, notify.EventSuspiciousActivity, map[string]any{
		"ip_prefix":    privacy.AnonymizeIP(event.IP),
		"risk_score":   assessment.Score,
		"risk_level":   string(assessment.Level),
		"risk_factors": factors,
	})
	observability.LogAudit(ctx, c.logger, observability.EventSuspiciousActivity,
		"user_id", event.UserID.String(),
		"risk_score", assessment.Score,
	)
}

// send never propagates notifier failures.
func (c *Coordinator) send(ctx context.Context, userID id.UserID, eventType string, data map[string]any) {
	if err := c.notifier.Send(ctx, userID, eventType, data); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "notification not sent",
			"event_type", eventType,
			"user_id", userID.String(),
			"error", err,
		)
	}
}

func (c *Coordinator) failSafe(ctx context.Context, event models.LoginEvent, operation string, err error) {
	c.storeFailure(ctx, operation, err)
	observability.LogAudit(ctx, c.logger, observability.EventDecisionFailSafe,
		"operation", operation,
		"ip_prefix", privacy.AnonymizeIP(event.IP),
		"username", privacy.MaskUsername(event.Username),
		"store_unavailable", dErrors.IsStoreUnavailable(err),
	)
}

func (c *Coordinator) storeFailure(ctx context.Context, operation string, err error) {
	if c.metrics != nil {
		c.metrics.IncrementStoreFailure(operation)
	}
	if c.logger != nil {
		c.logger.ErrorContext(ctx, "access dependency failed",
			"operation", operation,
			"error", err,
		)
	}
}

// deviceFingerprint prefers the caller-supplied fingerprint and otherwise
// derives one from the request data.
func deviceFingerprint(event models.LoginEvent) string {
	if event.Fingerprint != "" {
		return event.Fingerprint
	}
	return fingerprint.Compute(event.RequestData)
}
