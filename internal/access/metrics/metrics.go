package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AccessDecisionsTotal          *prometheus.CounterVec
	AccessEvaluationDuration      prometheus.Histogram
	AccessRiskScore               prometheus.Histogram
	AccessFailedAttemptsTotal     prometheus.Counter
	AccessNotificationsTotal      *prometheus.CounterVec
	AccessStoreFailuresTotal      *prometheus.CounterVec
	AccessSessionsEvictedTotal    prometheus.Counter
	AccessNotifierCircuitOpen     prometheus.Gauge
	AccessNotificationQueueLength prometheus.Gauge
	SessionCleanupRunsTotal       *prometheus.CounterVec
	SessionCleanupRemovedTotal    prometheus.Counter
	SessionCleanupDuration        prometheus.Histogram
}

// New registers the access metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		AccessDecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_access_decisions_total",
			Help: "Total number of access decisions by outcome and reason",
		}, []string{"outcome", "reason"}),
		AccessEvaluationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aegis_access_evaluation_duration_seconds",
			Help:    "Duration of login evaluations in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		AccessRiskScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aegis_access_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: []float64{0, 20, 30, 40, 50, 60, 70, 90, 110},
		}),
		AccessFailedAttemptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "aegis_access_failed_attempts_recorded_total",
			Help: "Total number of failed credential checks recorded",
		}),
		AccessNotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_access_notifications_total",
			Help: "Total number of user notifications by event type and status",
		}, []string{"event_type", "status"}),
		AccessStoreFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_access_store_failures_total",
			Help: "Total number of shared store failures by operation",
		}, []string{"operation"}),
		AccessSessionsEvictedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "aegis_access_sessions_evicted_total",
			Help: "Total number of sessions revoked by the concurrency cap",
		}),
		AccessNotifierCircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aegis_access_notifier_circuit_open",
			Help: "Notifier circuit breaker state (0=closed, 1=open)",
		}),
		AccessNotificationQueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aegis_access_notification_queue_length",
			Help: "Notifications waiting for delivery",
		}),
		SessionCleanupRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_session_cleanup_runs_total",
			Help: "Total number of expired-session sweeps by status",
		}, []string{"status"}),
		SessionCleanupRemovedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_cleanup_removed_total",
			Help: "Total number of expired sessions removed by sweeps",
		}),
		SessionCleanupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aegis_session_cleanup_duration_seconds",
			Help:    "Duration of expired-session sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementDecision(outcome, reason string) {
	m.AccessDecisionsTotal.WithLabelValues(outcome, reason).Inc()
}

func (m *Metrics) ObserveEvaluation(start time.Time) {
	m.AccessEvaluationDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveRiskScore(score int) {
	m.AccessRiskScore.Observe(float64(score))
}

func (m *Metrics) IncrementFailedAttempts() {
	m.AccessFailedAttemptsTotal.Inc()
}

func (m *Metrics) IncrementNotification(eventType, status string) {
	m.AccessNotificationsTotal.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) IncrementStoreFailure(operation string) {
	m.AccessStoreFailuresTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) AddSessionsEvicted(count int) {
	m.AccessSessionsEvictedTotal.Add(float64(count))
}

func (m *Metrics) SetNotifierCircuitOpen(open bool) {
	if open {
		m.AccessNotifierCircuitOpen.Set(1)
	} else {
		m.AccessNotifierCircuitOpen.Set(0)
	}
}

func (m *Metrics) SetNotificationQueueLength(n int) {
	m.AccessNotificationQueueLength.Set(float64(n))
}

func (m *Metrics) ObserveSessionCleanup(status string, removed int, elapsed time.Duration) {
	m.SessionCleanupRunsTotal.WithLabelValues(status).Inc()
	m.SessionCleanupRemovedTotal.Add(float64(removed))
	m.SessionCleanupDuration.Observe(elapsed.Seconds())
}
