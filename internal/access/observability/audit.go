// Package observability provides audit logging helpers for the access module.
package observability

import (
	"context"
	"log/slog"

	"aegis/pkg/requestcontext"
)

// Audit event names emitted by the access services.
const (
	EventLoginBlocked         = "access_login_blocked"
	EventLoginChallenged      = "access_login_challenged"
	EventDecisionFailSafe     = "access_decision_fail_safe"
	EventThresholdNotified    = "access_failed_attempts_notified"
	EventSuspiciousActivity   = "access_suspicious_activity"
	EventDeviceTrusted        = "access_device_trusted"
	EventDeviceEvicted        = "access_device_evicted"
	EventDeviceRevoked        = "access_device_revoked"
	EventSessionEvicted       = "access_session_evicted"
	EventSessionRevoked       = "access_session_revoked"
	EventLockoutStoreDegraded = "access_lockout_store_degraded"
	EventUserNotified         = "access_user_notified"
	EventDashboardAction      = "access_dashboard_action"
)

// LogAudit is a shared helper for logging audit events across access services.
// Callers pass anonymized values only; raw IPs and fingerprints never reach it.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrList ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}
	args := append(attrList, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, args...)
}
