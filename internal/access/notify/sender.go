// Package notify delivers user-facing security notifications without
// blocking the login path.
package notify

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"aegis/internal/access/observability"
	id "aegis/pkg/domain"
)

// Event types sent to users.
const (
	EventFailedLoginAttempts = "failed_login_attempts"
	EventSuspiciousActivity  = "suspicious_activity"
)

// LogSender writes notifications to the audit log. It stands in for an
// email or push channel in deployments that have none.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, userID id.UserID, eventType string, data map[string]any) error {
	attrs := []any{"user_id", userID.String(), "event_type", eventType}
	for _, k := range slices.Sorted(maps.Keys(data)) {
		attrs = append(attrs, k, data[k])
	}
	observability.LogAudit(ctx, s.logger, observability.EventUserNotified, attrs...)
	return nil
}
