package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aegis/internal/access/metrics"
	"aegis/internal/access/observability"
	"aegis/internal/access/ports/mocks"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/circuit"
	"aegis/pkg/platform/clock"
	"aegis/pkg/requestcontext"
	"aegis/pkg/testutil"
)

type DispatcherSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	sender  *mocks.MockNotifier
	metrics *metrics.Metrics
	user    id.UserID
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.sender = mocks.NewMockNotifier(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.user = testutil.TestIDs.UserID1
}

func (s *DispatcherSuite) TestCloseDrainsQueuedNotifications() {
	d, err := NewDispatcher(s.sender, WithMetrics(s.metrics))
	s.Require().NoError(err)

	data := map[string]any{"attempt_count": 3}
	s.sender.EXPECT().Send(gomock.Any(), s.user, EventFailedLoginAttempts, data).Return(nil).Times(3)

	for range 3 {
		s.Require().NoError(d.Send(s.ctx, s.user, EventFailedLoginAttempts, data))
	}
	d.Close()

	s.Equal(3.0, promtest.ToFloat64(s.metrics.AccessNotificationsTotal.WithLabelValues(EventFailedLoginAttempts, "sent")))
}

func (s *DispatcherSuite) TestSendAfterCloseFails() {
	d, err := NewDispatcher(s.sender)
	s.Require().NoError(err)
	d.Close()
	d.Close()

	s.Error(d.Send(s.ctx, s.user, EventSuspiciousActivity, nil))
}

func (s *DispatcherSuite) TestFullBufferDropsWithoutBlocking() {
	sender := newGatedSender()
	d, err := NewDispatcher(sender, WithBufferSize(1), WithMetrics(s.metrics))
	s.Require().NoError(err)

	s.Require().NoError(d.Send(s.ctx, s.user, EventSuspiciousActivity, nil))
	<-sender.started // worker holds the first notification
	s.Require().NoError(d.Send(s.ctx, s.user, EventSuspiciousActivity, nil))

	err = d.Send(s.ctx, s.user, EventSuspiciousActivity, nil)
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	close(sender.release)
	d.Close()
	s.Equal(2, sender.calls())
	s.Equal(1.0, promtest.ToFloat64(s.metrics.AccessNotificationsTotal.WithLabelValues(EventSuspiciousActivity, "dropped")))
}

func (s *DispatcherSuite) TestBreakerStopsDeliveryToFailingSender() {
	breaker := circuit.New("notifier",
		circuit.WithFailureThreshold(2),
		circuit.WithClock(clock.NewFake(testutil.Epoch)),
	)
	d, err := NewDispatcher(s.sender, WithBreaker(breaker), WithMetrics(s.metrics))
	s.Require().NoError(err)

	s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("smtp unavailable")).Times(2)

	for range 4 {
		s.Require().NoError(d.Send(s.ctx, s.user, EventFailedLoginAttempts, nil))
	}
	d.Close()

	s.Equal(circuit.StateOpen, breaker.State())
	s.Equal(2.0, promtest.ToFloat64(s.metrics.AccessNotificationsTotal.WithLabelValues(EventFailedLoginAttempts, "failed")))
	s.Equal(2.0, promtest.ToFloat64(s.metrics.AccessNotificationsTotal.WithLabelValues(EventFailedLoginAttempts, "circuit_open")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.AccessNotifierCircuitOpen))
}

func (s *DispatcherSuite) TestDeliveryOutlivesCallerContext() {
	ctx, cancel := context.WithCancel(requestcontext.WithRequestID(s.ctx, "req-1"))
	d, err := NewDispatcher(s.sender)
	s.Require().NoError(err)

	s.sender.EXPECT().Send(gomock.Any(), s.user, EventSuspiciousActivity, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ id.UserID, _ string, _ map[string]any) error {
			s.NoError(ctx.Err())
			s.Equal("req-1", requestcontext.RequestID(ctx))
			return nil
		})

	s.Require().NoError(d.Send(ctx, s.user, EventSuspiciousActivity, nil))
	cancel()
	d.Close()
}

func (s *DispatcherSuite) TestNilSenderRejected() {
	_, err := NewDispatcher(nil)
	s.Error(err)
}

func (s *DispatcherSuite) TestLogSenderWritesAuditEntry() {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sender.Send(s.ctx, s.user, EventFailedLoginAttempts, map[string]any{
		"attempt_count": 3,
		"threshold":     3,
	})
	s.Require().NoError(err)

	var entry map[string]any
	s.Require().NoError(json.Unmarshal(buf.Bytes(), &entry))
	s.Equal(observability.EventUserNotified, entry["event"])
	s.Equal(EventFailedLoginAttempts, entry["event_type"])
	s.Equal(s.user.String(), entry["user_id"])
	s.EqualValues(3, entry["threshold"])
}

// gatedSender blocks every delivery until release is closed.
type gatedSender struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	n       int
}

func newGatedSender() *gatedSender {
	return &gatedSender{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSender) Send(ctx context.Context, _ id.UserID, _ string, _ map[string]any) error {
	g.mu.Lock()
	g.n++
	g.mu.Unlock()
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-time.After(5 * time.Second):
	}
	return nil
}

func (g *gatedSender) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
