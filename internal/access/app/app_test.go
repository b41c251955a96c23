package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	access "aegis/internal/access/config"
	"aegis/internal/access/models"
	"aegis/internal/access/notify"
	"aegis/internal/access/store/session"
	"aegis/internal/platform/config"
	"aegis/internal/platform/kv"
	id "aegis/pkg/domain"
	"aegis/pkg/platform/clock"
	"aegis/pkg/testutil"
)

type sent struct {
	userID    id.UserID
	eventType string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingSender) Send(_ context.Context, userID id.UserID, eventType string, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{userID: userID, eventType: eventType})
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type AppSuite struct {
	suite.Suite
	ctx    context.Context
	clock  *clock.Fake
	sender *recordingSender
	cfg    config.Server
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(testutil.Epoch)
	s.sender = &recordingSender{}
	s.cfg = config.Server{
		Access:       access.DefaultConfig(),
		LocalKeyLock: true,
		Notify:       config.NotifyConfig{BufferSize: 16},
	}
}

func (s *AppSuite) memoryDeps() Deps {
	return Deps{
		Store:      kv.NewMemory(s.clock),
		Sessions:   session.NewInMemory(),
		Sender:     s.sender,
		Clock:      s.clock,
		Registerer: prometheus.NewRegistry(),
	}
}

func (s *AppSuite) TestNewRequiresDependencies() {
	deps := s.memoryDeps()
	deps.Store = nil
	_, err := New(s.cfg, deps)
	s.Error(err)

	cfg := s.cfg
	cfg.Access = nil
	_, err = New(cfg, s.memoryDeps())
	s.Error(err)
}

func (s *AppSuite) TestLoginFlowInMemory() {
	a, err := New(s.cfg, s.memoryDeps())
	s.Require().NoError(err)
	defer a.Close()

	event := testutil.NewLoginEventBuilder().Build()
	decision, err := a.Coordinator.Evaluate(s.ctx, event)
	s.Require().NoError(err)
	s.Equal(models.OutcomeAllow, decision.Outcome)

	for range 3 {
		s.Require().NoError(a.Coordinator.RecordOutcome(s.ctx, event, false))
	}
	s.Eventually(func() bool { return s.sender.count() == 1 }, time.Second, 5*time.Millisecond,
		"third failure notifies through the dispatcher")
}

func (s *AppSuite) TestLoginFlowOverRedis() {
	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	deps := s.memoryDeps()
	deps.Store = kv.NewBounded(kv.NewRedis(client), time.Second)
	deps.Sessions = session.NewRedis(client, s.clock)
	a, err := New(s.cfg, deps)
	s.Require().NoError(err)
	defer a.Close()

	event := testutil.NewLoginEventBuilder().WithFingerprint(testutil.Fingerprint("laptop")).Build()
	s.Require().NoError(a.Coordinator.RecordOutcome(s.ctx, event, true))
	s.Require().NoError(a.Devices.AddTrusted(s.ctx, event.UserID, event.Fingerprint))

	decision, err := a.Coordinator.Evaluate(s.ctx, event)
	s.Require().NoError(err)
	s.Equal(models.OutcomeAllow, decision.Outcome)
	s.True(decision.DeviceTrusted)
	s.Equal(models.RiskLow, decision.Risk.Level, "known location after a successful login")
}

func (s *AppSuite) TestDashboardServesComponents() {
	a, err := New(s.cfg, s.memoryDeps())
	s.Require().NoError(err)
	defer a.Close()
	s.Require().NoError(a.Devices.AddTrusted(s.ctx, testutil.TestIDs.UserID1, testutil.Fingerprint("laptop")))

	r := chi.NewRouter()
	a.Handler().Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+testutil.TestIDs.UserID1.String()+"/devices", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"count":1`)
}

func (s *AppSuite) TestLogSenderIsAcceptedAsSender() {
	deps := s.memoryDeps()
	deps.Sender = notify.NewLogSender(nil)
	a, err := New(s.cfg, deps)
	s.Require().NoError(err)
	a.Close()
}
