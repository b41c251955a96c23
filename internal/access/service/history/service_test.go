package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aegis/internal/access/config"
	"aegis/internal/access/models"
	"aegis/internal/access/ports/mocks"
	"aegis/internal/access/service/slidingwindow"
	"aegis/internal/platform/kv"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/clock"
	"aegis/pkg/testutil"
)

type TrackerSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fake
	kv      *kv.Memory
	tracker *Tracker
	user    id.UserID
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(testutil.Epoch)
	s.kv = kv.NewMemory(s.clock)
	s.user = testutil.TestIDs.UserID1

	limiter, err := slidingwindow.New(s.kv, s.clock)
	s.Require().NoError(err)
	s.tracker, err = New(s.kv, limiter, s.clock)
	s.Require().NoError(err)
}

func (s *TrackerSuite) TestNewLocation() {
	s.Run("user without history is at a new location", func() {
		isNew, err := s.tracker.IsNewLocation(s.ctx, s.user, "198.51.100.7")
		s.Require().NoError(err)
		s.True(isNew)
	})

	s.Run("remembered address is known", func() {
		s.Require().NoError(s.tracker.RememberLocation(s.ctx, s.user, "198.51.100.7"))
		isNew, err := s.tracker.IsNewLocation(s.ctx, s.user, "198.51.100.7")
		s.Require().NoError(err)
		s.False(isNew)

		isNew, err = s.tracker.IsNewLocation(s.ctx, s.user, "198.51.100.8")
		s.Require().NoError(err)
		s.True(isNew)
	})

	s.Run("history is per user", func() {
		isNew, err := s.tracker.IsNewLocation(s.ctx, testutil.TestIDs.UserID2, "198.51.100.7")
		s.Require().NoError(err)
		s.True(isNew)
	})

	s.Run("nil user is always new and reads nothing", func() {
		isNew, err := s.tracker.IsNewLocation(s.ctx, id.UserID{}, "198.51.100.7")
		s.Require().NoError(err)
		s.True(isNew)
	})
}

func (s *TrackerSuite) TestMappedAddressMatchesKnownLocation() {
	s.Require().NoError(s.tracker.RememberLocation(s.ctx, s.user, "::ffff:198.51.100.7"))

	for _, ip := range []string{"198.51.100.7", "::FFFF:198.51.100.7", "0:0:0:0:0:ffff:c633:6407"} {
		isNew, err := s.tracker.IsNewLocation(s.ctx, s.user, ip)
		s.Require().NoError(err)
		s.False(isNew, ip)
	}
}

func (s *TrackerSuite) TestKnownLocationExpires() {
	s.Require().NoError(s.tracker.RememberLocation(s.ctx, s.user, "198.51.100.7"))
	s.clock.Advance(31 * 24 * time.Hour)

	isNew, err := s.tracker.IsNewLocation(s.ctx, s.user, "198.51.100.7")
	s.Require().NoError(err)
	s.True(isNew)
}

func (s *TrackerSuite) TestKnownLocationsAreBounded() {
	limiter, err := slidingwindow.New(s.kv, s.clock)
	s.Require().NoError(err)
	cfg := config.DefaultConfig()
	cfg.Risk.MaxKnownLocations = 3
	tracker, err := New(s.kv, limiter, s.clock, WithConfig(cfg))
	s.Require().NoError(err)

	for i := 1; i <= 4; i++ {
		s.Require().NoError(tracker.RememberLocation(s.ctx, s.user, fmt.Sprintf("198.51.100.%d", i)))
		s.clock.Advance(time.Minute)
	}

	isNew, err := tracker.IsNewLocation(s.ctx, s.user, "198.51.100.1")
	s.Require().NoError(err)
	s.True(isNew, "stalest address is dropped")
	for i := 2; i <= 4; i++ {
		isNew, err := tracker.IsNewLocation(s.ctx, s.user, fmt.Sprintf("198.51.100.%d", i))
		s.Require().NoError(err)
		s.False(isNew)
	}
}

func (s *TrackerSuite) TestFailureWindow() {
	for i := 1; i <= 3; i++ {
		count, err := s.tracker.RecordFailure(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal(i, count)
	}

	count, err := s.tracker.FailedAttempts(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.Equal(3, count, "usernames are case-insensitive")

	s.clock.Advance(31 * time.Minute)
	count, err = s.tracker.FailedAttempts(s.ctx, "alice")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *TrackerSuite) TestMarkNotifiedOnce() {
	first, err := s.tracker.MarkNotified(s.ctx, "alice", 3)
	s.Require().NoError(err)
	s.True(first)

	again, err := s.tracker.MarkNotified(s.ctx, "alice", 3)
	s.Require().NoError(err)
	s.False(again)

	other, err := s.tracker.MarkNotified(s.ctx, "alice", 5)
	s.Require().NoError(err)
	s.True(other, "markers are per threshold")

	s.clock.Advance(31 * time.Minute)
	expired, err := s.tracker.MarkNotified(s.ctx, "alice", 3)
	s.Require().NoError(err)
	s.True(expired, "marker lives as long as the failure window")
}

func (s *TrackerSuite) TestClearFailures() {
	_, err := s.tracker.RecordFailure(s.ctx, "alice")
	s.Require().NoError(err)
	_, err = s.tracker.MarkNotified(s.ctx, "alice", 3)
	s.Require().NoError(err)
	_, err = s.tracker.MarkNotified(s.ctx, "alice", 5)
	s.Require().NoError(err)

	s.Require().NoError(s.tracker.ClearFailures(s.ctx, "alice"))

	count, err := s.tracker.FailedAttempts(s.ctx, "alice")
	s.Require().NoError(err)
	s.Zero(count)
	first, err := s.tracker.MarkNotified(s.ctx, "alice", 3)
	s.Require().NoError(err)
	s.True(first)
	s.Equal(1, s.kv.Len(), "only the fresh marker remains")
}

func (s *TrackerSuite) TestStoreFailures() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockKVStore(ctrl)
	down := errors.New("connection refused")
	limiter, err := slidingwindow.New(store, s.clock)
	s.Require().NoError(err)
	tracker, err := New(store, limiter, s.clock)
	s.Require().NoError(err)

	s.Run("known location read", func() {
		store.EXPECT().Get(gomock.Any(), models.KnownIPsKey(s.user).String()).Return(nil, false, down)
		_, err := tracker.IsNewLocation(s.ctx, s.user, "198.51.100.7")
		s.True(dErrors.IsStoreUnavailable(err))
	})

	s.Run("corrupt known locations", func() {
		store.EXPECT().Get(gomock.Any(), models.KnownIPsKey(s.user).String()).Return([]byte("{"), true, nil)
		_, err := tracker.IsNewLocation(s.ctx, s.user, "198.51.100.7")
		s.True(dErrors.IsStoreUnavailable(err))
	})

	s.Run("marker write", func() {
		key := models.NotifiedKey("alice", 3).String()
		store.EXPECT().Get(gomock.Any(), key).Return(nil, false, nil)
		store.EXPECT().Set(gomock.Any(), key, gomock.Any(), 30*time.Minute).Return(down)
		first, err := tracker.MarkNotified(s.ctx, "alice", 3)
		s.False(first)
		s.True(dErrors.IsStoreUnavailable(err))
	})

	s.Run("failure window read", func() {
		store.EXPECT().Get(gomock.Any(), models.FailedAttemptsKey("alice").String()).Return(nil, false, down)
		_, err := tracker.FailedAttempts(s.ctx, "alice")
		s.True(dErrors.IsStoreUnavailable(err))
	})
}

func (s *TrackerSuite) TestNewRequiresDependencies() {
	limiter, err := slidingwindow.New(s.kv, s.clock)
	s.Require().NoError(err)

	_, err = New(nil, limiter, s.clock)
	s.Error(err)
	_, err = New(s.kv, nil, s.clock)
	s.Error(err)
	_, err = New(s.kv, limiter, nil)
	s.Error(err)
}
