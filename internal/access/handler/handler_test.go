package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aegis/internal/access/handler/mocks"
	"aegis/internal/access/models"
	"aegis/internal/access/service/fingerprint"
	"aegis/internal/access/service/risk"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/httputil"
	"aegis/pkg/platform/middleware/admin"
	"aegis/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router   http.Handler
	ctrl     *gomock.Controller
	sessions *mocks.MockSessionService
	devices  *mocks.MockDeviceService
	logs     *bytes.Buffer
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessions = mocks.NewMockSessionService(s.ctrl)
	s.devices = mocks.NewMockDeviceService(s.ctrl)
	s.logs = &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(s.logs, nil))
	h := New(s.sessions, s.devices, risk.New(nil), logger)

	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) errorBody(rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	var body httputil.ErrorResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body
}

const userPath = "/users/11111111-1111-1111-1111-111111111111"

func (s *HandlerSuite) TestListSessions() {
	s.Run("returns active sessions", func() {
		session := testutil.NewSessionBuilder(testutil.Epoch).WithID(testutil.TestIDs.SessionID1).Build()
		s.sessions.EXPECT().ListActive(gomock.Any(), testutil.TestIDs.UserID1).
			Return([]models.SessionRecord{*session}, nil)

		rec := s.do(http.MethodGet, userPath+"/sessions", "")

		s.Equal(http.StatusOK, rec.Code)
		var body struct {
			Sessions []struct {
				ID     string `json:"id"`
				UserID string `json:"user_id"`
			} `json:"sessions"`
			Count int `json:"count"`
		}
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal(1, body.Count)
		s.Equal(testutil.TestIDs.SessionID1.String(), body.Sessions[0].ID)
		s.Equal(testutil.TestIDs.UserID1.String(), body.Sessions[0].UserID)
	})

	s.Run("rejects malformed user id", func() {
		rec := s.do(http.MethodGet, "/users/42/sessions", "")

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_error", s.errorBody(rec).Error)
	})

	s.Run("store failure hides detail", func() {
		s.sessions.EXPECT().ListActive(gomock.Any(), testutil.TestIDs.UserID1).
			Return(nil, dErrors.New(dErrors.CodeStoreUnavailable, "dial tcp 10.0.0.5:6379: refused"))

		rec := s.do(http.MethodGet, userPath+"/sessions", "")

		s.Equal(http.StatusServiceUnavailable, rec.Code)
		body := s.errorBody(rec)
		s.Equal("store_unavailable", body.Error)
		s.Empty(body.ErrorDescription)
	})
}

func (s *HandlerSuite) TestEnforceSessions() {
	s.Run("returns evicted count", func() {
		s.sessions.EXPECT().Enforce(gomock.Any(), testutil.TestIDs.UserID1, 3).Return(2, nil)

		rec := s.do(http.MethodPost, userPath+"/sessions/enforce", `{"max_sessions":3}`)

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"evicted":2}`, rec.Body.String())
	})

	s.Run("rejects non-positive cap", func() {
		rec := s.do(http.MethodPost, userPath+"/sessions/enforce", `{"max_sessions":0}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects invalid json", func() {
		rec := s.do(http.MethodPost, userPath+"/sessions/enforce", "not valid json")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects unknown fields", func() {
		rec := s.do(http.MethodPost, userPath+"/sessions/enforce", `{"max_sessions":3,"force":true}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestRevokeSession() {
	s.Run("revokes by id", func() {
		s.sessions.EXPECT().Revoke(gomock.Any(), testutil.TestIDs.SessionID1).Return(nil)

		rec := s.do(http.MethodDelete, "/sessions/"+testutil.TestIDs.SessionID1.String(), "")

		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("audits the operator", func() {
		s.sessions.EXPECT().Revoke(gomock.Any(), testutil.TestIDs.SessionID2).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/sessions/"+testutil.TestIDs.SessionID2.String(), nil)
		req = req.WithContext(admin.WithActorID(req.Context(), "ops-alice"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusNoContent, rec.Code)
		s.Contains(s.logs.String(), "event=access_dashboard_action")
		s.Contains(s.logs.String(), "action=revoke_session")
		s.Contains(s.logs.String(), "actor_id=ops-alice")
	})

	s.Run("rejects nil session id", func() {
		rec := s.do(http.MethodDelete, "/sessions/00000000-0000-0000-0000-000000000000", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestDevices() {
	fp := testutil.Fingerprint("laptop")

	s.Run("lists trusted devices", func() {
		s.devices.EXPECT().List(gomock.Any(), testutil.TestIDs.UserID1).Return([]models.TrustedDevice{
			{Fingerprint: fp, UserID: testutil.TestIDs.UserID1, LastSeen: testutil.Epoch, Trusted: true},
		}, nil)

		rec := s.do(http.MethodGet, userPath+"/devices", "")

		s.Equal(http.StatusOK, rec.Code)
		var body struct {
			Devices []models.TrustedDevice `json:"devices"`
			Count   int                    `json:"count"`
		}
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal(1, body.Count)
		s.Equal(fp, body.Devices[0].Fingerprint)
	})

	s.Run("trusts explicit fingerprint", func() {
		s.devices.EXPECT().AddTrusted(gomock.Any(), testutil.TestIDs.UserID1, fp).Return(nil)

		rec := s.do(http.MethodPost, userPath+"/devices", `{"fingerprint":"`+fp+`"}`)

		s.Equal(http.StatusCreated, rec.Code)
		s.JSONEq(`{"fingerprint":"`+fp+`","trusted":true}`, rec.Body.String())
	})

	s.Run("derives fingerprint from request data", func() {
		want := fingerprint.Compute(map[string]string{fingerprint.KeyUserAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"})
		s.devices.EXPECT().AddTrusted(gomock.Any(), testutil.TestIDs.UserID1, want).Return(nil)

		rec := s.do(http.MethodPost, userPath+"/devices",
			`{"request_data":{"user_agent":"Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"}}`)

		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("rejects malformed fingerprint", func() {
		rec := s.do(http.MethodPost, userPath+"/devices", `{"fingerprint":"abc"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects empty body", func() {
		rec := s.do(http.MethodPost, userPath+"/devices", `{}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects request data without components", func() {
		rec := s.do(http.MethodPost, userPath+"/devices", `{"request_data":{"unrelated":"x"}}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("removes device", func() {
		s.devices.EXPECT().RemoveTrusted(gomock.Any(), testutil.TestIDs.UserID1, fp).Return(nil)

		rec := s.do(http.MethodDelete, userPath+"/devices/"+fp, "")

		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("service validation error is surfaced", func() {
		s.devices.EXPECT().RemoveTrusted(gomock.Any(), testutil.TestIDs.UserID1, "nope").
			Return(dErrors.New(dErrors.CodeValidation, "fingerprint must be a 64 character hex digest"))

		rec := s.do(http.MethodDelete, userPath+"/devices/nope", "")

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("fingerprint must be a 64 character hex digest", s.errorBody(rec).ErrorDescription)
	})
}

func (s *HandlerSuite) TestScore() {
	rec := s.do(http.MethodPost, "/risk/score", `{"new_location":true,"multiple_failed_attempts":true}`)

	s.Equal(http.StatusOK, rec.Code)
	var body models.RiskAssessment
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Equal(70, body.Score)
	s.Equal(models.RiskHigh, body.Level)
	s.Equal([]models.RiskFactor{models.FactorNewLocation, models.FactorMultipleFailedAttempts}, body.Factors)
}

func (s *HandlerSuite) TestRiskLevel() {
	s.Run("known level", func() {
		rec := s.do(http.MethodGet, "/risk/levels/medium", "")

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"level":"medium","min_score":30}`, rec.Body.String())
	})

	s.Run("unknown level", func() {
		rec := s.do(http.MethodGet, "/risk/levels/extreme", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
