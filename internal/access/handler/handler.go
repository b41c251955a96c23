// Package handler exposes the read-mostly dashboard over sessions, trusted
// devices and risk scoring. It is not an authentication endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aegis/internal/access/models"
	"aegis/internal/access/observability"
	"aegis/internal/access/service/fingerprint"
	"aegis/internal/access/service/risk"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/httputil"
	"aegis/pkg/platform/middleware/admin"
	"aegis/pkg/platform/privacy"
	"aegis/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks SessionService,DeviceService,RiskService

type SessionService interface {
	ListActive(ctx context.Context, userID id.UserID) ([]models.SessionRecord, error)
	Enforce(ctx context.Context, userID id.UserID, maxSessions int) (int, error)
	Revoke(ctx context.Context, sessionID id.SessionID) error
}

type DeviceService interface {
	List(ctx context.Context, userID id.UserID) ([]models.TrustedDevice, error)
	AddTrusted(ctx context.Context, userID id.UserID, fingerprint string) error
	RemoveTrusted(ctx context.Context, userID id.UserID, fingerprint string) error
}

type RiskService interface {
	Score(signals models.RiskSignals) models.RiskAssessment
}

type Handler struct {
	sessions SessionService
	devices  DeviceService
	risk     RiskService
	logger   *slog.Logger
}

func New(sessions SessionService, devices DeviceService, risk RiskService, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		devices:  devices,
		risk:     risk,
		logger:   logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/users/{userID}/sessions", h.HandleListSessions)
	r.Post("/users/{userID}/sessions/enforce", h.HandleEnforceSessions)
	r.Delete("/sessions/{sessionID}", h.HandleRevokeSession)

	r.Get("/users/{userID}/devices", h.HandleListDevices)
	r.Post("/users/{userID}/devices", h.HandleTrustDevice)
	r.Delete("/users/{userID}/devices/{fingerprint}", h.HandleRemoveDevice)

	r.Post("/risk/score", h.HandleScore)
	r.Get("/risk/levels/{level}", h.HandleRiskLevel)
}

type sessionsResponse struct {
	Sessions []models.SessionRecord `json:"sessions"`
	Count    int                    `json:"count"`
}

type enforceRequest struct {
	MaxSessions int `json:"max_sessions" validate:"required,min=1"`
}

type enforceResponse struct {
	Evicted int `json:"evicted"`
}

type devicesResponse struct {
	Devices []models.TrustedDevice `json:"devices"`
	Count   int                    `json:"count"`
}

// trustDeviceRequest names the device either by fingerprint or by the raw
// request data it is derived from.
type trustDeviceRequest struct {
	Fingerprint string            `json:"fingerprint" validate:"omitempty,fingerprint"`
	RequestData map[string]string `json:"request_data" validate:"required_without=Fingerprint"`
}

type trustDeviceResponse struct {
	Fingerprint string `json:"fingerprint"`
	Trusted     bool   `json:"trusted"`
}

type riskLevelResponse struct {
	Level    models.RiskLevel `json:"level"`
	MinScore int              `json:"min_score"`
}

// HandleListSessions implements GET /users/{userID}/sessions.
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	sessions, err := h.sessions.ListActive(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "failed to list sessions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions, Count: len(sessions)})
}

// HandleEnforceSessions implements POST /users/{userID}/sessions/enforce.
// Input: { "max_sessions": 5 }
// Output: { "evicted": 2 }
func (h *Handler) HandleEnforceSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[enforceRequest](w, r, h.logger)
	if !ok {
		return
	}

	evicted, err := h.sessions.Enforce(ctx, userID, req.MaxSessions)
	if err != nil {
		h.fail(ctx, w, "failed to enforce session cap", err)
		return
	}
	h.audit(ctx, "enforce_sessions", "user_id", userID.String(), "evicted", evicted)
	httputil.WriteJSON(w, http.StatusOK, enforceResponse{Evicted: evicted})
}

// HandleRevokeSession implements DELETE /sessions/{sessionID}.
func (h *Handler) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.sessions.Revoke(ctx, sessionID); err != nil {
		h.fail(ctx, w, "failed to revoke session", err)
		return
	}
	h.audit(ctx, "revoke_session", "session_id", sessionID.String())
	w.WriteHeader(http.StatusNoContent)
}

// HandleListDevices implements GET /users/{userID}/devices.
func (h *Handler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	devices, err := h.devices.List(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "failed to list trusted devices", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, devicesResponse{Devices: devices, Count: len(devices)})
}

// HandleTrustDevice implements POST /users/{userID}/devices.
// Input: { "fingerprint": "<64 hex>" } or { "request_data": { "user_agent": "...", ... } }
func (h *Handler) HandleTrustDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[trustDeviceRequest](w, r, h.logger)
	if !ok {
		return
	}

	fp := req.Fingerprint
	if fp == "" {
		fp = fingerprint.Compute(req.RequestData)
		if fp == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "request_data has no fingerprint components"))
			return
		}
	}

	if err := h.devices.AddTrusted(ctx, userID, fp); err != nil {
		h.fail(ctx, w, "failed to trust device", err)
		return
	}
	h.audit(ctx, "trust_device", "user_id", userID.String(), "fingerprint_prefix", privacy.ShortFingerprint(fp))
	httputil.WriteJSON(w, http.StatusCreated, trustDeviceResponse{Fingerprint: fp, Trusted: true})
}

// HandleRemoveDevice implements DELETE /users/{userID}/devices/{fingerprint}.
// Removing an unknown device succeeds.
func (h *Handler) HandleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	fp := chi.URLParam(r, "fingerprint")
	if err := h.devices.RemoveTrusted(ctx, userID, fp); err != nil {
		h.fail(ctx, w, "failed to remove trusted device", err)
		return
	}
	h.audit(ctx, "remove_device", "user_id", userID.String(), "fingerprint_prefix", privacy.ShortFingerprint(fp))
	w.WriteHeader(http.StatusNoContent)
}

// HandleScore implements POST /risk/score. It scores caller-supplied
// signals for audit tooling and reads no state.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	signals, ok := httputil.DecodeJSON[models.RiskSignals](w, r, h.logger)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.risk.Score(*signals))
}

// HandleRiskLevel implements GET /risk/levels/{level}.
func (h *Handler) HandleRiskLevel(w http.ResponseWriter, r *http.Request) {
	level, err := models.ParseRiskLevel(chi.URLParam(r, "level"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, riskLevelResponse{Level: level, MinScore: risk.MinScore(level)})
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, false
	}
	return userID, true
}

// audit attributes a state-changing dashboard call to the operator.
func (h *Handler) audit(ctx context.Context, action string, attrs ...any) {
	attrs = append(attrs, "action", action, "actor_id", admin.ActorID(ctx))
	observability.LogAudit(ctx, h.logger, observability.EventDashboardAction, attrs...)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if h.logger != nil && !dErrors.IsValidation(err) {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
