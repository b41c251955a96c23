package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/validation"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 64 * 1024

// DecodeJSON decodes and validates the request body into T. On failure it
// writes the error response and returns false.
//
// Usage:
//
//	req, ok := httputil.DecodeJSON[trustDeviceRequest](w, r, h.logger)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	var req T
	if err := decoder.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := validation.Validate(&req); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return &req, true
}
