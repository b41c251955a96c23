// Package httputil holds the JSON response and error mapping shared by the
// dashboard handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "aegis/pkg/domain-errors"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is already sent; an encoding failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates a domain error into a status code and error body.
// Store and internal failures never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: HTTPCode(dErrors.CodeInternal)})
		return
	}

	response := ErrorResponse{Error: HTTPCode(domainErr.Code)}
	switch domainErr.Code {
	case dErrors.CodeInternal, dErrors.CodeStoreUnavailable:
	default:
		response.ErrorDescription = domainErr.Message
	}
	WriteJSON(w, HTTPStatus(domainErr.Code), response)
}

// HTTPStatus maps a domain error code to an HTTP status code.
func HTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPCode maps a domain error code to the error string of the response body.
func HTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeStoreUnavailable:
		return "store_unavailable"
	default:
		return "internal_error"
	}
}
