package shared

import (
	"errors"
	"net/http"

	jsonResponse "userhub/internal/transport/http/json"
	dErrors "userhub/pkg/domain-errors"
)

// ErrorResponse is the structured error envelope every handler returns.
// Message is always present so clients never have to sniff error shapes.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and
// a consistent JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		jsonResponse.WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
			Error:   string(domainErr.Code),
			Message: domainErr.Error(),
		})
		return
	}

	// Fallback for unexpected errors: never leak internals to clients.
	jsonResponse.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   string(dErrors.CodeInternal),
		Message: "something went wrong",
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	// Conflict maps to 400 alongside validation failures: duplicate email is
	// surfaced to clients as a bad request, distinguished by the error code.
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeConflict:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
