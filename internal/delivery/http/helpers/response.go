package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventmanage/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// Details carries structured context, e.g. the conflicting events on a 409.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// WriteDomainError maps a service error to the API response:
// validation errors are 400, authorization failures 403, missing records 404,
// scheduling conflicts 409 with the conflicting events in error details.
// Anything else is a 500. Returns the status code written.
func WriteDomainError(w http.ResponseWriter, err error) int {
	var conflictErr *domain.ConflictError
	switch {
	case domain.IsValidation(err):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return http.StatusBadRequest
	case errors.As(err, &conflictErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(APIResponse{
			Error: &APIError{
				Code:    ErrCodeConflict,
				Message: err.Error(),
				Details: conflictErr.Conflicts,
			},
		})
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, err.Error())
		return http.StatusConflict
	default:
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return http.StatusInternalServerError
	}
}
