// Package errors defines the stable error kinds surfaced at component
// boundaries.
package errors

import (
	"net/http"
)

// APIError represents a structured API error
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Predefined errors
var (
	ErrBadRequest        = &APIError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: "Invalid request parameters"}
	ErrInvalidJSON       = &APIError{HTTPStatus: http.StatusBadRequest, Code: "INVALID_JSON", Message: "Invalid JSON format"}
	ErrValidation        = &APIError{HTTPStatus: http.StatusUnprocessableEntity, Code: "VALIDATION_FAILED", Message: "Validation failed"}
	ErrResourceNotFound  = &APIError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrInternalServer    = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
	ErrStreamUnavailable = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "STREAM_UNAVAILABLE", Message: "Log stream is unavailable"}
	ErrStoreUnavailable  = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "STORE_UNAVAILABLE", Message: "Log store is unavailable"}
	ErrStoreWriteFailed  = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "STORE_WRITE_FAILED", Message: "Log store write failed"}
)

// NewAPIError creates a new APIError based on a predefined error with a
// custom message.
func NewAPIError(base *APIError, message string) *APIError {
	return &APIError{
		HTTPStatus: base.HTTPStatus,
		Code:       base.Code,
		Message:    message,
	}
}

// NewValidationError creates a validation error with a custom message.
// Validation errors keep their 422 status end to end; they are never
// remapped to 500 by the error-handling middleware.
func NewValidationError(message string) *APIError {
	return NewAPIError(ErrValidation, message)
}

// NewStreamError creates a stream failure error carrying diagnostic detail.
func NewStreamError(err error) *APIError {
	return NewAPIError(ErrStreamUnavailable, "Log stream is unavailable: "+err.Error())
}

// NewNotFoundError creates a not found error with a custom message.
func NewNotFoundError(message string) *APIError {
	return NewAPIError(ErrResourceNotFound, message)
}
