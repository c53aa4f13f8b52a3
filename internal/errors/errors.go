// Package errors provides standardized error handling for the gallery service.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code for the gallery service.
type ErrorCode string

const (
	// Validation errors
	GALLERY_VALIDATION  ErrorCode = "GALLERY_VALIDATION"  // General validation error
	GALLERY_BAD_REQUEST ErrorCode = "GALLERY_BAD_REQUEST" // Bad request

	// Authentication errors. The service deliberately uses one code for
	// every authentication failure so a client cannot tell a wrong
	// password from an unconfigured one.
	GALLERY_AUTHN ErrorCode = "GALLERY_AUTHN" // Authentication failed

	// Resource errors
	GALLERY_NOT_FOUND ErrorCode = "GALLERY_NOT_FOUND" // Resource not found

	// Server errors
	GALLERY_UPSTREAM    ErrorCode = "GALLERY_UPSTREAM"    // Object store call failed
	GALLERY_INTERNAL    ErrorCode = "GALLERY_INTERNAL"    // Internal server error
	GALLERY_UNAVAILABLE ErrorCode = "GALLERY_UNAVAILABLE" // Service unavailable
)

// Error represents a standardized error response.
type Error struct {
	Code          ErrorCode   `json:"code"`
	Message       string      `json:"message"`
	CorrelationID string      `json:"correlationId"`
	Details       interface{} `json:"details,omitempty"`
	HTTPStatus    int         `json:"-"`
}

// New creates a new Error with the specified code and message.
func New(code ErrorCode, message string, correlationID string) *Error {
	return &Error{
		Code:          code,
		Message:       message,
		CorrelationID: correlationID,
		HTTPStatus:    httpStatusCodeForCode(code),
	}
}

// NewWithDetails creates a new Error with the specified code, message, and details.
func NewWithDetails(code ErrorCode, message string, correlationID string, details interface{}) *Error {
	return &Error{
		Code:          code,
		Message:       message,
		CorrelationID: correlationID,
		Details:       details,
		HTTPStatus:    httpStatusCodeForCode(code),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// httpStatusCodeForCode maps error codes to HTTP status codes.
func httpStatusCodeForCode(code ErrorCode) int {
	switch code {
	case GALLERY_VALIDATION, GALLERY_BAD_REQUEST:
		return http.StatusBadRequest
	case GALLERY_AUTHN:
		return http.StatusUnauthorized
	case GALLERY_NOT_FOUND:
		return http.StatusNotFound
	case GALLERY_UNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
