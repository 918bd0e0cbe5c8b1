package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeServer     ErrorType = "server"
	ErrorTypeClipboard  ErrorType = "clipboard"
	ErrorTypeMedia      ErrorType = "media"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    detail,
		StatusCode: http.StatusBadRequest,
	}
}

// NewTransportError reports a failed exchange with the extraction backend:
// a network failure, a non-success status or an undecodable body.
func NewTransportError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransport,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewServerError wraps the message of a well-formed `{"error": ...}` reply.
// Message is kept verbatim.
func NewServerError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeServer,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewClipboardError creates a new clipboard error
func NewClipboardError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeClipboard,
		Message:    message,
		StatusCode: http.StatusConflict,
		Cause:      cause,
	}
}

// NewMediaError creates a new media error
func NewMediaError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeMedia,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetMessage returns the user-facing message of an AppError, or fallback.
func GetMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
