// Package errors provides the application's unified error type with
// machine-readable codes and HTTP status mapping. Domain failures are
// returned as *AppError values and inspected with errors.As at the HTTP
// boundary; panics are reserved for unrecoverable conditions.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode
	// Message is a human-readable error message, safe to send to clients.
	Message string
	// HTTPStatus is the HTTP status code for this error.
	HTTPStatus int
	// Cause is the underlying error. Logged, never sent to clients.
	Cause error
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// --- Domain Error Constructors ---

// DuplicateIdentifier reports that an email or username is already taken.
func DuplicateIdentifier() *AppError {
	return &AppError{
		Code: ErrCodeDuplicateIdentifier, Message: "Email or username is already used",
		HTTPStatus: http.StatusBadRequest,
	}
}

// IncompleteData reports missing required registration fields.
func IncompleteData() *AppError {
	return &AppError{
		Code: ErrCodeIncompleteData, Message: "Not enough data is filled",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NoSuchUser reports an operation on a nonexistent principal.
func NoSuchUser() *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: "No such user",
		HTTPStatus: http.StatusNotFound,
	}
}

// NoSuchStock reports an unknown stock symbol.
func NoSuchStock(symbol string) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("No stock with name %q", symbol),
		HTTPStatus: http.StatusNotFound,
	}
}

// MissingField reports a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeIncompleteData, Message: fmt.Sprintf("%q is required", field),
		HTTPStatus: http.StatusBadRequest,
	}
}

// Validation reports invalid input.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized reports a failed authentication attempt. The message never
// distinguishes unknown logins from wrong passwords.
func Unauthorized() *AppError {
	return &AppError{
		Code: ErrCodeUnauthorized, Message: "",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden reports insufficient rights. Intentionally carries no detail so
// it never reveals whether the target resource exists.
func Forbidden() *AppError {
	return &AppError{
		Code: ErrCodeForbidden, Message: "",
		HTTPStatus: http.StatusForbidden,
	}
}

// Internal reports an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "Something went wrong",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// DatabaseError wraps a storage failure. The driver message stays in Cause.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "Something went wrong",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// ExternalServiceError wraps a failure from an upstream service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service is unavailable", service),
		HTTPStatus: http.StatusBadGateway, Cause: cause,
	}
}
