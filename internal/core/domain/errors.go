// Package domain defines the shared domain vocabulary for SessKeep.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes follow the format SK-<AREA>-<NNNN>, where the numeric suffix hints
// at the closest HTTP status (4040 → 404, 5000 → 500, and so on).
type DomainError struct {
	Code    string // Error code (e.g., "SK-SESS-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
// Two DomainErrors compare equal when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks whether the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrSessionNotFound indicates the requested session is absent or expired.
	ErrSessionNotFound = NewDomainError("SK-SESS-4040", "session not found")

	// ErrInvalidSessionID indicates a malformed session ID.
	ErrInvalidSessionID = NewDomainError("SK-SESS-4001", "invalid session id")

	// ErrForeignSession indicates an entity that was not produced by this
	// registry was handed back to it. This is a programmer error, not a
	// retryable condition.
	ErrForeignSession = NewDomainError("SK-SESS-4003", "session does not belong to this store")

	// ErrNoSessionCookie indicates a cookie-flow request arrived without a
	// usable session cookie.
	ErrNoSessionCookie = NewDomainError("SK-SESS-4010", "no session cookie")
)

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrNilClock indicates a nil clock was injected into the store.
	ErrNilClock = NewDomainError("SK-CONF-4001", "clock is required")

	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = NewDomainError("SK-CONF-4002", "invalid configuration")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("SK-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SK-ARG-1002", "missing required argument")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("SK-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SK-SYS-4290", "too many requests")

	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SK-SYS-5000", "internal server error")
)
