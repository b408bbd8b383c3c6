package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes produced by the gate and its collaborators
const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

	// Credential errors, surfaced as 401
	ErrCodeTokenMissing    ErrorCode = "TOKEN_MISSING"
	ErrCodeTokenInvalid    ErrorCode = "TOKEN_INVALID"
	ErrCodeTokenExpired    ErrorCode = "TOKEN_EXPIRED"
	ErrCodeAccountNotFound ErrorCode = "ACCOUNT_NOT_FOUND"

	// Client configuration problem, 400
	ErrCodeMissingDeviceID ErrorCode = "MISSING_DEVICE_ID"

	// Expected security outcome, 403
	ErrCodeDeviceConflict ErrorCode = "DEVICE_CONFLICT"

	// Infrastructure fault, 500
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Error represents a structured error with code, message and an optional wrapped cause
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns ErrCodeInternal if the error is not a structured Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsCredentialError reports whether err is a client-supplied credential
// problem. These are never logged as server errors.
func IsCredentialError(err error) bool {
	switch GetCode(err) {
	case ErrCodeTokenMissing, ErrCodeTokenInvalid, ErrCodeTokenExpired, ErrCodeAccountNotFound:
		return true
	}
	return false
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMissingDeviceID:
		return http.StatusBadRequest

	// unknown accounts look like bad credentials to avoid enumeration
	case ErrCodeTokenMissing, ErrCodeTokenInvalid, ErrCodeTokenExpired, ErrCodeAccountNotFound:
		return http.StatusUnauthorized

	case ErrCodeDeviceConflict:
		return http.StatusForbidden

	case ErrCodeStoreUnavailable, ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// TokenMissing creates a "token missing" error
func TokenMissing() *Error {
	return New(ErrCodeTokenMissing, "no token provided")
}

// AccountNotFound creates an "account not found" error
func AccountNotFound(accountID string) *Error {
	return Newf(ErrCodeAccountNotFound, "account not found: %s", accountID)
}

// StoreUnavailable wraps a storage failure
func StoreUnavailable(err error, message string) *Error {
	return &Error{
		Code:    ErrCodeStoreUnavailable,
		Message: message,
		Err:     err,
	}
}
