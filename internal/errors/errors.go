package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline failures. Every error the core surfaces to
// the boundary carries exactly one of these types; callers branch on the
// type, not on message text.
type ErrorType string

const (
	ErrTypeInvalidLocator ErrorType = "INVALID_LOCATOR"
	ErrTypeFetchFailed    ErrorType = "FETCH_FAILED"
	ErrTypeUnreadable     ErrorType = "UNREADABLE_TABLE"
	ErrTypeMissingColumn  ErrorType = "MISSING_COLUMN"
	ErrTypePersistence    ErrorType = "PERSISTENCE"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// AppError is an application error with a type, a human-readable message
// and an optional cause preserved for errors.Is/As chains.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new application error.
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// TypeOf returns the error type of err, or "" when err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// NewInvalidLocator reports a locator from which no file identifier could
// be extracted.
func NewInvalidLocator(locator string) *AppError {
	return New(ErrTypeInvalidLocator, fmt.Sprintf("no file identifier found in %q", locator), nil)
}

// NewFetchFailed reports an upstream download failure.
func NewFetchFailed(message string, cause error) *AppError {
	return New(ErrTypeFetchFailed, message, cause)
}

// NewUnreadableTable reports a file that no supported encoding could decode.
func NewUnreadableTable(message string, cause error) *AppError {
	return New(ErrTypeUnreadable, message, cause)
}

// NewMissingColumn reports an absent required column, identified by its
// source header name.
func NewMissingColumn(column string) *AppError {
	return New(ErrTypeMissingColumn, fmt.Sprintf("missing required column %q", column), nil)
}

// NewPersistenceError reports a note-log I/O failure.
func NewPersistenceError(message string, cause error) *AppError {
	return New(ErrTypePersistence, message, cause)
}

// NewValidationError reports rejected user input.
func NewValidationError(message string, cause error) *AppError {
	return New(ErrTypeValidation, message, cause)
}

// NewConfigError reports invalid configuration.
func NewConfigError(message string, cause error) *AppError {
	return New(ErrTypeConfig, message, cause)
}
