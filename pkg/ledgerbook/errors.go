package ledgerbook

import (
	"errors"
	"fmt"
	"strings"

	internalTypes "github.com/ledgerbook/ledgerbook-go/internal/types"
)

var (
	// ErrNotAuthenticated is returned when authentication is required
	ErrNotAuthenticated = internalTypes.ErrNotAuthenticated

	// ErrLoginFailed is returned when login fails
	ErrLoginFailed = internalTypes.ErrLoginFailed

	// ErrSessionExpired is returned when session has expired
	ErrSessionExpired = internalTypes.ErrSessionExpired

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = internalTypes.ErrRateLimited

	// ErrTimeout is returned on timeout
	ErrTimeout = internalTypes.ErrTimeout

	// ErrNotFound is returned when resource not found
	ErrNotFound = internalTypes.ErrNotFound

	// ErrConflict is returned when the server rejects a write as conflicting
	ErrConflict = internalTypes.ErrConflict

	// ErrServerError is returned for server errors
	ErrServerError = internalTypes.ErrServerError

	// ErrInvalidRequest is returned for invalid requests
	ErrInvalidRequest = errors.New("invalid request")

	// ErrBackupFailed is returned when the server reports a failed backup or restore
	ErrBackupFailed = errors.New("backup job failed")

	// ErrBackupTimeout is returned when waiting on a backup job times out
	ErrBackupTimeout = errors.New("backup job timeout")
)

// Error represents an API error
type Error = internalTypes.Error

// ValidationError represents a client-side validation failure on one field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidRequest) match validation failures
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []*ValidationError `json:"errors"`
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", ve.Field, ve.Message)
	}
	return fmt.Sprintf("%d validation errors occurred: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Is lets errors.Is(err, ErrInvalidRequest) match validation failures
func (e *ValidationErrors) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Field returns the first error recorded for field, or nil
func (e *ValidationErrors) Field(field string) *ValidationError {
	for _, ve := range e.Errors {
		if ve.Field == field {
			return ve
		}
	}
	return nil
}

// Add records a validation failure
func (e *ValidationErrors) Add(field, message string, value interface{}) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message, Value: value})
}

// Err returns nil when nothing was recorded
func (e *ValidationErrors) Err() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewError creates a new API error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrLoginFailed) ||
		errors.Is(err, ErrSessionExpired)
}

// IsValidationError reports whether err came from client-side validation
func IsValidationError(err error) bool {
	var ve *ValidationErrors
	var single *ValidationError
	return errors.As(err, &ve) || errors.As(err, &single)
}

// IsRetryable checks if error is retryable
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
	}

	return false
}
