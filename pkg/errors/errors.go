package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes used by the signup pipeline
const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

	// Local, recoverable, never leaves the process
	ErrCodeClientValidation ErrorCode = "CLIENT_VALIDATION"

	// Server-reported, attached to individual fields
	ErrCodeFieldSubmission ErrorCode = "FIELD_SUBMISSION"

	// Server-reported or transport-level, shown as a page banner
	ErrCodeGenericSubmission ErrorCode = "GENERIC_SUBMISSION"

	// State machine guards
	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeInvalidTransition  ErrorCode = "INVALID_TRANSITION"

	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"
)

// Coder is implemented by errors that carry an ErrorCode
type Coder interface {
	ErrorCode() ErrorCode
}

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
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

// ErrorCode implements Coder
func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// Is reports whether target is an *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
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
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode() == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error carries no code
func GetCode(err error) ErrorCode {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ErrCodeInternal
}

// UnknownField creates an "unknown field" error
func UnknownField(name string) *Error {
	return Newf(ErrCodeUnknownField, "unknown field: %s", name).WithDetail("field", name)
}

// InvalidTransition creates an error for a state change the machine does not allow
func InvalidTransition(event, from string) *Error {
	return Newf(ErrCodeInvalidTransition, "%s is not allowed from %s", event, from).
		WithDetail("event", event).
		WithDetail("from", from)
}
