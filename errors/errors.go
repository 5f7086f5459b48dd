package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the unified flowkit error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// IsCode reports whether err (or any error it wraps) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// --- Common Error Constructors ---

// QueueClosed creates an Error for an operation attempted on a closed queue.
func QueueClosed(op string) *Error {
	return &Error{
		Code:    ErrCodeQueueClosed,
		Message: fmt.Sprintf("%s on a closed queue", op),
	}
}

// WorkerFailed creates an Error for a work function that returned an error
// or panicked. The stage index identifies which pool the worker belonged to.
func WorkerFailed(stage int, cause error) *Error {
	return &Error{
		Code:    ErrCodeWorkerFailed,
		Message: fmt.Sprintf("work function failed in stage %d", stage),
		Cause:   cause,
	}
}

// MissingOperation creates an Error for a named operation absent from the
// registry at stage-construction time.
func MissingOperation(name string) *Error {
	return &Error{
		Code:    ErrCodeMissingOperation,
		Message: fmt.Sprintf("operation %q is not registered", name),
	}
}

// InvalidConfig creates an Error for configuration that failed validation.
func InvalidConfig(cause error) *Error {
	return &Error{
		Code:    ErrCodeInvalidConfig,
		Message: "invalid pipeline configuration",
		Cause:   cause,
	}
}
