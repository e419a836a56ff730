package errors

import (
	"errors"
	"fmt"
)

// DAQError is the structured error type for daqgen.
// It provides rich context for error handling, logging, and user presentation.
type DAQError struct {
	// Code is the unique error code (e.g., "ERR_402_MISSING_PARAMETER").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *DAQError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DAQError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() against sentinel DAQErrors.
func (e *DAQError) Is(target error) bool {
	if t, ok := target.(*DAQError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DAQError) WithDetail(key, value string) *DAQError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *DAQError) WithSuggestion(suggestion string) *DAQError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DAQError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *DAQError {
	return &DAQError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Sentinel returns a message-less DAQError usable as an errors.Is target.
func Sentinel(code string) *DAQError {
	return &DAQError{Code: code, Category: categoryFromCode(code), Severity: severityFromCode(code)}
}

// Wrap creates a DAQError from an existing error.
// The error's message becomes the DAQError message.
func Wrap(code string, err error) *DAQError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *DAQError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *DAQError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DAQError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var de *DAQError
	if errors.As(err, &de) {
		return de.Severity == SeverityFatal
	}
	return false
}

