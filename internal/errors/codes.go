// Package errors provides structured error handling for daqgen.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (templates, output files, source trees)
//   - 4XX: Validation errors (parameters, blocks, plans)
//   - 5XX: Internal errors
//
// Every error is fail-fast. A configuration document that failed to
// render must never be handed to a DAQ process, so nothing here is
// retried automatically.
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and template store errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates parameter and input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeTemplateNotFound = "ERR_201_TEMPLATE_NOT_FOUND"
	ErrCodeOutputWrite      = "ERR_202_OUTPUT_WRITE"
	ErrCodeTargetExists     = "ERR_203_TARGET_EXISTS"
	ErrCodeSourceNotFound   = "ERR_204_SOURCE_NOT_FOUND"
	ErrCodeLockHeld         = "ERR_205_LOCK_HELD"

	// Validation errors (400-499)
	ErrCodeInvalidInput         = "ERR_401_INVALID_INPUT"
	ErrCodeMissingParameter     = "ERR_402_MISSING_PARAMETER"
	ErrCodeUnknownBlock         = "ERR_403_UNKNOWN_BLOCK"
	ErrCodeMalformedDefaultLine = "ERR_404_MALFORMED_DEFAULT_LINE"
	ErrCodeInvalidPlan          = "ERR_405_INVALID_PLAN"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "ERR_402_..." -> '4'
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityFatal
	case ErrCodeLockHeld:
		return SeverityWarning
	default:
		return SeverityError
	}
}
