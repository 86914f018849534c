// File: codes.go
// Title: Error Code Definitions
// Description: Defines standardized error codes for consistent error classification
//              across cdlc. Codes drive severity, log level selection and the
//              HTTP status returned by the compile service.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-03-02 v0.2.0: CDL syntax and resolution codes, dropped service codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// CDL parse phase (fatal for a compilation)
	CodeCDLUnexpectedEOF   Code = "CDL_UNEXPECTED_EOF"
	CodeCDLUnexpectedToken Code = "CDL_UNEXPECTED_TOKEN"
	CodeCDLUnknownToken    Code = "CDL_UNKNOWN_TOKEN"
	CodeCDLInvalidLiteral  Code = "CDL_INVALID_LITERAL"

	// CDL resolution phase (reported alongside a complete AST)
	CodeCDLDanglingReference   Code = "CDL_DANGLING_REFERENCE"
	CodeCDLDuplicateIdentifier Code = "CDL_DUPLICATE_IDENTIFIER"

	// Configuration and environment
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidLength    Code = "INVALID_LENGTH"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeDatabaseError, CodeConnectionFailed,
		CodeCDLUnexpectedEOF, CodeCDLUnexpectedToken, CodeCDLUnknownToken, CodeCDLInvalidLiteral,
		CodeCDLDanglingReference, CodeCDLDuplicateIdentifier,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig,
		CodeValidationFailed, CodeInvalidLength:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeDatabaseError, CodeConnectionFailed:
		return "database"
	case CodeCDLUnexpectedEOF, CodeCDLUnexpectedToken, CodeCDLUnknownToken, CodeCDLInvalidLiteral:
		return "syntax"
	case CodeCDLDanglingReference, CodeCDLDuplicateIdentifier:
		return "resolution"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeInvalidLength:
		return "validation"
	default:
		return "generic"
	}
}

// IsSyntax reports whether the code belongs to the parse phase
func (c Code) IsSyntax() bool {
	return c.Category() == "syntax"
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return 404
	case CodeInvalidInput, CodeValidationFailed,
		CodeCDLUnexpectedEOF, CodeCDLUnexpectedToken, CodeCDLUnknownToken, CodeCDLInvalidLiteral:
		return 400
	case CodeInvalidLength:
		return 413
	case CodeCDLDanglingReference, CodeCDLDuplicateIdentifier:
		return 422
	case CodeTimeout:
		return 408
	case CodeDatabaseError, CodeConnectionFailed:
		return 503
	default:
		return 500
	}
}
