// File: severity.go
// Title: Error Severity Levels
// Description: Severity classification for errors. Severity decides the log
//              level used by the logger and whether an error should alert.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-03-02 v0.2.0: Severity mapping for CDL codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers problems in user input such as a malformed CDL file
	SeverityLow Severity = iota

	// SeverityMedium covers failures with a workaround, the default for new errors
	SeverityMedium

	// SeverityHigh covers failures of a backing resource such as the run store
	SeverityHigh

	// SeverityCritical covers states where the tool cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical

	case CodeDatabaseError, CodeConnectionFailed, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh

	case CodeTimeout, CodeMissingConfig, CodeCDLDuplicateIdentifier:
		return SeverityMedium

	case CodeInvalidInput, CodeNotFound, CodeValidationFailed, CodeInvalidLength,
		CodeCDLUnexpectedEOF, CodeCDLUnexpectedToken, CodeCDLUnknownToken, CodeCDLInvalidLiteral,
		CodeCDLDanglingReference:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
