// Package severity provides severity level constants and utilities
// for issues reported while importing or exporting a project.
//
//   - SeverityInfo: Informational notes about choices made (encoding fallback, XML repairs)
//   - SeverityWarning: Recovered data problems (dangling references, unsupported fields)
//   - SeverityError: Problems that abort the conversion
//   - SeverityCritical: Data that cannot be carried across at all
//
// The severity levels are ordered from least to most severe:
// Info < Warning < Error < Critical
package severity

// Severity indicates the severity level of an issue raised during conversion.
type Severity int

const (
	// SeverityError indicates a problem that aborts the conversion.
	SeverityError Severity = iota

	// SeverityWarning indicates a recovered problem: the offending reference or
	// field was dropped or defaulted and the conversion continued.
	SeverityWarning

	// SeverityInfo indicates informational messages about processing choices.
	// These are non-actionable notices that may be useful for debugging.
	SeverityInfo

	// SeverityCritical indicates data that cannot be carried across without loss.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}
