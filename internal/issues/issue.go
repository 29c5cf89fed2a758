// Package issues provides a unified issue type for non-fatal conversion problems.
package issues

import (
	"fmt"
	"strings"

	"github.com/erraggy/yw7tools/internal/severity"
)

// Kind classifies an issue so callers can filter without parsing messages.
type Kind string

const (
	// KindDanglingReference marks a reference to an entity that does not exist.
	// The reference is dropped.
	KindDanglingReference Kind = "dangling-reference"
	// KindUnsupportedField marks a field that has no home in the target schema
	// or whose value does not fit its declared type. The field is dropped.
	KindUnsupportedField Kind = "unsupported-field"
	// KindDefaultedField marks an invalid optional value replaced by its default.
	KindDefaultedField Kind = "defaulted-field"
	// KindUnsupportedMarkup marks raw formatting codes removed from text.
	KindUnsupportedMarkup Kind = "unsupported-markup"
	// KindRepair marks a structural XML repair applied before parsing.
	KindRepair Kind = "repair"
	// KindEncoding marks an encoding decision, such as a fallback decode.
	KindEncoding Kind = "encoding"
)

// Issue represents a single problem found during conversion.
type Issue struct {
	// Kind classifies the issue
	Kind Kind
	// Path locates the problem in the document (e.g., "SCENES/SCENE[12]/Characters")
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates the severity level of the issue
	Severity severity.Severity
	// Entity names the entity the issue belongs to (e.g., "scene 12")
	Entity string
	// Field is the specific field name that has the issue
	Field string
	// Value is the problematic value (optional)
	Value any
	// Context provides additional information about the issue (optional)
	Context string
	// Line is the 1-based line number in the source file (0 if unknown)
	Line int
	// File is the source file path (empty when converting from memory)
	File string
}

// String returns a formatted string representation of the issue.
// Uses different symbols based on severity level:
// - "✗" for Error or Critical severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.SeverityError, severity.SeverityCritical:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	case severity.SeverityInfo:
		symbol = "ℹ"
	default:
		symbol = "?"
	}

	where := i.Path
	if i.Entity != "" {
		if where == "" {
			where = i.Entity
		} else {
			where = fmt.Sprintf("%s (%s)", where, i.Entity)
		}
	}

	var result string
	if i.Line > 0 {
		result = fmt.Sprintf("%s %s (line %d): %s", symbol, where, i.Line, i.Message)
	} else {
		result = fmt.Sprintf("%s %s: %s", symbol, where, i.Message)
	}

	if i.Context != "" {
		result += fmt.Sprintf("\n    Context: %s", i.Context)
	}

	return result
}

// Location returns the source location in IDE-friendly format.
// Returns "file:line" if file is set, "line N" if only line is set,
// or the document path if location is unknown.
func (i Issue) Location() string {
	if i.Line == 0 {
		return i.Path
	}
	if i.File != "" {
		return fmt.Sprintf("%s:%d", i.File, i.Line)
	}
	return fmt.Sprintf("line %d", i.Line)
}

// HasLocation returns true if this issue has source location information.
func (i Issue) HasLocation() bool {
	return i.Line > 0
}

// FormatPath joins element path segments with "/".
func FormatPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// List accumulates issues for one conversion.
type List []Issue

// Add appends an issue.
func (l *List) Add(i Issue) {
	*l = append(*l, i)
}

// Warn appends a warning of the given kind.
func (l *List) Warn(kind Kind, path, entity, format string, args ...any) {
	l.Add(Issue{
		Kind:     kind,
		Path:     path,
		Entity:   entity,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity.SeverityWarning,
	})
}

// Info appends an informational note of the given kind.
func (l *List) Info(kind Kind, path, format string, args ...any) {
	l.Add(Issue{
		Kind:     kind,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity.SeverityInfo,
	})
}

// Count returns the number of issues with the given severity.
func (l List) Count(s severity.Severity) int {
	n := 0
	for _, i := range l {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// OfKind returns the issues of the given kind, in order.
func (l List) OfKind(k Kind) List {
	var out List
	for _, i := range l {
		if i.Kind == k {
			out = append(out, i)
		}
	}
	return out
}

// WithoutInfo returns the issues that are not informational.
func (l List) WithoutInfo() List {
	out := make(List, 0, len(l))
	for _, i := range l {
		if i.Severity != severity.SeverityInfo {
			out = append(out, i)
		}
	}
	return out
}
