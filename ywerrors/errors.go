package ywerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrEncoding indicates the byte stream could not be decoded under any
	// candidate encoding.
	ErrEncoding = errors.New("encoding error")

	// ErrUnrepairable indicates the XML fixer could not produce well-formed output.
	ErrUnrepairable = errors.New("unrepairable document")

	// ErrMalformedProject indicates well-formed XML missing mandatory structure.
	ErrMalformedProject = errors.New("malformed project")

	// ErrWriteIO indicates the destination could not be written.
	ErrWriteIO = errors.New("write error")

	// ErrLocked indicates the project is open in yWriter (a lock file exists).
	ErrLocked = errors.New("project is locked")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// EncodingError represents a byte stream that no candidate encoding could
// decode without invalid sequences.
type EncodingError struct {
	// Path is the file path or source identifier
	Path string
	// Declared is the encoding named in the XML prologue ("" if none)
	Declared string
	// Tried lists the encodings attempted, in order
	Tried []string
	// Message describes the failure
	Message string
	// Cause is the last decoding error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *EncodingError) Error() string {
	msg := "encoding error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Declared != "" {
		msg += fmt.Sprintf(" (declared %s)", e.Declared)
	}
	if len(e.Tried) > 0 {
		msg += fmt.Sprintf(" (tried %v)", e.Tried)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// UnrepairableDocumentError represents text that still fails to parse as
// well-formed XML after every repair has been applied.
type UnrepairableDocumentError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where parsing failed (0 if unknown)
	Line int
	// Message describes the parse failure
	Message string
	// Cause is the underlying parser error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *UnrepairableDocumentError) Error() string {
	msg := "unrepairable document"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *UnrepairableDocumentError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *UnrepairableDocumentError) Is(target error) bool {
	return target == ErrUnrepairable
}

// MalformedProjectError represents a well-formed document that lacks
// mandatory project structure, such as the project title or a scene's
// containing chapter.
type MalformedProjectError struct {
	// Path is the file path or source identifier
	Path string
	// Element is the element or entity at fault (e.g., "PROJECT/Title", "SCENE 12")
	Element string
	// Message describes what is missing or invalid
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *MalformedProjectError) Error() string {
	msg := "malformed project"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Element != "" {
		msg += " at " + e.Element
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *MalformedProjectError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *MalformedProjectError) Is(target error) bool {
	return target == ErrMalformedProject
}

// WriteIOError represents a failure to write the destination document.
// The operating system error is kept verbatim as Cause.
type WriteIOError struct {
	// Path is the destination file path
	Path string
	// Op is the failed operation: "lock", "backup", "write", "close", "restore"
	Op string
	// IsLocked is true if the write was refused because of a lock file
	IsLocked bool
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *WriteIOError) Error() string {
	msg := "write error"
	if e.IsLocked {
		msg = "project is locked"
	}
	if e.Op != "" {
		msg += " (" + e.Op + ")"
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *WriteIOError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrWriteIO, and also ErrLocked when IsLocked is set.
func (e *WriteIOError) Is(target error) bool {
	if target == ErrWriteIO {
		return true
	}
	return target == ErrLocked && e.IsLocked
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
