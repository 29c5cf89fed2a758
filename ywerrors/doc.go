// Package ywerrors provides structured error types for yw7tools.
//
// Import path: github.com/erraggy/yw7tools/ywerrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to tell an undecodable file apart from a broken project or a
// failed write.
//
// # Error Types
//
//   - [EncodingError]: no candidate encoding decodes the byte stream
//   - [UnrepairableDocumentError]: the XML fixer could not produce well-formed output
//   - [MalformedProjectError]: well-formed XML missing mandatory project structure
//   - [WriteIOError]: the destination could not be written
//   - [ConfigError]: invalid configuration or input options
//
// Dangling references and unsupported fields are not errors. They are
// recovered locally and reported as issues on the conversion result.
//
// # Sentinel Errors
//
//   - [ErrEncoding]: Matches any [EncodingError]
//   - [ErrUnrepairable]: Matches any [UnrepairableDocumentError]
//   - [ErrMalformedProject]: Matches any [MalformedProjectError]
//   - [ErrWriteIO]: Matches any [WriteIOError]
//   - [ErrLocked]: Matches [WriteIOError] with IsLocked=true
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage
//
//	result, err := converter.Import("novel.yw7")
//	if err != nil {
//	    var mpe *ywerrors.MalformedProjectError
//	    if errors.As(err, &mpe) {
//	        fmt.Println("broken element:", mpe.Element)
//	    }
//	    if errors.Is(err, ywerrors.ErrLocked) {
//	        fmt.Println("close the project in yWriter first")
//	    }
//	}
package ywerrors
