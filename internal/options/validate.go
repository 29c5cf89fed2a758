// Package options provides shared utilities for option validation across packages.
package options

import "github.com/erraggy/yw7tools/ywerrors"

// ValidateSingleInputSource ensures exactly one input source is specified.
// sources is a variadic list of booleans indicating whether each source is set.
// noSourceMsg is the error message when no source is specified.
// multiSourceMsg is the error message when multiple sources are specified.
// The error is a *ywerrors.ConfigError for option "input".
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	switch n := count(sources); {
	case n == 0:
		return &ywerrors.ConfigError{Option: "input", Message: noSourceMsg}
	case n > 1:
		return &ywerrors.ConfigError{Option: "input", Message: multiSourceMsg}
	}
	return nil
}

// ValidateAtMostOne ensures no more than one of the named options is set.
func ValidateAtMostOne(option, msg string, set ...bool) error {
	if count(set) > 1 {
		return &ywerrors.ConfigError{Option: option, Message: msg}
	}
	return nil
}

func count(set []bool) int {
	n := 0
	for _, ok := range set {
		if ok {
			n++
		}
	}
	return n
}
