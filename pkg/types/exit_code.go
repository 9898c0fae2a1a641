// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared across spin packages.
package types

import "strconv"

// ExitCode is the status spin exits with. A command that runs a child
// process exits with the child's status.
type ExitCode int

const (
	// ExitSuccess is returned when a command completes normally.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic failure code used for configuration errors,
	// unexpected panics and launch failures.
	ExitFailure ExitCode = 1
)

// IsSuccess reports whether c is ExitSuccess.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// Normalize maps a raw status reported by the OS into the 0-255 range.
// Negative values (a child killed by a signal reports -1) become ExitFailure;
// larger values keep their low byte, as a shell would observe them. A low
// byte of zero still counts as a failure.
func Normalize(raw int) ExitCode {
	switch {
	case raw < 0:
		return ExitFailure
	case raw > 255:
		if low := ExitCode(raw & 0xff); low != ExitSuccess {
			return low
		}
		return ExitFailure
	default:
		return ExitCode(raw)
	}
}

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
