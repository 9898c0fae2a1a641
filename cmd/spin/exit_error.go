// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/pkg/types"
)

// ExitError signals a non-zero exit code whose message, if any, has already
// been printed.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeOf maps an error returned by a command to the process exit code.
// Child process failures keep their own code.
func exitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var childErr *runtime.ExitCodeError
	if errors.As(err, &childErr) {
		if childErr.Code == types.ExitSuccess {
			return types.ExitFailure
		}
		return childErr.Code
	}
	return types.ExitFailure
}

// isQuiet reports errors that need no message of their own: the child
// process already wrote its diagnostics.
func isQuiet(err error) bool {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return true
	}
	var childErr *runtime.ExitCodeError
	return errors.As(err, &childErr)
}
