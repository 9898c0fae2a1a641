// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spinkit/spin/pkg/types"
)

// ErrExecutableNotFound is the sentinel wrapped by ExecutableNotFoundError.
var ErrExecutableNotFound = errors.New("executable not found")

type (
	// ExitCodeError reports a child process that finished with a non-zero
	// status while MustSucceed was in effect. The dispatcher turns it into
	// the exit status of spin itself.
	ExitCodeError struct {
		Argv []string
		Code types.ExitCode
	}

	// ExecutableNotFoundError is returned when argv[0] cannot be found on
	// PATH (or does not exist, for paths with a separator).
	ExecutableNotFoundError struct {
		Name string
		Err  error
	}
)

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("command `%s` exited with code %d", strings.Join(e.Argv, " "), e.Code)
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("executable not found: %s", e.Name)
}

// Unwrap returns ErrExecutableNotFound so callers can use errors.Is.
func (e *ExecutableNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecutableNotFound}
	}
	return []error{ErrExecutableNotFound, e.Err}
}
