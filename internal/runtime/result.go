// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"strings"

	"github.com/spinkit/spin/pkg/types"
)

// Result is the outcome of a finished child process.
type Result struct {
	// ExitCode is the normalized exit status of the child.
	ExitCode types.ExitCode
	// Output holds the captured standard output and standard error,
	// interleaved as the child wrote them. Empty unless Capture was set.
	Output string
}

// LastLine returns the last non-empty line of Output.
func (r *Result) LastLine() string {
	out := strings.TrimRight(r.Output, "\r\n\t ")
	if i := strings.LastIndexByte(out, '\n'); i >= 0 {
		out = out[i+1:]
	}
	return strings.TrimSpace(out)
}

// Success returns true if the child exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess()
}
