// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/spinkit/spin/internal/command"
)

const reportURL = "https://github.com/spinkit/spin"

// PanicError is a panic recovered from a command callback.
type PanicError struct {
	Command string
	Value   any
	Stack   []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("command %s panicked: %v", e.Command, e.Value)
}

// invokeGuarded runs cmd and turns a panic in its callback into a
// *PanicError.
func invokeGuarded(cc *command.Context, cmd *command.Command, args command.Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Command: cmd.Name, Value: r, Stack: debug.Stack()}
		}
	}()
	return cc.Invoke(cmd, args)
}

// panicSite returns the function and file:line that raised the panic: the
// first frame outside the runtime after the panic entry of a debug.Stack
// trace.
func panicSite(stack []byte) string {
	lines := strings.Split(string(stack), "\n")
	start := slices.IndexFunc(lines, func(l string) bool { return strings.HasPrefix(l, "panic(") })
	if start < 0 {
		return ""
	}
	// Each frame is a function line followed by an indented location.
	for i := start + 2; i+1 < len(lines); i += 2 {
		fn := strings.TrimSpace(lines[i])
		if strings.HasPrefix(fn, "runtime.") {
			continue
		}
		loc := strings.TrimSpace(lines[i+1])
		if at := strings.LastIndex(loc, " +0x"); at > 0 {
			loc = loc[:at]
		}
		return fn + "\n    " + loc
	}
	return ""
}

// reportPanic prints a truncated trace and where to report it.
func reportPanic(w io.Writer, p *PanicError, project string) {
	trace := fmt.Sprintf("panic: %v", p.Value)
	if site := panicSite(p.Stack); site != "" {
		trace += "\n\n  " + site
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, tracebackStyle.Render(trace))
	fmt.Fprintln(w)

	fmt.Fprintln(w, bugReportStyle.Render(strings.TrimSpace(command.Dedent(fmt.Sprintf(`
		If you suspect this is a bug in `+"`spin`"+`, please file a report at:

		  %s

		including the above traceback and the following information:

		  spin: %s, package: %s

		Aborting.`, reportURL, Version, project)))))
}
