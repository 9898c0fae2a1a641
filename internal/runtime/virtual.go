// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/spinkit/spin/pkg/types"
)

// Shell evaluates script with the embedded POSIX shell interpreter.
// Dir, Env, Capture, Echo, MustSucceed and the output options apply as they
// do for Run; Replace is ignored.
func (r *Runner) Shell(ctx context.Context, script string, opts ...Option) (*Result, error) {
	o := r.resolveOptions(opts)

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if o.echo {
		if o.dir != "" {
			fmt.Fprintln(o.stdout, r.echoStyle.Render("$ cd "+o.dir))
		}
		fmt.Fprintln(o.stdout, r.echoStyle.Render("$ "+script))
	}

	var output bytes.Buffer
	outW, errW := o.stdout, o.stderr
	if o.capture {
		outW, errW = &output, &output
	}

	runnerOpts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(r.environ(o.env)...)),
		interp.StdIO(r.Stdin, outW, errW),
	}
	if o.dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(o.dir))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	result := &Result{}
	runErr := runner.Run(ctx, prog)
	result.Output = output.String()

	if runErr != nil {
		var status interp.ExitStatus
		if !errors.As(runErr, &status) {
			return result, fmt.Errorf("script execution failed: %w", runErr)
		}
		result.ExitCode = types.ExitCode(status)
	}

	if !result.Success() && o.mustSucceed {
		if o.capture {
			_, _ = io.WriteString(o.stdout, result.Output)
		}
		return result, &ExitCodeError{Argv: []string{script}, Code: result.ExitCode}
	}
	return result, nil
}
