// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/spinkit/spin/pkg/platform"
	"github.com/spinkit/spin/pkg/types"
)

// Run executes argv. With the default options the command line is echoed,
// output streams to the Runner's writers, and a non-zero exit is reported as
// *ExitCodeError. A missing program yields *ExecutableNotFoundError.
func (r *Runner) Run(ctx context.Context, argv []string, opts ...Option) (*Result, error) {
	if len(argv) == 0 {
		return nil, errors.New("run: empty command line")
	}
	o := r.resolveOptions(opts)

	if o.echo {
		r.echoCommand(o, argv)
	}

	path, err := r.findExecutable(argv[0], o.dir)
	if err != nil {
		return nil, err
	}
	env := r.environ(o.env)

	if o.replace && r.replace != nil && platform.SupportsProcessReplacement() {
		if o.dir != "" {
			// Nothing runs after a successful replacement, so changing the
			// directory here cannot leak into later steps.
			if err := os.Chdir(o.dir); err != nil {
				return nil, fmt.Errorf("change directory to %s: %w", o.dir, err)
			}
		}
		if err := r.replace(path, argv, env); err != nil {
			return nil, fmt.Errorf("replace process with %s: %w", argv[0], err)
		}
		return &Result{}, nil
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Dir = o.dir
	cmd.Env = env
	cmd.Stdin = r.Stdin

	// A single writer for both streams makes os/exec share one pipe.
	var output bytes.Buffer
	if o.capture {
		cmd.Stdout = &output
		cmd.Stderr = &output
	} else {
		cmd.Stdout = o.stdout
		cmd.Stderr = o.stderr
	}

	runErr := cmd.Run()
	result := &Result{Output: output.String()}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("run %s: %w", argv[0], runErr)
		}
		result.ExitCode = types.Normalize(exitErr.ExitCode())
	}

	if !result.Success() && o.mustSucceed {
		if o.capture {
			_, _ = io.WriteString(o.stdout, result.Output)
		}
		return result, &ExitCodeError{Argv: argv, Code: result.ExitCode}
	}
	return result, nil
}

func (r *Runner) findExecutable(name, dir string) (string, error) {
	if dir != "" && !filepath.IsAbs(name) && strings.ContainsRune(name, filepath.Separator) {
		name = filepath.Join(dir, name)
	}
	path, err := r.lookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrDot) {
			return filepath.Abs(name)
		}
		return "", &ExecutableNotFoundError{Name: name, Err: err}
	}
	if !filepath.IsAbs(path) {
		return filepath.Abs(path)
	}
	return path, nil
}

func (r *Runner) echoCommand(o *options, argv []string) {
	if o.dir != "" {
		fmt.Fprintln(o.stdout, r.echoStyle.Render("$ cd "+o.dir))
	}
	fmt.Fprintln(o.stdout, r.echoStyle.Render("$ "+QuoteArgs(argv)))
}

// QuoteArgs renders argv as a single shell-safe command line.
func QuoteArgs(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			q = fmt.Sprintf("%q", arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
