// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ArgEnvPrefix prefixes the variables that carry parsed parameters into
// shell custom commands. They are stripped from every child environment so
// values never leak into nested spin invocations.
const ArgEnvPrefix = "SPIN_ARG_"

type (
	// Runner launches external programs. The zero value is not usable; create
	// one with NewRunner.
	Runner struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// Environ is the base environment for children. Nil means os.Environ().
		Environ []string

		echoStyle lipgloss.Style
		lookPath  func(file string) (string, error)
		replace   func(argv0 string, argv []string, envv []string) error
	}

	// Option configures a single Run or Shell call.
	Option func(*options)

	options struct {
		dir         string
		replace     bool
		mustSucceed bool
		capture     bool
		echo        bool
		env         map[string]string
		stdout      io.Writer
		stderr      io.Writer
	}
)

// NewRunner creates a Runner writing to the given streams and reading stdin
// from os.Stdin.
func NewRunner(stdout, stderr io.Writer) *Runner {
	return &Runner{
		Stdin:     os.Stdin,
		Stdout:    stdout,
		Stderr:    stderr,
		echoStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		lookPath:  exec.LookPath,
		replace:   replaceProcess,
	}
}

// Dir runs the child in path. The caller's working directory is untouched.
func Dir(path string) Option {
	return func(o *options) { o.dir = path }
}

// Replace replaces the current process with the child where the platform
// supports it. On success Run never returns.
func Replace() Option {
	return func(o *options) { o.replace = true }
}

// MustSucceed controls whether a non-zero exit is reported as an
// *ExitCodeError. Defaults to true.
func MustSucceed(v bool) Option {
	return func(o *options) { o.mustSucceed = v }
}

// Capture collects the child's output into the Result instead of streaming
// it. Captured output is written out before an *ExitCodeError is returned.
func Capture() Option {
	return func(o *options) { o.capture = true }
}

// Echo controls whether the command line is printed before running.
// Defaults to true.
func Echo(v bool) Option {
	return func(o *options) { o.echo = v }
}

// Env overlays variables onto the child's environment.
func Env(vars map[string]string) Option {
	return func(o *options) {
		if o.env == nil {
			o.env = make(map[string]string, len(vars))
		}
		maps.Copy(o.env, vars)
	}
}

// Stdout redirects the child's standard output (and the echo line).
func Stdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// Stderr redirects the child's standard error.
func Stderr(w io.Writer) Option {
	return func(o *options) { o.stderr = w }
}

func (r *Runner) resolveOptions(opts []Option) *options {
	o := &options{
		mustSucceed: true,
		echo:        true,
		stdout:      r.Stdout,
		stderr:      r.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.stdout == nil {
		o.stdout = io.Discard
	}
	if o.stderr == nil {
		o.stderr = io.Discard
	}
	return o
}

// environ merges the overlay onto the base environment. Later entries win
// for duplicate keys, and parameter variables of the current invocation are
// dropped.
func (r *Runner) environ(overlay map[string]string) []string {
	base := r.Environ
	if base == nil {
		base = os.Environ()
	}

	result := make([]string, 0, len(base)+len(overlay))
	for _, e := range base {
		name, _, ok := strings.Cut(e, "=")
		if !ok {
			result = append(result, e)
			continue
		}
		if strings.HasPrefix(name, ArgEnvPrefix) {
			continue
		}
		if _, overridden := overlay[name]; overridden {
			continue
		}
		result = append(result, e)
	}

	for _, k := range slices.Sorted(maps.Keys(overlay)) {
		result = append(result, k+"="+overlay[k])
	}
	return result
}

// LookupEnv returns the value of key in the environment children would see.
func (r *Runner) LookupEnv(key string) (string, bool) {
	env := r.Environ
	if env == nil {
		return os.LookupEnv(key)
	}
	for i := len(env) - 1; i >= 0; i-- {
		if name, value, ok := strings.Cut(env[i], "="); ok && name == key {
			return value, true
		}
	}
	return "", false
}

// WithOutput returns a copy of r writing to stdout and stderr.
func (r *Runner) WithOutput(stdout, stderr io.Writer) *Runner {
	c := *r
	c.Stdout = stdout
	c.Stderr = stderr
	return &c
}

// WithoutReplace returns a copy of r that runs Replace commands as ordinary
// children and returns their Result.
func (r *Runner) WithoutReplace() *Runner {
	c := *r
	c.replace = nil
	return &c
}
