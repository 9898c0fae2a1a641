// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/spinkit/spin/internal/config"
	"github.com/spinkit/spin/internal/runtime"
)

// Context is the per-process execution context passed to every callback.
// It is built once by the dispatcher.
type Context struct {
	// Context carries cancellation for launched processes.
	Context  context.Context
	Config   *config.Config
	Registry *Registry
	Runner   *runtime.Runner
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *log.Logger
	// Version is the running spin version.
	Version string
}

// Invoke runs cmd with args under this context. args is validated and
// completed with Bind; the caller's map is not modified. Callbacks use it to
// run another command as a sub-step.
func (cc *Context) Invoke(cmd *Command, args Args) error {
	if cmd == nil || cmd.Callback == nil {
		return fmt.Errorf("invoke: command has no callback")
	}
	bound, err := cmd.Bind(args)
	if err != nil {
		return err
	}
	if cc.Logger != nil {
		cc.Logger.Debug("invoking command", "name", cmd.Name, "spec", cmd.Spec)
	}
	return cmd.Callback(cc, bound)
}

// Lookup finds a registered command by name. Cross-command dependencies go
// through here so that a configured command can replace a built-in of the
// same name.
func (cc *Context) Lookup(name string) (*Command, bool) {
	if cc.Registry == nil {
		return nil, false
	}
	return cc.Registry.Lookup(name)
}

// InvokeName looks up name in the registry and invokes it.
func (cc *Context) InvokeName(name string, args Args) error {
	cmd, ok := cc.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return cc.Invoke(cmd, args)
}

// WithStdout returns a copy of cc whose output, including that of launched
// processes, goes to w.
func (cc *Context) WithStdout(w io.Writer) *Context {
	c := *cc
	c.Stdout = w
	if cc.Runner != nil {
		c.Runner = cc.Runner.WithOutput(w, cc.Stderr)
	}
	return &c
}

// Ctx returns the context.Context, defaulting to context.Background.
func (cc *Context) Ctx() context.Context {
	if cc.Context == nil {
		return context.Background()
	}
	return cc.Context
}

// Printf writes formatted text to Stdout.
func (cc *Context) Printf(format string, a ...any) {
	fmt.Fprintf(cc.Stdout, format, a...)
}
