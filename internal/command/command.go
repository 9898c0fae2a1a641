// SPDX-License-Identifier: MPL-2.0

package command

import (
	"maps"
	"os"
	"strings"
)

// Callback is the behavior of a command. args holds one value per visible
// parameter plus any hidden parameters the caller supplied.
type Callback func(cc *Context, args Args) error

// Command is a named, invocable unit.
type Command struct {
	// Name is hyphenated and unique within a Registry.
	Name string
	// Help is free text. Its first line is the short help.
	Help string
	// Params are the parameters shown in help and parsed from the CLI.
	Params []Param
	// Hidden are parameters removed from the CLI surface by Extend. Callers
	// invoking the command programmatically may still set them.
	Hidden   []Param
	Callback Callback

	// Spec is the configuration reference that produced the command.
	Spec string
	// Section is the help section, set by Registry.Register.
	Section string
	// Parent is the command this one was derived from by Extend.
	Parent *Command
	Origin Origin
	// Overrides records the defaults applied by ApplyOverrides.
	Overrides map[string]any
	// AllowExtraArgs passes unknown flags through to the callback as
	// positional arguments instead of rejecting them.
	AllowExtraArgs bool
}

// Clone returns a copy of c that shares no parameter storage with c.
// Parent still points at the original parent.
func (c *Command) Clone() *Command {
	out := *c
	out.Params = cloneParams(c.Params)
	out.Hidden = cloneParams(c.Hidden)
	if c.Overrides != nil {
		out.Overrides = maps.Clone(c.Overrides)
	}
	return &out
}

func cloneParams(params []Param) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = p.Clone()
	}
	return out
}

// ShortHelp returns the first non-empty line of Help.
func (c *Command) ShortHelp() string {
	for line := range strings.SplitSeq(strings.TrimSpace(c.Help), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Param returns the visible parameter called name.
func (c *Command) Param(name string) (*Param, bool) {
	return findParam(c.Params, name)
}

// HiddenParam returns the hidden parameter called name.
func (c *Command) HiddenParam(name string) (*Param, bool) {
	return findParam(c.Hidden, name)
}

// lookupParam searches visible parameters, then hidden ones.
func (c *Command) lookupParam(name string) (*Param, bool) {
	if p, ok := c.Param(name); ok {
		return p, true
	}
	return c.HiddenParam(name)
}

func findParam(params []Param, name string) (*Param, bool) {
	for i := range params {
		if params[i].Name == name {
			return &params[i], true
		}
	}
	return nil, false
}

// Bind validates args against the command's parameters and completes them.
// Every key must name a visible or hidden parameter and is converted to that
// parameter's kind. Visible parameters without a value take their EnvVar,
// then their Default, then the zero value of their kind.
func (c *Command) Bind(args Args) (Args, error) {
	out := make(Args, len(c.Params)+len(args))

	for k, v := range args {
		p, ok := c.lookupParam(k)
		if !ok {
			if c.AllowExtraArgs {
				out[k] = cloneValue(v)
				continue
			}
			return nil, &UnknownParamError{Command: c.Name, Param: k}
		}
		coerced, err := p.Coerce(v)
		if err != nil {
			return nil, err
		}
		out[k] = coerced
	}

	for _, p := range c.Params {
		if _, ok := out[p.Name]; ok {
			continue
		}
		if p.EnvVar != "" {
			if v, ok := os.LookupEnv(p.EnvVar); ok {
				coerced, err := p.Coerce(v)
				if err != nil {
					return nil, err
				}
				out[p.Name] = coerced
				continue
			}
		}
		if p.Default != nil {
			coerced, err := p.Coerce(cloneValue(p.Default))
			if err != nil {
				return nil, err
			}
			out[p.Name] = coerced
			continue
		}
		if p.Required {
			return nil, &MissingParamError{Command: c.Name, Param: p.Name}
		}
		out[p.Name] = p.ZeroValue()
	}

	return out, nil
}
