// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// Kind is the value type of a parameter.
type Kind string

const (
	KindString  Kind = "string"
	KindBool    Kind = "bool"
	KindInt     Kind = "int"
	KindFloat   Kind = "float"
	KindStrings Kind = "strings"
)

// Param describes one option, flag or positional argument of a command.
type Param struct {
	// Name is the snake_case key used in Args and in configured overrides.
	Name string
	// Flags lists the spellings, e.g. "-j", "--jobs". A boolean may be
	// declared negatable with a single "--build/--no-build" entry.
	Flags []string
	Kind  Kind
	// Default is used when the parameter is not supplied. It is shown in help.
	Default  any
	Required bool
	Help     string
	Metavar  string
	// EnvVar supplies the value from the environment before Default applies.
	EnvVar     string
	Positional bool
	// Variadic marks a positional parameter collecting all remaining
	// arguments. Its Kind is KindStrings.
	Variadic bool
	Choices  []string
}

// Clone returns a deep copy of p. Slice defaults are copied as well.
func (p Param) Clone() Param {
	c := p
	c.Flags = slices.Clone(p.Flags)
	c.Choices = slices.Clone(p.Choices)
	c.Default = cloneValue(p.Default)
	return c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []any:
		return slices.Clone(t)
	default:
		return v
	}
}

// Coerce converts v to the parameter's Kind and checks Choices.
func (p Param) Coerce(v any) (any, error) {
	var (
		out any
		err error
	)
	switch p.Kind {
	case KindBool:
		out, err = cast.ToBoolE(v)
	case KindInt:
		out, err = cast.ToIntE(v)
	case KindFloat:
		out, err = cast.ToFloat64E(v)
	case KindStrings:
		if v == nil {
			return []string{}, nil
		}
		if s, ok := v.(string); ok {
			out = []string{s}
		} else {
			out, err = cast.ToStringSliceE(v)
		}
	default:
		out, err = cast.ToStringE(v)
	}
	if err != nil {
		return nil, &InvalidValueError{Param: p.Name, Kind: p.Kind, Value: v, Err: err}
	}

	if s, ok := out.(string); ok && len(p.Choices) > 0 && !slices.Contains(p.Choices, s) {
		return nil, &InvalidValueError{
			Param: p.Name,
			Kind:  p.Kind,
			Value: v,
			Err:   fmt.Errorf("must be one of %s", strings.Join(p.Choices, ", ")),
		}
	}
	return out, nil
}

// ZeroValue is the value bound to an unsupplied parameter without a default.
func (p Param) ZeroValue() any {
	switch p.Kind {
	case KindBool:
		return false
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindStrings:
		return []string{}
	default:
		return ""
	}
}

// Negatable splits a "--on/--off" spelling. ok is false for plain flags.
func (p Param) Negatable() (on, off string, ok bool) {
	for _, f := range p.Flags {
		if on, off, found := strings.Cut(f, "/"); found {
			return on, off, true
		}
	}
	return "", "", false
}

// LongFlag returns the first "--name" spelling without dashes, or the
// hyphenated Name when the parameter declares none.
func (p Param) LongFlag() string {
	for _, f := range p.Flags {
		f, _, _ = strings.Cut(f, "/")
		if strings.HasPrefix(f, "--") {
			return strings.TrimPrefix(f, "--")
		}
	}
	return strings.ReplaceAll(p.Name, "_", "-")
}

// ShortFlag returns the single-letter "-x" spelling without the dash, if any.
func (p Param) ShortFlag() string {
	for _, f := range p.Flags {
		if len(f) == 2 && f[0] == '-' && f[1] != '-' {
			return f[1:]
		}
	}
	return ""
}

// ParamName derives the Args key from a flag or argument spelling:
// "--build-dir" becomes "build_dir" and "MESON_ARGS" becomes "meson_args".
func ParamName(spelling string) string {
	spelling, _, _ = strings.Cut(spelling, "/")
	spelling = strings.TrimLeft(spelling, "-")
	return strings.ToLower(strings.ReplaceAll(spelling, "-", "_"))
}
