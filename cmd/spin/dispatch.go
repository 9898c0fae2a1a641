// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spinkit/spin/internal/command"
)

// buildCommand translates cmd into a cobra command running under cc. The
// callback's result passes through finish.
func buildCommand(cc *command.Context, cmd *command.Command, groupID string, finish func(error) error) *cobra.Command {
	c := &cobra.Command{
		Use:     usageLine(cmd),
		Short:   cmd.ShortHelp(),
		Long:    cmd.Help,
		GroupID: groupID,
		Args:    positionalArgs(cmd),
		RunE: func(c *cobra.Command, argv []string) error {
			if cmd.AllowExtraArgs {
				known, rest, help := splitKnownFlags(c.Flags(), argv)
				if help {
					return c.Help()
				}
				if err := c.Flags().Parse(known); err != nil {
					return err
				}
				argv = rest
				if err := positionalArgs(cmd)(c, argv); err != nil {
					return err
				}
			}

			args, err := collectArgs(c.Flags(), cmd, argv)
			if err != nil {
				return err
			}
			run := *cc
			run.Context = c.Context()
			return finish(invokeGuarded(&run, cmd, args))
		},
	}
	// Unknown options are handed to the callback, so cobra must not parse.
	c.DisableFlagParsing = cmd.AllowExtraArgs

	for _, p := range cmd.Params {
		if !p.Positional {
			addFlag(c.Flags(), p)
		}
	}
	return c
}

func usageLine(cmd *command.Command) string {
	parts := []string{cmd.Name}
	if slices.ContainsFunc(cmd.Params, func(p command.Param) bool { return !p.Positional }) {
		parts = append(parts, "[OPTIONS]")
	}
	for _, p := range positionals(cmd) {
		name := p.Metavar
		if name == "" {
			name = strings.ToUpper(p.Name)
		}
		switch {
		case p.Variadic:
			name = "[" + name + "]..."
		case !p.Required:
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}

func positionals(cmd *command.Command) []command.Param {
	var out []command.Param
	for _, p := range cmd.Params {
		if p.Positional {
			out = append(out, p)
		}
	}
	return out
}

// positionalArgs checks the number of positional arguments: every required
// one must be present, and extras are rejected unless a variadic parameter
// or AllowExtraArgs collects them.
func positionalArgs(cmd *command.Command) cobra.PositionalArgs {
	return func(_ *cobra.Command, argv []string) error {
		params := positionals(cmd)
		variadic := slices.ContainsFunc(params, func(p command.Param) bool { return p.Variadic })

		required := 0
		for _, p := range params {
			if p.Required {
				required++
			}
		}
		if len(argv) < required {
			missing := params[len(argv)]
			for _, p := range params[len(argv):] {
				if p.Required {
					missing = p
					break
				}
			}
			return fmt.Errorf("missing argument %s", strings.ToUpper(missing.Name))
		}
		if !variadic && !cmd.AllowExtraArgs && len(argv) > len(params) {
			return fmt.Errorf("got unexpected extra argument%s (%s)",
				plural(len(argv)-len(params)), strings.Join(argv[len(params):], " "))
		}
		return nil
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// addFlag declares p on fs. The displayed default is the parameter default,
// so configured overrides show up in help.
func addFlag(fs *pflag.FlagSet, p command.Param) {
	usage := flagUsage(p)
	long, short := p.LongFlag(), p.ShortFlag()

	switch p.Kind {
	case command.KindBool:
		def := cast.ToBool(p.Default)
		if on, off, ok := p.Negatable(); ok {
			fs.BoolP(strings.TrimPrefix(on, "--"), short, def, usage)
			fs.Bool(strings.TrimPrefix(off, "--"), false, "Negate --"+strings.TrimPrefix(on, "--"))
			return
		}
		fs.BoolP(long, short, def, usage)
	case command.KindInt:
		fs.IntP(long, short, cast.ToInt(p.Default), usage)
	case command.KindFloat:
		fs.Float64P(long, short, cast.ToFloat64(p.Default), usage)
	case command.KindStrings:
		fs.StringArrayP(long, short, cast.ToStringSlice(p.Default), usage)
	default:
		fs.StringP(long, short, cast.ToString(p.Default), usage)
	}
	if p.Metavar != "" {
		if f := fs.Lookup(long); f != nil {
			f.Usage = "`" + p.Metavar + "` " + f.Usage
		}
	}
}

func flagUsage(p command.Param) string {
	usage := p.Help
	if len(p.Choices) > 0 {
		usage += fmt.Sprintf(" [choices: %s]", strings.Join(p.Choices, ", "))
	}
	if p.EnvVar != "" {
		usage += fmt.Sprintf(" [env var: %s]", p.EnvVar)
	}
	if p.Required {
		usage += " [required]"
	}
	return strings.TrimSpace(usage)
}

// collectArgs builds the Args of one invocation. Only flags the user set and
// positionals that were supplied are included, so that Bind falls back to
// the parameter defaults, configured overrides included, for the rest.
func collectArgs(fs *pflag.FlagSet, cmd *command.Command, argv []string) (command.Args, error) {
	args := command.Args{}

	for _, p := range cmd.Params {
		if p.Positional {
			continue
		}
		if err := collectFlag(fs, p, args); err != nil {
			return nil, err
		}
	}

	for i, p := range positionals(cmd) {
		if p.Variadic {
			if i < len(argv) {
				args[p.Name] = slices.Clone(argv[i:])
			}
			return args, nil
		}
		if i < len(argv) {
			args[p.Name] = argv[i]
		}
	}
	return args, nil
}

func collectFlag(fs *pflag.FlagSet, p command.Param, args command.Args) error {
	if p.Kind == command.KindBool {
		if on, off, ok := p.Negatable(); ok {
			on, off = strings.TrimPrefix(on, "--"), strings.TrimPrefix(off, "--")
			switch {
			case fs.Changed(off):
				args[p.Name] = false
			case fs.Changed(on):
				v, err := fs.GetBool(on)
				if err != nil {
					return err
				}
				args[p.Name] = v
			}
			return nil
		}
	}

	long := p.LongFlag()
	if !fs.Changed(long) {
		return nil
	}

	var (
		v   any
		err error
	)
	switch p.Kind {
	case command.KindBool:
		v, err = fs.GetBool(long)
	case command.KindInt:
		v, err = fs.GetInt(long)
	case command.KindFloat:
		v, err = fs.GetFloat64(long)
	case command.KindStrings:
		v, err = fs.GetStringArray(long)
	default:
		v, err = fs.GetString(long)
	}
	if err != nil {
		return err
	}
	args[p.Name] = v
	return nil
}

// splitKnownFlags separates the flags fs declares, with their values, from
// everything else. The first "--" ends option processing and is dropped.
// help reports a -h or --help among the known flags.
func splitKnownFlags(fs *pflag.FlagSet, argv []string) (known, rest []string, help bool) {
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			rest = append(rest, argv[i+1:]...)
			return known, rest, help
		case arg == "-h" || arg == "--help":
			help = true
			continue
		case strings.HasPrefix(arg, "--"):
			name, _, hasValue := strings.Cut(arg[2:], "=")
			f := fs.Lookup(name)
			if f == nil {
				rest = append(rest, arg)
				continue
			}
			known = append(known, arg)
			if !hasValue && f.NoOptDefVal == "" && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}
		case len(arg) > 1 && arg[0] == '-':
			f := fs.ShorthandLookup(arg[1:2])
			if f == nil {
				rest = append(rest, arg)
				continue
			}
			known = append(known, arg)
			if len(arg) == 2 && f.NoOptDefVal == "" && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}
		default:
			rest = append(rest, arg)
		}
	}
	return known, rest, help
}
