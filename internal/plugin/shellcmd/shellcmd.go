// SPDX-License-Identifier: MPL-2.0

package shellcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/pkg/types"
)

type (
	// Options configures Load.
	Options struct {
		// Stdout and Stderr receive output of the top-level statements.
		Stdout io.Writer
		Stderr io.Writer
		// Environ is the initial environment. Nil means os.Environ().
		Environ []string
	}

	// File is a loaded shell command file. The interpreter keeps the state
	// left by the top-level statements; each command call runs in a
	// subshell of it.
	File struct {
		path     string
		runner   *interp.Runner
		commands map[string]*command.Command
	}

	funcDoc struct {
		line     uint
		comments []string
	}
)

// Load parses the script at path and runs its top-level statements. Syntax
// errors, an explicit non-zero exit and interpreter failures are returned as
// errors.
func Load(ctx context.Context, path string, opts Options) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	prog, err := syntax.NewParser(syntax.KeepComments(true)).Parse(strings.NewReader(string(src)), path)
	if err != nil {
		return nil, err
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	runner, err := interp.New(
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(nil, opts.Stdout, opts.Stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if !errors.As(err, &status) || runner.Exited() {
			return nil, fmt.Errorf("%s: top-level code failed: %w", path, err)
		}
	}

	f := &File{path: abs, runner: runner, commands: make(map[string]*command.Command)}
	docs := collectDocs(prog)
	for _, name := range slices.Sorted(maps.Keys(runner.Funcs)) {
		doc := docs[name]
		help, params, err := parseDoc(doc.comments)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: function %s: %w", path, doc.line, name, err)
		}
		cmd := &command.Command{
			Name:   command.CommandName(name),
			Help:   help,
			Params: params,
			Origin: command.Origin{File: abs, Line: int(doc.line), Symbol: name, Lang: command.LangShell},
		}
		cmd.Callback = f.callback(name, params)
		f.commands[name] = cmd
	}
	return f, nil
}

// Path returns the absolute path of the loaded file.
func (f *File) Path() string {
	return f.path
}

// Lookup returns a copy of the command for the shell function symbol.
func (f *File) Lookup(symbol string) (*command.Command, bool) {
	cmd, ok := f.commands[symbol]
	if !ok {
		return nil, false
	}
	return cmd.Clone(), true
}

// collectDocs maps top-level function names to the comment block directly
// above them.
func collectDocs(prog *syntax.File) map[string]funcDoc {
	docs := make(map[string]funcDoc)
	for _, stmt := range prog.Stmts {
		fn, ok := stmt.Cmd.(*syntax.FuncDecl)
		if !ok {
			continue
		}
		line := stmt.Pos().Line()
		var block []string
		next := line
		for i := len(stmt.Comments) - 1; i >= 0; i-- {
			c := stmt.Comments[i]
			if c.Hash.Line() >= line {
				continue
			}
			if c.Hash.Line() != next-1 || strings.HasPrefix(c.Text, "!") {
				break
			}
			block = append(block, strings.TrimPrefix(c.Text, " "))
			next = c.Hash.Line()
		}
		slices.Reverse(block)
		docs[fn.Name.Value] = funcDoc{line: line, comments: block}
	}
	return docs
}

// callback calls the shell function name with args exported to it.
func (f *File) callback(name string, params []command.Param) command.Callback {
	return func(cc *command.Context, args command.Args) error {
		var (
			script     strings.Builder
			positional []string
		)
		for _, p := range params {
			if p.Variadic {
				positional = args.Strings(p.Name)
				continue
			}
			value, err := syntax.Quote(envValue(p, args[p.Name]), syntax.LangBash)
			if err != nil {
				return fmt.Errorf("parameter %s: %w", p.Name, err)
			}
			fmt.Fprintf(&script, "export %s=%s\n", EnvName(p), value)
		}
		fmt.Fprintf(&script, "%s \"$@\"\n", name)

		prog, err := syntax.NewParser().Parse(strings.NewReader(script.String()), f.path)
		if err != nil {
			return err
		}

		sub := f.runner.Subshell()
		var stdin io.Reader
		if cc.Runner != nil {
			stdin = cc.Runner.Stdin
		}
		if err := interp.StdIO(stdin, cc.Stdout, cc.Stderr)(sub); err != nil {
			return err
		}
		if err := interp.Params(append([]string{"--"}, positional...)...)(sub); err != nil {
			return err
		}

		if err := sub.Run(cc.Ctx(), prog); err != nil {
			var status interp.ExitStatus
			if errors.As(err, &status) {
				return &runtime.ExitCodeError{Argv: append([]string{name}, positional...), Code: types.ExitCode(status)}
			}
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

func envValue(p command.Param, v any) string {
	switch p.Kind {
	case command.KindBool:
		if cast.ToBool(v) {
			return "1"
		}
		return ""
	case command.KindStrings:
		return strings.Join(cast.ToStringSlice(v), " ")
	default:
		return cast.ToString(v)
	}
}
