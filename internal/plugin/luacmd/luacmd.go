// SPDX-License-Identifier: MPL-2.0

package luacmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/spinkit/spin/internal/command"
)

const (
	commandTypeName = "spin.command"
	paramTypeName   = "spin.param"
	callbacksGlobal = "__spin_callbacks"
)

type (
	// Options configures Load.
	Options struct {
		// Resolve returns the command named by a reference passed to
		// spin.extend. It is required for extending commands by reference.
		Resolve func(ref string) (*command.Command, error)
	}

	// File is a loaded Lua command file. Its interpreter state lives as long
	// as the File and is shared by all commands it declares.
	File struct {
		path  string
		state *lua.State
		opts  Options

		nextID int
		// pending holds the Go error behind the Lua error being raised, so
		// typed errors such as exit codes survive the trip through Lua.
		pending error
	}

	luaCommand struct {
		cmd *command.Command
		// named is set when the declaration chose the name explicitly.
		named bool
	}
)

// Load executes the Lua file at path and returns it. Errors raised while
// compiling or running the top-level chunk are returned with the file and
// line reported by the interpreter.
func Load(path string, opts Options) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f := &File{path: abs, state: lua.NewState(), opts: opts}
	lua.OpenLibraries(f.state)
	f.registerAPI()

	if err := lua.LoadFile(f.state, abs, ""); err != nil {
		return nil, fmt.Errorf("cannot compile %s: %w", path, err)
	}
	if err := f.protectedCall(0, 0); err != nil {
		return nil, fmt.Errorf("error running %s: %w", path, err)
	}
	return f, nil
}

// Path returns the absolute path of the loaded file.
func (f *File) Path() string {
	return f.path
}

// Lookup returns a copy of the command stored in the global symbol. A command
// declared without an explicit name is named after the global.
func (f *File) Lookup(symbol string) (*command.Command, bool) {
	l := f.state
	l.Global(symbol)
	defer l.Pop(1)

	lc, ok := lua.TestUserData(l, -1, commandTypeName).(*luaCommand)
	if !ok || lc == nil {
		return nil, false
	}

	cmd := lc.cmd.Clone()
	if !lc.named {
		cmd.Name = command.CommandName(symbol)
	}
	cmd.Origin.Symbol = symbol
	return cmd, true
}

// protectedCall runs the function below nargs arguments on the stack.
func (f *File) protectedCall(nargs, nresults int) error {
	err := f.state.ProtectedCall(nargs, nresults, 0)
	if err == nil {
		return nil
	}
	if f.pending != nil {
		err, f.pending = f.pending, nil
	}
	return err
}

// raise aborts the running Lua function with err.
func (f *File) raise(l *lua.State, err error) {
	f.pending = err
	lua.Errorf(l, "%s", err.Error())
}

// storeCallback saves the function at index in the callbacks table and
// returns its key.
func (f *File) storeCallback(l *lua.State, index int) int {
	index = l.AbsIndex(index)
	f.nextID++
	l.Global(callbacksGlobal)
	l.PushValue(index)
	l.RawSetInt(-2, f.nextID)
	l.Pop(1)
	return f.nextID
}

// call runs a stored callback as cmd's behavior.
func (f *File) call(id int, cc *command.Context, args command.Args, parent command.Invoker) error {
	l := f.state
	top := l.Top()
	defer l.SetTop(top)

	l.Global(callbacksGlobal)
	l.RawGetInt(-1, id)
	pushContext(f, l, cc)
	pushValue(l, map[string]any(args))
	nargs := 2
	if parent != nil {
		l.PushGoFunction(func(l *lua.State) int {
			if err := parent(command.Args(optTable(l, 1))); err != nil {
				f.raise(l, err)
			}
			return 0
		})
		nargs++
	}
	return f.protectedCall(nargs, 0)
}

// origin reports where the calling Lua code is, for introspection.
func (f *File) origin(l *lua.State) command.Origin {
	o := command.Origin{File: f.path, Lang: command.LangLua}
	lua.Where(l, 1)
	where, _ := l.ToString(-1)
	l.Pop(1)

	where = strings.TrimSuffix(strings.TrimSpace(where), ":")
	if i := strings.LastIndex(where, ":"); i >= 0 {
		if n, err := strconv.Atoi(where[i+1:]); err == nil {
			o.Line = n
		}
	}
	return o
}
