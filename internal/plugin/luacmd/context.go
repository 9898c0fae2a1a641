// SPDX-License-Identifier: MPL-2.0

package luacmd

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/spf13/cast"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
)

// pushContext pushes the ctx table handed to callbacks. Its functions are
// closures over cc.
func pushContext(f *File, l *lua.State, cc *command.Context) {
	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "run", Function: func(l *lua.State) int {
			lua.CheckType(l, 1, lua.TypeTable)
			argv := cast.ToStringSlice(toGo(l, 1))
			if len(argv) == 0 {
				lua.ArgumentError(l, 1, "empty command")
			}
			res, err := cc.Runner.Run(cc.Ctx(), argv, runOptions(optTable(l, 2))...)
			return pushResult(f, l, res, err)
		}},
		{Name: "shell", Function: func(l *lua.State) int {
			script := lua.CheckString(l, 1)
			res, err := cc.Runner.Shell(cc.Ctx(), script, runOptions(optTable(l, 2))...)
			return pushResult(f, l, res, err)
		}},
		{Name: "invoke", Function: func(l *lua.State) int {
			name := lua.CheckString(l, 1)
			if err := cc.InvokeName(name, command.Args(optTable(l, 2))); err != nil {
				f.raise(l, err)
			}
			return 0
		}},
		{Name: "config", Function: func(l *lua.State) int {
			key := lua.CheckString(l, 1)
			if cc.Config == nil {
				l.PushNil()
				return 1
			}
			v, _ := cc.Config.Lookup(key)
			pushValue(l, v)
			return 1
		}},
		{Name: "commands", Function: func(l *lua.State) int {
			var names []string
			if cc.Registry != nil {
				for _, c := range cc.Registry.All() {
					names = append(names, c.Name)
				}
			}
			pushValue(l, names)
			return 1
		}},
		{Name: "echo", Function: func(l *lua.State) int {
			fmt.Fprintln(cc.Stdout, cast.ToString(toGo(l, 1)))
			return 0
		}},
	}, 0)
}

// pushResult returns the exit code and the captured output to Lua, or
// raises err.
func pushResult(f *File, l *lua.State, res *runtime.Result, err error) int {
	if err != nil {
		f.raise(l, err)
	}
	l.PushInteger(int(res.ExitCode))
	l.PushString(res.Output)
	return 2
}

// runOptions maps an options table to launcher options. Recognized keys are
// cwd, env, replace, must_succeed, capture and echo.
func runOptions(m map[string]any) []runtime.Option {
	var opts []runtime.Option
	if dir := cast.ToString(m["cwd"]); dir != "" {
		opts = append(opts, runtime.Dir(dir))
	}
	if env, ok := m["env"]; ok {
		opts = append(opts, runtime.Env(cast.ToStringMapString(env)))
	}
	if cast.ToBool(m["replace"]) {
		opts = append(opts, runtime.Replace())
	}
	if v, ok := m["must_succeed"]; ok {
		opts = append(opts, runtime.MustSucceed(cast.ToBool(v)))
	}
	if cast.ToBool(m["capture"]) {
		opts = append(opts, runtime.Capture())
	}
	if v, ok := m["echo"]; ok {
		opts = append(opts, runtime.Echo(cast.ToBool(v)))
	}
	return opts
}
