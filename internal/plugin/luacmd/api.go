// SPDX-License-Identifier: MPL-2.0

package luacmd

import (
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/spinkit/spin/internal/command"
)

func (f *File) registerAPI() {
	l := f.state

	l.NewTable()
	l.SetGlobal(callbacksGlobal)

	lua.NewMetaTable(l, commandTypeName)
	l.PushGoFunction(func(l *lua.State) int {
		lc, _ := lua.CheckUserData(l, 1, commandTypeName).(*luaCommand)
		l.PushString(fmt.Sprintf("spin.command: %s", lc.cmd.Name))
		return 1
	})
	l.SetField(-2, "__tostring")
	l.Pop(1)

	lua.NewMetaTable(l, paramTypeName)
	l.Pop(1)

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "command", Function: f.newCommand},
		{Name: "extend", Function: f.extendCommand},
		{Name: "option", Function: paramBuilder(command.KindString, false)},
		{Name: "flag", Function: paramBuilder(command.KindBool, false)},
		{Name: "argument", Function: paramBuilder(command.KindString, true)},
	}, 0)
	l.SetGlobal("spin")
}

// newCommand implements spin.command{name=, help=, params=, run=}.
func (f *File) newCommand(l *lua.State) int {
	lua.CheckType(l, 1, lua.TypeTable)

	l.Field(1, "run")
	if l.TypeOf(-1) != lua.TypeFunction {
		lua.ArgumentError(l, 1, "field 'run' must be a function")
	}
	id := f.storeCallback(l, -1)
	l.Pop(1)

	name := stringField(l, 1, "name")
	params := paramsField(l, 1, "params")
	if dup, ok := duplicateParam(params); ok {
		lua.Errorf(l, "parameter '%s' declared twice", dup)
	}

	cmd := &command.Command{
		Name:   name,
		Help:   strings.TrimSpace(command.Dedent(stringField(l, 1, "help"))),
		Params: params,
		Origin: f.origin(l),
	}
	cmd.Callback = func(cc *command.Context, args command.Args) error {
		return f.call(id, cc, args, nil)
	}

	l.PushUserData(&luaCommand{cmd: cmd, named: name != ""})
	lua.SetMetaTableNamed(l, commandTypeName)
	return 1
}

// extendCommand implements spin.extend(parent [, opts], fn). parent is a
// command reference string or a command declared in the same file.
func (f *File) extendCommand(l *lua.State) int {
	var parent *command.Command
	switch l.TypeOf(1) {
	case lua.TypeString:
		ref, _ := l.ToString(1)
		if f.opts.Resolve == nil {
			lua.Errorf(l, "cannot extend `%s`: commands cannot be resolved here", ref)
		}
		p, err := f.opts.Resolve(ref)
		if err != nil {
			lua.Errorf(l, "cannot extend `%s`: %s", ref, err.Error())
		}
		parent = p
	case lua.TypeUserData:
		lc, _ := lua.CheckUserData(l, 1, commandTypeName).(*luaCommand)
		parent = lc.cmd
	default:
		lua.ArgumentError(l, 1, "command reference or spin.command expected")
	}

	fnIndex := 3
	if l.TypeOf(2) == lua.TypeFunction {
		fnIndex = 2
	}
	lua.CheckType(l, fnIndex, lua.TypeFunction)
	id := f.storeCallback(l, fnIndex)

	opts := command.ExtendOptions{Name: "lua-extension"}
	named := false
	if fnIndex == 3 && l.TypeOf(2) == lua.TypeTable {
		if name := stringField(l, 2, "name"); name != "" {
			opts.Name, named = name, true
		}
		l.Field(2, "doc")
		if l.TypeOf(-1) == lua.TypeString {
			doc, _ := l.ToString(-1)
			opts.Doc = command.Doc(doc)
		}
		l.Pop(1)
		opts.Help = stringField(l, 2, "help")
		opts.Remove = stringsField(l, 2, "remove")
		opts.Params = paramsField(l, 2, "params")
	}

	origin := f.origin(l)
	child, err := command.Extend(parent, opts)(func(cc *command.Context, args command.Args, invoke command.Invoker) error {
		return f.call(id, cc, args, invoke)
	})
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	child.Origin = origin

	l.PushUserData(&luaCommand{cmd: child, named: named})
	lua.SetMetaTableNamed(l, commandTypeName)
	return 1
}

// paramBuilder implements spin.option, spin.flag and spin.argument. The
// array part of the table holds the spellings; named fields set the rest.
func paramBuilder(kind command.Kind, positional bool) lua.Function {
	return func(l *lua.State) int {
		lua.CheckType(l, 1, lua.TypeTable)

		p := &command.Param{Kind: kind, Positional: positional}
		p.Flags = stringsAt(l, 1)

		if t := stringField(l, 1, "type"); t != "" {
			switch k := command.Kind(t); k {
			case command.KindString, command.KindBool, command.KindInt, command.KindFloat, command.KindStrings:
				p.Kind = k
			default:
				lua.Errorf(l, "unknown parameter type '%s'", t)
			}
		}
		p.Name = stringField(l, 1, "name")
		p.Help = stringField(l, 1, "help")
		p.Metavar = stringField(l, 1, "metavar")
		p.EnvVar = stringField(l, 1, "envvar")
		p.Choices = stringsField(l, 1, "choices")
		p.Required = boolField(l, 1, "required")
		p.Variadic = positional && boolField(l, 1, "variadic")
		if p.Variadic {
			p.Kind = command.KindStrings
		}

		if positional {
			if len(p.Flags) > 0 {
				if p.Metavar == "" {
					p.Metavar = p.Flags[0]
				}
				if p.Name == "" {
					p.Name = command.ParamName(p.Flags[0])
				}
			}
			p.Flags = nil
		} else if p.Name == "" && len(p.Flags) > 0 {
			p.Name = command.ParamName(longest(p.Flags))
		}
		if p.Name == "" {
			lua.ArgumentError(l, 1, "parameter needs a name or a spelling")
		}

		l.Field(1, "default")
		if l.TypeOf(-1) != lua.TypeNil {
			def := toGo(l, -1)
			l.Pop(1)
			v, err := p.Coerce(def)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			p.Default = v
		} else {
			l.Pop(1)
		}

		l.PushUserData(p)
		lua.SetMetaTableNamed(l, paramTypeName)
		return 1
	}
}

// longest prefers the first long spelling, which names the parameter.
func longest(flags []string) string {
	for _, f := range flags {
		if strings.HasPrefix(f, "--") {
			return f
		}
	}
	return flags[0]
}

func duplicateParam(params []command.Param) (string, bool) {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p.Name] {
			return p.Name, true
		}
		seen[p.Name] = true
	}
	return "", false
}

// paramsField reads an array of spin.option/flag/argument results.
func paramsField(l *lua.State, index int, key string) []command.Param {
	l.Field(index, key)
	if l.TypeOf(-1) == lua.TypeNil {
		l.Pop(1)
		return nil
	}
	if l.TypeOf(-1) != lua.TypeTable {
		l.Pop(1)
		lua.Errorf(l, "field '%s' must be a table", key)
	}

	var out []command.Param
	for i := 1; ; i++ {
		l.RawGetInt(-1, i)
		if l.TypeOf(-1) == lua.TypeNil {
			l.Pop(1)
			break
		}
		p, ok := lua.TestUserData(l, -1, paramTypeName).(*command.Param)
		l.Pop(1)
		if !ok || p == nil {
			l.Pop(1)
			lua.Errorf(l, "%s[%d] must be created with spin.option, spin.flag or spin.argument", key, i)
		}
		out = append(out, p.Clone())
	}
	l.Pop(1)
	return out
}
