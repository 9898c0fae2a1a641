// SPDX-License-Identifier: MPL-2.0

package luacmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/internal/testutil"
)

const greetLua = `local greeting = "hello"

example = spin.command{
  help = [[
    Print a greeting.

    Uses the configured name.
  ]],
  params = {
    spin.option{"-n", "--name", default = "world", help = "Who to greet"},
    spin.flag{"-l", "--loud"},
    spin.argument{"FILES", variadic = true},
  },
  run = function(ctx, args)
    local msg = greeting .. " " .. args.name
    if args.loud then msg = string.upper(msg) end
    ctx.echo(msg .. " " .. #args.files)
  end,
}

renamed = spin.command{
  name = "custom-name",
  run = function(ctx, args) ctx.echo("renamed") end,
}

not_a_command = 42
`

func writeLua(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmds.lua")
	testutil.MustWriteFile(t, path, content)
	return path
}

func newContext(out *bytes.Buffer) *command.Context {
	return &command.Context{
		Context:  context.Background(),
		Registry: command.NewRegistry(),
		Stdout:   out,
		Stderr:   out,
	}
}

func TestLoad_Command(t *testing.T) {
	path := writeLua(t, greetLua)
	f, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cmd, ok := f.Lookup("example")
	if !ok {
		t.Fatal("Lookup(example) not found")
	}
	if cmd.Name != "example" {
		t.Errorf("Name = %q", cmd.Name)
	}
	if cmd.Help != "Print a greeting.\n\nUses the configured name." {
		t.Errorf("Help = %q", cmd.Help)
	}

	var names []string
	for _, p := range cmd.Params {
		names = append(names, p.Name)
	}
	if !slices.Equal(names, []string{"name", "loud", "files"}) {
		t.Errorf("params = %v", names)
	}
	if p, _ := cmd.Param("name"); p.Default != "world" || p.Help != "Who to greet" {
		t.Errorf("name param = %+v", p)
	}
	if p, _ := cmd.Param("loud"); p.Kind != command.KindBool {
		t.Errorf("loud kind = %s", p.Kind)
	}
	if p, _ := cmd.Param("files"); !p.Positional || !p.Variadic || p.Metavar != "FILES" {
		t.Errorf("files param = %+v", p)
	}

	if cmd.Origin.Lang != command.LangLua || cmd.Origin.File != f.Path() || cmd.Origin.Line <= 0 {
		t.Errorf("Origin = %+v", cmd.Origin)
	}

	tests := []struct {
		args command.Args
		want string
	}{
		{command.Args{}, "hello world 0\n"},
		{command.Args{"name": "spin", "loud": true, "files": []string{"a", "b"}}, "HELLO SPIN 2\n"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if err := newContext(&out).Invoke(cmd, tt.args); err != nil {
			t.Fatalf("Invoke(%v) error = %v", tt.args, err)
		}
		if out.String() != tt.want {
			t.Errorf("Invoke(%v) printed %q, want %q", tt.args, out.String(), tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	f, err := Load(writeLua(t, greetLua), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if cmd, ok := f.Lookup("renamed"); !ok || cmd.Name != "custom-name" {
		t.Errorf("Lookup(renamed) = %v, %v", cmd, ok)
	}
	for _, symbol := range []string{"missing", "not_a_command", "greeting"} {
		if _, ok := f.Lookup(symbol); ok {
			t.Errorf("Lookup(%q) should fail", symbol)
		}
	}

	// Lookups return copies.
	a, _ := f.Lookup("example")
	a.Params[0].Default = "changed"
	b, _ := f.Lookup("example")
	if b.Params[0].Default != "world" {
		t.Error("Lookup shares parameters between calls")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax error", "example = spin.command{ run = function( end }\n", "cmds.lua"},
		{"runtime error", "error('boom at load')\n", "boom at load"},
		{"missing run", "example = spin.command{ help = 'x' }\n", "run"},
		{"bad param", "example = spin.command{ params = { 1 }, run = function() end }\n", "params[1]"},
		{"unknown type", "x = spin.option{'--x', type = 'complex'}\n", "complex"},
		{
			"duplicate extension param",
			"base = spin.command{ params = { spin.option{'--level'} }, run = function() end }\n" +
				"more = spin.extend(base, { params = { spin.option{'--level'} } }, function() end)\n",
			"parameter `level` already exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeLua(t, tt.content), Options{})
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestExtend_ByReference(t *testing.T) {
	var got []command.Args
	build := &command.Command{
		Name: "build",
		Help: "Build the package.",
		Params: []command.Param{
			{Name: "jobs", Kind: command.KindInt, Default: 1},
			{Name: "verbose", Kind: command.KindBool},
		},
		Callback: func(_ *command.Context, args command.Args) error {
			got = append(got, args)
			return nil
		},
	}

	src := `docs = spin.extend("spin.cmds.meson.build", {
  help = "Then build the docs.",
  remove = {"verbose"},
  params = { spin.option{"--format", default = "html"} },
}, function(ctx, args, parent)
  parent({jobs = args.jobs, verbose = true})
  ctx.echo("format " .. args.format)
end)
`
	var resolved []string
	f, err := Load(writeLua(t, src), Options{Resolve: func(ref string) (*command.Command, error) {
		resolved = append(resolved, ref)
		return build, nil
	}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(resolved, []string{"spin.cmds.meson.build"}) {
		t.Errorf("resolved = %v", resolved)
	}

	docs, ok := f.Lookup("docs")
	if !ok {
		t.Fatal("Lookup(docs) not found")
	}
	if docs.Name != "docs" || docs.Help != "Build the package.\n\nThen build the docs." {
		t.Errorf("docs = %q / %q", docs.Name, docs.Help)
	}
	if _, visible := docs.Param("verbose"); visible {
		t.Error("verbose should be hidden")
	}
	if len(build.Params) != 2 {
		t.Error("parent modified by extension")
	}

	var out bytes.Buffer
	if err := newContext(&out).Invoke(docs, command.Args{"jobs": 4}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(got) != 1 || got[0].Int("jobs") != 4 || !got[0].Bool("verbose") {
		t.Errorf("parent received %v", got)
	}
	if out.String() != "format html\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestExtend_LocalParent(t *testing.T) {
	src := `local base = spin.command{
  params = { spin.option{"--level", type = "int", default = 1} },
  run = function(ctx, args) ctx.echo("base " .. args.level) end,
}
derived = spin.extend(base, function(ctx, args, parent)
  parent({level = args.level + 1})
end)
`
	f, err := Load(writeLua(t, src), Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	derived, ok := f.Lookup("derived")
	if !ok {
		t.Fatal("Lookup(derived) not found")
	}

	var out bytes.Buffer
	if err := newContext(&out).Invoke(derived, nil); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out.String() != "base 2\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCallbackErrors(t *testing.T) {
	src := `failing = spin.command{ run = function(ctx, args) ctx.invoke("explode") end }
broken = spin.command{ run = function(ctx, args) error("boom") end }
`
	f, err := Load(writeLua(t, src), Options{})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cc := newContext(&out)
	explode := &command.Command{
		Name: "explode",
		Callback: func(*command.Context, command.Args) error {
			return &runtime.ExitCodeError{Argv: []string{"false"}, Code: 3}
		},
	}
	if err := cc.Registry.Register(explode, "Test"); err != nil {
		t.Fatal(err)
	}

	failing, _ := f.Lookup("failing")
	err = cc.Invoke(failing, nil)
	var exitErr *runtime.ExitCodeError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Errorf("Invoke(failing) error = %v, want exit code 3", err)
	}

	broken, _ := f.Lookup("broken")
	if err := cc.Invoke(broken, nil); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Invoke(broken) error = %v, want boom", err)
	}

	// The state is still usable after errors.
	if err := cc.Invoke(failing, nil); err == nil {
		t.Error("second Invoke(failing) should fail again")
	}
}

func TestContext_ConfigAndCommands(t *testing.T) {
	src := `show = spin.command{ run = function(ctx, args)
  local names = ctx.commands()
  ctx.echo(#names .. " " .. names[1])
  ctx.echo(tostring(ctx.config("tool.spin.package")))
end }
`
	f, err := Load(writeLua(t, src), Options{})
	if err != nil {
		t.Fatal(err)
	}
	show, _ := f.Lookup("show")

	var out bytes.Buffer
	cc := newContext(&out)
	if err := cc.Registry.Register(show, "Commands"); err != nil {
		t.Fatal(err)
	}
	if err := cc.Invoke(show, nil); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out.String() != "1 show\nnil\n" {
		t.Errorf("output = %q", out.String())
	}
}
