// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/config"
	"github.com/spinkit/spin/internal/testutil"
)

func fakeCommand(name string) *command.Command {
	return &command.Command{
		Name:     name,
		Help:     "Fake " + name + ".",
		Params:   []command.Param{{Name: "greeting", Kind: command.KindString, Default: "hello"}},
		Callback: func(*command.Context, command.Args) error { return nil },
	}
}

func init() {
	RegisterModule("resolvetest.mod", Table{
		"hello": fakeCommand("hello"),
		"bye":   fakeCommand("bye"),
	})
	RegisterModule("spin.cmds.meson", Table{"build": fakeCommand("build")})
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		raw     string
		want    Ref
		wantErr bool
	}{
		{raw: "spin.build", want: Ref{Kind: RefAlias, Module: "spin.cmds.meson", Symbol: "build"}},
		{raw: "spin.cmds.meson.docs", want: Ref{Kind: RefModule, Module: "spin.cmds.meson", Symbol: "docs"}},
		{raw: ".spin/cmds.lua:example", want: Ref{Kind: RefFile, Path: ".spin/cmds.lua", Symbol: "example"}},
		{raw: `C:\proj\cmds.sh:build_docs`, want: Ref{Kind: RefFile, Path: `C:\proj\cmds.sh`, Symbol: "build_docs"}},
		{raw: "nodots", wantErr: true},
		{raw: "cmds.lua:", wantErr: true},
		{raw: ":symbol", wantErr: true},
		{raw: "trailing.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRef(tt.raw)
			if tt.wantErr {
				if err == nil || !IsSkippable(err) {
					t.Fatalf("ParseRef() error = %v, want a skippable error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.want.Raw = tt.raw
			if got != tt.want {
				t.Errorf("ParseRef() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_Module(t *testing.T) {
	r := New(Options{Dir: t.TempDir()})
	ctx := context.Background()

	cmd, err := r.Resolve(ctx, "resolvetest.mod.hello")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cmd.Spec != "resolvetest.mod.hello" || cmd.Origin.Module != "resolvetest.mod" {
		t.Errorf("Spec/Module = %q/%q", cmd.Spec, cmd.Origin.Module)
	}

	again, _ := r.Resolve(ctx, "resolvetest.mod.hello")
	if again != cmd {
		t.Error("a known reference should resolve to the same command")
	}

	// The module's own command is untouched.
	cmd.Params[0].Default = "changed"
	if other, _ := New(Options{}).Resolve(ctx, "resolvetest.mod.hello"); other.Params[0].Default != "hello" {
		t.Error("resolved command shares state with the module table")
	}

	alias, err := r.Resolve(ctx, "spin.build")
	if err != nil || alias.Name != "build" || alias.Spec != "spin.build" {
		t.Errorf("Resolve(spin.build) = %v, %v", alias, err)
	}
}

func TestResolve_Skippable(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"cmds.sh":   "one() { :; }\n",
		"notes.txt": "hi\n",
		"sub/":      "",
	})
	r := New(Options{Dir: dir})

	tests := []struct {
		ref    string
		target any
		msg    string
	}{
		{"nosuch.module.cmd", new(*ModuleNotFoundError), "Could not import module `nosuch.module` to load command `nosuch.module.cmd`"},
		{"resolvetest.mod.nope", new(*SymbolNotFoundError), "Could not load command `nope` from module `resolvetest.mod`."},
		{"missing.sh:one", new(*FileNotFoundError), "Could not find file `missing.sh` to load custom command `missing.sh:one`."},
		{"cmds.sh:exemple", new(*SymbolNotFoundError), "Could not load command `exemple` from file `cmds.sh`."},
		{"notes.txt:hi", new(*UnsupportedFileError), "unsupported file type `.txt`"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.ref)
			if err == nil || !IsSkippable(err) {
				t.Fatalf("Resolve() error = %v, want skippable", err)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("Resolve() error = %T, want %T", err, tt.target)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("message = %q, want %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestResolve_FileLoadedOnce(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"cmds.fake":  "",
		"other.fake": "",
	})

	loads := map[string]int{}
	loader := func(_ context.Context, path string) (Module, error) {
		loads[filepath.Base(path)]++
		return Table{"a": fakeCommand("a"), "b": fakeCommand("b")}, nil
	}
	r := New(Options{Dir: dir, Loaders: map[string]Loader{".fake": loader}})

	ctx := context.Background()
	for _, ref := range []string{"cmds.fake:a", "cmds.fake:b", "./cmds.fake:missing", filepath.Join(dir, "cmds.fake") + ":a", "other.fake:a"} {
		_, _ = r.Resolve(ctx, ref)
	}

	if loads["cmds.fake"] != 1 || loads["other.fake"] != 1 {
		t.Errorf("loads = %v, want each file loaded once", loads)
	}
}

func TestResolve_ShellTopLevelRunsOnce(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	defer testutil.MustSetenv(t, "SPIN_RESOLVE_MARKER", marker)()
	testutil.MustWriteFile(t, filepath.Join(dir, "cmds.sh"), `echo loaded >> "$SPIN_RESOLVE_MARKER"
one() { echo one; }
two() { echo two; }
`)

	var out bytes.Buffer
	r := New(Options{Dir: dir, Stdout: &out, Stderr: &out})
	reg := command.NewRegistry()
	err := r.ResolveAll(context.Background(), []config.Section{
		{Name: "Custom", Commands: []string{"cmds.sh:one", "cmds.sh:two"}},
	}, reg)
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "loaded"); n != 1 {
		t.Errorf("top-level code ran %d times, want 1", n)
	}
	if reg.Len() != 2 {
		t.Errorf("registered %d commands, want 2", reg.Len())
	}
}

func TestResolve_LoadErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"broken.lua": "example = spin.command{ run = function( end }\n",
		"self.lua":   "docs = spin.extend('self.lua:base', function(ctx, args, parent) end)\n",
	})
	r := New(Options{Dir: dir})

	for _, ref := range []string{"broken.lua:example", "broken.lua:other", "self.lua:docs"} {
		_, err := r.Resolve(context.Background(), ref)
		var loadErr *LoadError
		if !errors.As(err, &loadErr) || IsSkippable(err) {
			t.Errorf("Resolve(%s) error = %v, want a fatal *LoadError", ref, err)
		}
	}
}

func TestResolveAll(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"cmds.lua": `docs = spin.extend("resolvetest.mod.hello", { help = "Docs." }, function(ctx, args, parent) parent(args) end)
`,
	})

	var warnings []string
	r := New(Options{
		Dir:  dir,
		Warn: func(err error) { warnings = append(warnings, err.Error()) },
		Kwargs: func(ref string) map[string]any {
			if ref == "resolvetest.mod.hello" {
				return map[string]any{"greeting": "hi", "bogus": 1}
			}
			return nil
		},
	})

	reg := command.NewRegistry()
	err := r.ResolveAll(context.Background(), []config.Section{
		{Name: "Build", Commands: []string{"resolvetest.mod.hello", "nosuch.module.cmd", "cmds.lua:exemple"}},
		{Name: "Documentation", Commands: []string{"cmds.lua:docs", "resolvetest.mod.bye"}},
	}, reg)
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}

	var names []string
	for _, s := range reg.Sections() {
		for _, c := range s.Commands {
			names = append(names, s.Name+"/"+c.Name)
		}
	}
	if want := []string{"Build/hello", "Documentation/docs", "Documentation/bye"}; !slices.Equal(names, want) {
		t.Errorf("registered = %v, want %v", names, want)
	}

	if len(warnings) != 3 {
		t.Fatalf("warnings = %q", warnings)
	}
	if !strings.Contains(warnings[0], "bogus") || !strings.Contains(warnings[1], "nosuch.module") ||
		!strings.Contains(warnings[2], "exemple") {
		t.Errorf("warnings = %q", warnings)
	}

	hello, _ := reg.Lookup("hello")
	if p, _ := hello.Param("greeting"); p.Default != "hi" {
		t.Errorf("override not applied: default = %v", p.Default)
	}
	docs, _ := reg.Lookup("docs")
	if docs.Parent != hello {
		t.Error("docs should extend the resolved hello command")
	}
}

func TestResolveAll_RepeatedRef(t *testing.T) {
	r := New(Options{Dir: t.TempDir()})
	reg := command.NewRegistry()
	err := r.ResolveAll(context.Background(), []config.Section{
		{Name: "A", Commands: []string{"resolvetest.mod.hello", "resolvetest.mod.hello"}},
		{Name: "B", Commands: []string{"resolvetest.mod.hello", "resolvetest.mod.bye"}},
	}, reg)
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}

	var names []string
	for _, s := range reg.Sections() {
		for _, c := range s.Commands {
			names = append(names, s.Name+"/"+c.Name)
		}
	}
	if want := []string{"A/hello", "B/bye"}; !slices.Equal(names, want) {
		t.Errorf("registered = %v, want %v", names, want)
	}
}

func TestResolveAll_NameClash(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"cmds.lua": "hello = spin.command{ run = function(ctx, args) end }\n",
	})

	r := New(Options{Dir: dir})
	err := r.ResolveAll(context.Background(), []config.Section{
		{Name: "A", Commands: []string{"resolvetest.mod.hello"}},
		{Name: "B", Commands: []string{"cmds.lua:hello"}},
	}, command.NewRegistry())

	var dup *command.DuplicateCommandError
	if !errors.As(err, &dup) {
		t.Errorf("ResolveAll() error = %v, want *DuplicateCommandError", err)
	}
}

func TestModules(t *testing.T) {
	if !slices.Contains(Modules(), "resolvetest.mod") {
		t.Errorf("Modules() = %v", Modules())
	}
	defer func() {
		if recover() == nil {
			t.Error("registering a module twice should panic")
		}
	}()
	RegisterModule("resolvetest.mod", Table{})
}
