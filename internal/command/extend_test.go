// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

var extendCalls []Args

func buildDocs(cc *Context, args Args, parent Invoker) error {
	extendCalls = append(extendCalls, args.Clone())
	return parent(args.Without("format"))
}

func mustExtend(t *testing.T, parent *Command, opts ExtendOptions, fn ExtendFunc) *Command {
	t.Helper()
	child, err := Extend(parent, opts)(fn)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	return child
}

func paramNames(params []Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func TestExtend_NameFromFunction(t *testing.T) {
	child := mustExtend(t, newBuild(&recorder{}), ExtendOptions{}, buildDocs)
	if child.Name != "build-docs" {
		t.Errorf("Name = %q, want build-docs", child.Name)
	}
	if child.Origin.Lang != LangGo || !strings.HasSuffix(child.Origin.Symbol, ".buildDocs") {
		t.Errorf("Origin = %+v, want the extending function", child.Origin)
	}
}

func TestExtend_AnonymousNeedsName(t *testing.T) {
	_, err := Extend(newBuild(&recorder{}), ExtendOptions{})(func(*Context, Args, Invoker) error { return nil })
	if !errors.Is(err, ErrAnonymousExtension) {
		t.Errorf("Extend() error = %v, want ErrAnonymousExtension", err)
	}
}

func TestExtend_DuplicateParam(t *testing.T) {
	parent := newBuild(&recorder{})
	_, err := Extend(parent, ExtendOptions{
		Name:   "x",
		Params: []Param{{Name: "jobs", Kind: KindInt}},
	})(buildDocs)

	var dup *DuplicateParamError
	if !errors.As(err, &dup) {
		t.Fatalf("Extend() error = %v, want *DuplicateParamError", err)
	}
	if dup.Param != "jobs" || dup.Command != parent.Name {
		t.Errorf("DuplicateParamError = %+v", dup)
	}
}

func TestExtend_ParentIsolation(t *testing.T) {
	rec := &recorder{}
	parent := newBuild(rec)
	before := paramNames(parent.Params)
	beforeHelp := parent.Help

	child := mustExtend(t, parent, ExtendOptions{
		Name:   "docs",
		Remove: []string{"verbose", "not-a-param"},
		Params: []Param{{Name: "format", Flags: []string{"--format"}, Kind: KindString, Default: "html"}},
	}, buildDocs)

	if got := paramNames(parent.Params); !slices.Equal(got, before) {
		t.Errorf("parent params changed: %v, want %v", got, before)
	}
	if parent.Help != beforeHelp || len(parent.Hidden) != 0 {
		t.Error("parent help or hidden params changed")
	}

	wantChild := []string{"jobs", "build_dir", "meson_args", "format"}
	if got := paramNames(child.Params); !slices.Equal(got, wantChild) {
		t.Errorf("child params = %v, want %v", got, wantChild)
	}

	// Changing the child must not leak into the parent.
	child.Params[0].Default = 8
	if p, _ := parent.Param("jobs"); p.Default != nil {
		t.Errorf("parent jobs default = %v, want nil", p.Default)
	}

	// The parent still works on its own.
	cc := newContext()
	if err := cc.Invoke(parent, Args{"verbose": true}); err != nil {
		t.Fatalf("Invoke(parent) error = %v", err)
	}
	if !rec.last(t).Bool("verbose") {
		t.Error("parent lost its verbose parameter")
	}
	if child.Parent != parent {
		t.Error("child.Parent should point at the parent")
	}
}

func TestExtend_HiddenParamSettable(t *testing.T) {
	extendCalls = nil
	rec := &recorder{}
	parent := newBuild(rec)
	child := mustExtend(t, parent, ExtendOptions{Name: "docs", Remove: []string{"verbose"}}, buildDocs)

	if _, ok := child.Param("verbose"); ok {
		t.Fatal("removed parameter still visible")
	}
	if _, ok := child.HiddenParam("verbose"); !ok {
		t.Fatal("removed parameter not kept as hidden")
	}

	cc := newContext()
	// Hidden values go through the same coercion as CLI values.
	if err := cc.Invoke(child, Args{"verbose": "maybe"}); err == nil {
		t.Fatal("Invoke(child) accepted a non-boolean for a bool parameter")
	}
	if err := cc.Invoke(child, Args{"verbose": "true"}); err != nil {
		t.Fatalf("Invoke(child) error = %v", err)
	}
	if got := extendCalls[len(extendCalls)-1]; got["verbose"] != true {
		t.Errorf("child saw verbose = %v, want true", got["verbose"])
	}
	if !rec.last(t).Bool("verbose") {
		t.Error("hidden value was not replayed to the parent")
	}

	// Without the key the hidden parameter is simply absent.
	if err := cc.Invoke(child, Args{}); err != nil {
		t.Fatalf("Invoke(child) error = %v", err)
	}
	if extendCalls[len(extendCalls)-1].Has("verbose") {
		t.Error("unset hidden parameter should not be bound")
	}
	if rec.last(t).Bool("verbose") {
		t.Error("parent should fall back to its own default")
	}
}

func TestExtend_ReplaysToParent(t *testing.T) {
	extendCalls = nil
	rec := &recorder{}
	parent := newBuild(rec)
	child := mustExtend(t, parent, ExtendOptions{
		Name:   "docs",
		Params: []Param{{Name: "format", Kind: KindString, Default: "html"}},
	}, buildDocs)

	if err := newContext().Invoke(child, Args{"jobs": 3}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := extendCalls[0].String("format"); got != "html" {
		t.Errorf("format = %q, want html", got)
	}
	got := rec.last(t)
	if got.Int("jobs") != 3 || got.Has("format") {
		t.Errorf("parent received %v", got)
	}
}

func TestExtend_HelpComposition(t *testing.T) {
	parent := &Command{Name: "build", Help: "Build the package."}

	tests := []struct {
		name string
		opts ExtendOptions
		want string
	}{
		{
			name: "inherit parent help",
			opts: ExtendOptions{Name: "a", Help: "Then build docs."},
			want: "Build the package.\n\nThen build docs.",
		},
		{
			name: "replace base doc",
			opts: ExtendOptions{Name: "b", Doc: Doc("Render docs."), Help: "Uses sphinx."},
			want: "Render docs.\n\nUses sphinx.",
		},
		{
			name: "empty base doc",
			opts: ExtendOptions{Name: "c", Doc: Doc(""), Help: "Only mine."},
			want: "Only mine.",
		},
		{
			name: "no addition",
			opts: ExtendOptions{Name: "d"},
			want: "Build the package.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := mustExtend(t, parent, tt.opts, buildDocs)
			if child.Help != tt.want {
				t.Errorf("Help = %q, want %q", child.Help, tt.want)
			}
		})
	}
}

func TestDedent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"First line.\n    Indented.\n      More.", "First line.\nIndented.\n  More."},
		{"\n    a\n\n    b\n", "\na\n\nb\n"},
		{"  \ta\n  \tb", "a\nb"},
	}
	for _, tt := range tests {
		if got := Dedent(tt.in); got != tt.want {
			t.Errorf("Dedent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
