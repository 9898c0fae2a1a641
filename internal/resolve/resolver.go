// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/config"
	"github.com/spinkit/spin/internal/plugin/luacmd"
	"github.com/spinkit/spin/internal/plugin/shellcmd"
)

type (
	// Loader loads the custom command file at the canonical path.
	Loader func(ctx context.Context, path string) (Module, error)

	// Options configures a Resolver.
	Options struct {
		// Dir is the base of relative file references. Empty means the
		// working directory.
		Dir string
		// Kwargs returns the configured overrides of a reference.
		Kwargs func(ref string) map[string]any
		// Warn reports skippable failures. Nil prints "!! <message>" to
		// Stderr.
		Warn func(err error)
		// Stdout and Stderr receive output of custom file top-level code.
		Stdout io.Writer
		Stderr io.Writer
		Logger *log.Logger
		// Loaders maps file extensions to loaders, replacing the defaults
		// for the extensions it names.
		Loaders map[string]Loader
	}

	// Resolver resolves references for one resolution pass. Each custom
	// command file is loaded at most once per Resolver.
	Resolver struct {
		opts    Options
		loaders map[string]Loader

		known      map[string]*command.Command
		overridden map[string]bool
		files      map[string]*fileEntry
	}

	fileEntry struct {
		mod     Module
		err     error
		loading bool
	}
)

// New creates a Resolver.
func New(opts Options) *Resolver {
	if opts.Dir == "" {
		opts.Dir, _ = os.Getwd()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	r := &Resolver{
		opts:       opts,
		known:      make(map[string]*command.Command),
		overridden: make(map[string]bool),
		files:      make(map[string]*fileEntry),
	}
	if r.opts.Warn == nil {
		r.opts.Warn = func(err error) {
			fmt.Fprintf(r.opts.Stderr, "!! %s\n", err)
		}
	}
	r.loaders = r.defaultLoaders()
	maps.Copy(r.loaders, opts.Loaders)
	return r
}

func (r *Resolver) defaultLoaders() map[string]Loader {
	loadShell := func(ctx context.Context, path string) (Module, error) {
		return shellcmd.Load(ctx, path, shellcmd.Options{Stdout: r.opts.Stdout, Stderr: r.opts.Stderr})
	}
	return map[string]Loader{
		".lua": func(ctx context.Context, path string) (Module, error) {
			return luacmd.Load(path, luacmd.Options{
				Resolve: func(ref string) (*command.Command, error) {
					return r.Resolve(ctx, ref)
				},
			})
		},
		".sh":   loadShell,
		".bash": loadShell,
	}
}

func supportedExtensions() string {
	return ".lua, .sh, .bash"
}

// Resolve returns the command for ref. A reference resolved before is
// returned as is; otherwise the command is a fresh copy with Spec set to ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*command.Command, error) {
	if cmd, ok := r.known[ref]; ok {
		return cmd, nil
	}

	parsed, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	var cmd *command.Command
	switch parsed.Kind {
	case RefFile:
		cmd, err = r.lookupFile(ctx, parsed)
	default:
		cmd, err = r.lookupModule(parsed)
	}
	if err != nil {
		return nil, err
	}

	cmd.Spec = ref
	cmd.Origin.Module = parsed.Source()
	r.known[ref] = cmd
	r.opts.Logger.Debug("resolved command", "ref", ref, "name", cmd.Name)
	return cmd, nil
}

func (r *Resolver) lookupModule(ref Ref) (*command.Command, error) {
	mod, ok := LookupModule(ref.Module)
	if !ok {
		return nil, &ModuleNotFoundError{Module: ref.Module, Ref: ref.Raw}
	}
	cmd, ok := mod.Lookup(ref.Symbol)
	if !ok {
		return nil, &SymbolNotFoundError{Source: ref.Module, Symbol: ref.Symbol, Ref: ref.Raw}
	}
	return cmd, nil
}

func (r *Resolver) lookupFile(ctx context.Context, ref Ref) (*command.Command, error) {
	path := ref.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.opts.Dir, path)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: ref.Path, Ref: ref.Raw}
		}
		return nil, &LoadError{Path: ref.Path, Ref: ref.Raw, Err: err}
	}

	canonical, err := canonicalPath(path)
	if err != nil {
		return nil, &LoadError{Path: ref.Path, Ref: ref.Raw, Err: err}
	}

	mod, err := r.loadFile(ctx, canonical, ref)
	if err != nil {
		return nil, err
	}

	cmd, ok := mod.Lookup(ref.Symbol)
	if !ok {
		return nil, &SymbolNotFoundError{Source: ref.Path, Symbol: ref.Symbol, Ref: ref.Raw, File: true}
	}
	return cmd, nil
}

// loadFile loads canonical once and caches the outcome, failures included.
func (r *Resolver) loadFile(ctx context.Context, canonical string, ref Ref) (Module, error) {
	if entry, ok := r.files[canonical]; ok {
		switch {
		case entry.loading:
			return nil, &LoadError{Path: ref.Path, Ref: ref.Raw,
				Err: errors.New("the file refers to its own commands while it is still loading")}
		case entry.err != nil:
			return nil, entry.err
		default:
			return entry.mod, nil
		}
	}

	loader, ok := r.loaders[strings.ToLower(filepath.Ext(canonical))]
	if !ok {
		return nil, &UnsupportedFileError{Path: ref.Path, Ref: ref.Raw}
	}

	entry := &fileEntry{loading: true}
	r.files[canonical] = entry
	r.opts.Logger.Debug("loading custom command file", "path", canonical)

	mod, err := loader(ctx, canonical)
	entry.loading = false
	if err != nil {
		entry.err = &LoadError{Path: ref.Path, Ref: ref.Raw, Err: err}
		return nil, entry.err
	}
	entry.mod = mod
	return mod, nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ResolveAll resolves every configured reference in declaration order,
// applies its configured overrides and registers it in reg under its
// section. Skippable failures are reported through Warn and the command is
// left out. A reference listed more than once is registered under its first
// section only. The first fatal error stops the pass.
func (r *Resolver) ResolveAll(ctx context.Context, sections []config.Section, reg *command.Registry) error {
	registered := make(map[string]bool)
	for _, section := range sections {
		for _, ref := range section.Commands {
			if registered[ref] {
				r.opts.Logger.Debug("skipping repeated command reference", "ref", ref, "section", section.Name)
				continue
			}
			cmd, err := r.Resolve(ctx, ref)
			if err != nil {
				if IsSkippable(err) {
					r.opts.Warn(err)
					continue
				}
				return err
			}

			r.applyOverrides(cmd)

			if err := reg.Register(cmd, section.Name); err != nil {
				return err
			}
			registered[ref] = true
		}
	}
	return nil
}

func (r *Resolver) applyOverrides(cmd *command.Command) {
	if r.overridden[cmd.Spec] || r.opts.Kwargs == nil {
		return
	}
	r.overridden[cmd.Spec] = true

	_, warnings := command.ApplyOverrides(cmd, r.opts.Kwargs(cmd.Spec))
	for _, w := range warnings {
		r.opts.Warn(w)
	}
}

// Known returns the references resolved so far, sorted.
func (r *Resolver) Known() []string {
	return slices.Sorted(maps.Keys(r.known))
}
