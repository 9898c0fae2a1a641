// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/spinkit/spin/internal/issue"
	"github.com/spinkit/spin/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "spin"

	defaultPython   = "python3"
	defaultMesonCLI = "meson"
	unknownProject  = "[unknown project]"
)

// FileNames lists the configuration files in precedence order.
var FileNames = []string{".spin.toml", "spin.toml", "pyproject.toml"}

//go:embed config_schema.cue
var configSchema string

// Config is the loaded project configuration.
type Config struct {
	// Dir is the project directory the files were read from.
	Dir string
	// Files lists the configuration files that were loaded, in precedence order.
	Files []string
	// Skipped holds files that exist but could not be parsed.
	Skipped []*ParseError
	// Env holds settings from the process environment.
	Env Env

	layers []layer
	v      *viper.Viper
}

// Load reads the configuration files in dir. A file that fails to parse is
// recorded in Skipped and ignored. When no file could be loaded the error is
// a *NotFoundError.
func Load(ctx context.Context, dir string, environment Env) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	cfg := &Config{Dir: dir, Env: environment}

	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, name); err != nil {
			return nil, err
		}

		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			cfg.Skipped = append(cfg.Skipped, &ParseError{File: name, Err: err})
			continue
		}
		if doc == nil {
			doc = map[string]any{}
		}
		cfg.layers = append(cfg.layers, layer{path: name, raw: data, data: doc})
		cfg.Files = append(cfg.Files, name)
	}

	if len(cfg.layers) == 0 {
		return nil, &NotFoundError{Dir: dir, Hint: detectConfigDir(dir), Skipped: cfg.Skipped}
	}

	if err := cfg.validateSchema(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("commands must be a list of strings or a table of lists").
			WithSuggestion("kwargs must map command references to tables").
			WithIssue(issue.ConfigParseErrorId).
			Wrap(err).
			BuildError()
	}

	cfg.v = viper.New()
	cfg.v.SetDefault("tool.spin.python", defaultPython)
	cfg.v.SetDefault("tool.spin.meson.cli", defaultMesonCLI)
	// Merge lowest precedence first so earlier files win for every leaf.
	// Viper lowercases keys in place, so it only ever sees copies.
	for i := len(cfg.layers) - 1; i >= 0; i-- {
		if err := cfg.v.MergeConfigMap(copyTable(cfg.layers[i].data)); err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", cfg.layers[i].path, err)
		}
	}

	return cfg, nil
}

// validateSchema checks the winning [tool.spin] table against #Spin.
func (c *Config) validateSchema() error {
	l, val, ok := c.lookupLayer("tool.spin")
	if !ok {
		return nil
	}
	if _, isTable := val.(map[string]any); !isTable {
		return fmt.Errorf("%s: tool.spin must be a table", l.path)
	}
	return cueutil.Validate(configSchema, "#Spin", val, l.path, "tool.spin")
}

// Validate reports missing [tool.spin] or [tool.spin.commands] sections.
func (c *Config) Validate() error {
	if !c.Has("tool.spin") {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(strings.Join(FileNames, ", ")).
			WithSuggestion("Add a [tool.spin] section to one of the configuration files").
			WithSuggestion("See https://github.com/spinkit/spin/blob/main/README.md").
			WithIssue(issue.ConfigNotFoundId).
			Wrap(ErrNoSpinSection).
			BuildError()
	}
	if !c.Has("tool.spin.commands") {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(c.Files[0]).
			WithSuggestion("See https://github.com/spinkit/spin/blob/main/README.md").
			WithIssue(issue.CommandsSectionMissingId).
			Wrap(ErrNoCommands).
			BuildError()
	}
	return nil
}

// Lookup returns the value stored under a dotted key. Files are consulted in
// precedence order and the first file holding the full key wins; tables are
// not merged across files.
func (c *Config) Lookup(key string) (any, bool) {
	_, val, ok := c.lookupLayer(key)
	return val, ok
}

// Has reports whether any configuration file holds key.
func (c *Config) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

func (c *Config) lookupLayer(key string) (*layer, any, bool) {
	for i := range c.layers {
		if val, ok := lookupIn(c.layers[i].data, key); ok {
			return &c.layers[i], val, true
		}
	}
	return nil, nil, false
}

func lookupIn(data map[string]any, key string) (any, bool) {
	var cur any = data
	for part := range strings.SplitSeq(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// ProjectName returns project.name, falling back to the package name.
func (c *Config) ProjectName() string {
	if name := c.v.GetString("project.name"); name != "" {
		return name
	}
	if pkg := c.Package(); pkg != "" {
		return pkg
	}
	return unknownProject
}

// DistName returns project.name, or "" when it is not configured.
func (c *Config) DistName() string {
	return c.v.GetString("project.name")
}

// Package returns tool.spin.package, or "" when unset.
func (c *Config) Package() string {
	return c.v.GetString("tool.spin.package")
}

// RequirePackage returns tool.spin.package or an actionable error.
func (c *Config) RequirePackage() (string, error) {
	if pkg := c.Package(); pkg != "" {
		return pkg, nil
	}
	return "", issue.NewErrorContext().
		WithOperation("determine package name").
		WithSuggestion("Please specify `package = packagename` under `tool.spin` section of `pyproject.toml`").
		WithIssue(issue.PackageNotConfiguredId).
		Wrap(ErrNoPackage).
		BuildError()
}

// Python returns the interpreter used for probing and launching Python.
// SPIN_PYTHON takes precedence over tool.spin.python.
func (c *Config) Python() string {
	if c.Env.Python != "" {
		return c.Env.Python
	}
	return c.v.GetString("tool.spin.python")
}

// MesonCLI returns the argv prefix used to invoke meson. A configured path
// ending in .py is run through the interpreter.
func (c *Config) MesonCLI() []string {
	cli := expandHome(c.v.GetString("tool.spin.meson.cli"))
	if strings.HasSuffix(cli, ".py") {
		return []string{c.Python(), cli}
	}
	return []string{cli}
}

// Sections returns the configured command references grouped by help
// section, in declaration order.
func (c *Config) Sections() ([]Section, error) {
	l, val, ok := c.lookupLayer("tool.spin.commands")
	if !ok {
		return nil, nil
	}

	switch cmds := val.(type) {
	case []any:
		refs, err := cast.ToStringSliceE(cmds)
		if err != nil {
			return nil, fmt.Errorf("%s: tool.spin.commands: %w", l.path, err)
		}
		return []Section{{Name: DefaultSection, Commands: refs}}, nil
	case map[string]any:
		names, err := sectionOrder(l.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.path, err)
		}
		for _, name := range slices.Sorted(maps.Keys(cmds)) {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}

		sections := make([]Section, 0, len(cmds))
		for _, name := range names {
			raw, present := cmds[name]
			if !present {
				continue
			}
			refs, err := cast.ToStringSliceE(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: tool.spin.commands.%s: %w", l.path, name, err)
			}
			sections = append(sections, Section{Name: name, Commands: refs})
		}
		return sections, nil
	default:
		return nil, fmt.Errorf("%s: tool.spin.commands must be a list or a table", l.path)
	}
}

// Kwargs returns the configured default overrides for the command reference
// ref exactly as written in tool.spin.kwargs.
func (c *Config) Kwargs(ref string) map[string]any {
	val, ok := c.Lookup("tool.spin.kwargs")
	if !ok {
		return nil
	}
	all, ok := val.(map[string]any)
	if !ok {
		return nil
	}
	overrides, _ := all[ref].(map[string]any)
	return overrides
}

// copyTable returns a deep copy of a decoded TOML table.
func copyTable(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyTable(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// detectConfigDir walks up from dir looking for a directory holding one of
// the configuration files and returns it relative to dir.
func detectConfigDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for cur := abs; ; {
		for _, name := range FileNames {
			if _, err := os.Stat(filepath.Join(cur, name)); err == nil {
				if cur == abs {
					return ""
				}
				rel, err := filepath.Rel(abs, cur)
				if err != nil {
					return cur
				}
				return rel
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}
