// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// Dir is the project directory to read configuration files from.
	Dir string
	// Env overrides the environment settings. When nil they are parsed from
	// the process environment.
	Env *Env
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider backed by the filesystem.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested directory.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	var environment Env
	if opts.Env != nil {
		environment = *opts.Env
	} else {
		var err error
		if environment, err = LoadEnv(); err != nil {
			return nil, err
		}
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	return Load(ctx, dir, environment)
}
