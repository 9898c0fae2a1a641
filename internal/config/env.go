// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment.
type Env struct {
	// Python overrides the interpreter configured in tool.spin.python.
	Python string `env:"SPIN_PYTHON"`
	// Shell is the interactive shell started by `spin shell`.
	Shell string `env:"SHELL" envDefault:"/bin/sh"`
	// PythonPath is prepended to by commands that expose the built package.
	PythonPath string `env:"PYTHONPATH"`
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// LoadEnvFrom parses Env from an explicit variable set instead of the
// process environment.
func LoadEnvFrom(vars map[string]string) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Environment: vars}); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}
