// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spinkit/spin/internal/command"
)

type (
	// Module is a namespace of commands addressable by symbol. Lookup
	// returns a copy the caller may modify.
	Module interface {
		Lookup(symbol string) (*command.Command, bool)
	}

	// Table is a module compiled into spin.
	Table map[string]*command.Command
)

var modules = map[string]Module{}

// RegisterModule makes m available to dotted references under path. It is
// meant to be called from init functions and panics on a duplicate path.
func RegisterModule(path string, m Module) {
	if _, dup := modules[path]; dup {
		panic(fmt.Sprintf("resolve: module %q registered twice", path))
	}
	modules[path] = m
}

// LookupModule returns the module registered under path.
func LookupModule(path string) (Module, bool) {
	m, ok := modules[path]
	return m, ok
}

// Modules returns the registered module paths in sorted order.
func Modules() []string {
	return slices.Sorted(maps.Keys(modules))
}

func (t Table) Lookup(symbol string) (*command.Command, bool) {
	cmd, ok := t[symbol]
	if !ok {
		return nil, false
	}
	return cmd.Clone(), true
}
