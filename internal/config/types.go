// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSection is the help section used when commands are given as a list.
const DefaultSection = "Commands"

var (
	// ErrNoSpinSection is returned by Validate when no file has [tool.spin].
	ErrNoSpinSection = errors.New("configuration has no [tool.spin] section")
	// ErrNoCommands is returned by Validate when [tool.spin.commands] is absent.
	ErrNoCommands = errors.New("configuration is missing section [tool.spin.commands]")
	// ErrNoPackage is returned by RequirePackage when tool.spin.package is unset.
	ErrNoPackage = errors.New("tool.spin.package is not set")
)

type (
	// Section is a named, ordered group of command references.
	Section struct {
		Name     string
		Commands []string
	}

	// NotFoundError is returned when none of the configuration files exist
	// (or none could be parsed).
	NotFoundError struct {
		// Dir is the directory that was searched.
		Dir string
		// Hint is a relative path to an ancestor directory holding a
		// configuration file, if one was found.
		Hint string
		// Skipped lists the files that exist but could not be parsed.
		Skipped []*ParseError
	}

	// ParseError records a configuration file that exists but is not valid
	// TOML. Such files are skipped.
	ParseError struct {
		File string
		Err  error
	}

	// layer is one decoded configuration file.
	layer struct {
		path string
		raw  []byte
		data map[string]any
	}
)

func (e *NotFoundError) Error() string {
	return "Could not load configuration from one of: " + strings.Join(FileNames, ", ")
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse [%s]: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
