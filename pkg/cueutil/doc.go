// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates decoded configuration data against embedded CUE
// schemas and renders CUE errors with dotted key paths.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	if err := cueutil.Validate(schema, "#Spin", toolSpin, "pyproject.toml", "tool.spin"); err != nil {
//	    return err // e.g. "pyproject.toml: tool.spin.commands: conflicting values ..."
//	}
package cueutil
