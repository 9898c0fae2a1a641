// SPDX-License-Identifier: MPL-2.0

package command

import (
	"maps"
	"slices"
)

// ApplyOverrides makes configured values the new defaults of cmd.
//
// For every key naming a visible or hidden parameter the value is converted
// to the parameter's kind, shown as its Default, and bound to the callback
// for calls that do not supply the key. Explicit arguments still win. Keys
// matching no parameter, or whose value cannot be converted, are skipped and
// reported in the returned errors. cmd is modified in place and returned.
func ApplyOverrides(cmd *Command, overrides map[string]any) (*Command, []error) {
	if len(overrides) == 0 {
		return cmd, nil
	}

	var warnings []error
	bound := make(Args, len(overrides))

	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		value := overrides[key]
		name := ParamName(key)
		p, ok := cmd.lookupParam(name)
		if !ok {
			warnings = append(warnings, &UnknownOverrideError{Command: cmd.Name, Key: key})
			continue
		}
		coerced, err := p.Coerce(value)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		p.Default = coerced
		bound[name] = coerced
	}

	if len(bound) == 0 {
		return cmd, warnings
	}

	if cmd.Overrides == nil {
		cmd.Overrides = make(map[string]any, len(bound))
	}
	for k, v := range bound {
		cmd.Overrides[k] = cloneValue(v)
	}

	inner := cmd.Callback
	cmd.Callback = func(cc *Context, args Args) error {
		merged := args.Clone()
		for k, v := range bound {
			if _, explicit := merged[k]; !explicit {
				merged[k] = cloneValue(v)
			}
		}
		return inner(cc, merged)
	}
	return cmd, warnings
}
