// SPDX-License-Identifier: MPL-2.0

package command

import (
	"maps"

	"github.com/spf13/cast"
)

// Args holds parameter values keyed by Param.Name.
type Args map[string]any

// Clone returns a copy of a. Slice values are copied.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

// Without returns a copy of a minus the given keys.
func (a Args) Without(keys ...string) Args {
	out := a.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// With returns a copy of a with the entries of b added or replaced.
func (a Args) With(b Args) Args {
	out := a.Clone()
	maps.Copy(out, b)
	return out
}

// Has reports whether name is present.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Args) String(name string) string {
	return cast.ToString(a[name])
}

func (a Args) Bool(name string) bool {
	return cast.ToBool(a[name])
}

func (a Args) Int(name string) int {
	return cast.ToInt(a[name])
}

func (a Args) Float(name string) float64 {
	return cast.ToFloat64(a[name])
}

// Strings returns a list value. A single string is returned as a one-element
// list and a missing value as an empty list.
func (a Args) Strings(name string) []string {
	switch v := a[name].(type) {
	case nil:
		return []string{}
	case string:
		return []string{v}
	default:
		return cast.ToStringSlice(v)
	}
}
