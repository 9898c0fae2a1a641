// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"strings"
)

// RefKind tells which form a reference takes.
type RefKind int

const (
	// RefAlias is a short name for a built-in command.
	RefAlias RefKind = iota
	// RefModule is "module.path.symbol".
	RefModule
	// RefFile is "path/to/file.ext:symbol".
	RefFile
)

// aliases keep the historical short names of the meson commands working.
var aliases = map[string]string{
	"spin.build":   "spin.cmds.meson.build",
	"spin.test":    "spin.cmds.meson.test",
	"spin.ipython": "spin.cmds.meson.ipython",
	"spin.python":  "spin.cmds.meson.python",
	"spin.shell":   "spin.cmds.meson.shell",
}

// Ref is a parsed command reference.
type Ref struct {
	Raw  string
	Kind RefKind
	// Module is the module path for RefAlias and RefModule.
	Module string
	// Path is the file for RefFile.
	Path   string
	Symbol string
}

// ParseRef classifies raw. File references are split at the last colon so
// that Windows drive letters survive.
func ParseRef(raw string) (Ref, error) {
	ref := Ref{Raw: raw}
	if target, ok := aliases[raw]; ok {
		ref.Kind = RefAlias
		ref.Module, ref.Symbol = splitDotted(target)
		return ref, nil
	}

	if i := strings.LastIndex(raw, ":"); i >= 0 {
		ref.Kind = RefFile
		ref.Path, ref.Symbol = raw[:i], raw[i+1:]
		if ref.Path == "" || ref.Symbol == "" {
			return ref, &InvalidRefError{Ref: raw, Reason: "expected path/to/file:symbol"}
		}
		return ref, nil
	}

	ref.Kind = RefModule
	ref.Module, ref.Symbol = splitDotted(raw)
	if ref.Module == "" || ref.Symbol == "" {
		return ref, &InvalidRefError{Ref: raw, Reason: "expected module.path.symbol or path/to/file:symbol"}
	}
	return ref, nil
}

func splitDotted(s string) (module, symbol string) {
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

// Source names where the reference points: the module path or the file.
func (r Ref) Source() string {
	if r.Kind == RefFile {
		return r.Path
	}
	return r.Module
}
