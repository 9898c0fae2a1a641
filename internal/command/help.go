// SPDX-License-Identifier: MPL-2.0

package command

import (
	"strings"
)

// ComposeHelp joins a base text and an addition with a blank line and trims
// the result. Either part may be empty.
func ComposeHelp(base, addition string) string {
	base, addition = Dedent(base), Dedent(addition)
	switch {
	case addition == "":
		return strings.TrimSpace(base)
	case strings.TrimSpace(base) == "":
		return strings.TrimSpace(addition)
	default:
		return strings.TrimSpace(base + "\n\n" + addition)
	}
}

// Dedent removes the whitespace prefix common to all non-blank lines.
// The first line is ignored when computing the prefix if it is not indented,
// which is how long strings usually start.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := ""
	found := false
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if i == 0 && indent == "" && len(lines) > 1 {
			continue
		}
		if !found {
			prefix, found = indent, true
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return s
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
