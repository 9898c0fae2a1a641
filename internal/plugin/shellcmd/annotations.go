// SPDX-License-Identifier: MPL-2.0

package shellcmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
)

var defaultPattern = regexp.MustCompile(`\s*\(default:\s*([^)]*)\)\s*$`)

// EnvName is the variable a parameter is exported as.
func EnvName(p command.Param) string {
	return runtime.ArgEnvPrefix + strings.ToUpper(p.Name)
}

// parseDoc splits comment lines into help text and parameter annotations.
func parseDoc(lines []string) (string, []command.Param, error) {
	var (
		help   []string
		params []command.Param
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "@") {
			help = append(help, line)
			continue
		}
		p, err := parseAnnotation(trimmed)
		if err != nil {
			return "", nil, err
		}
		for _, existing := range params {
			if existing.Name == p.Name {
				return "", nil, fmt.Errorf("parameter %q declared twice", p.Name)
			}
		}
		params = append(params, p)
	}
	return strings.TrimSpace(command.Dedent(strings.Join(help, "\n"))), params, nil
}

func parseAnnotation(line string) (command.Param, error) {
	fields := strings.Fields(line)
	kind, rest := fields[0], fields[1:]

	var p command.Param
	switch kind {
	case "@option", "@flag":
		p.Kind = command.KindString
		if kind == "@flag" {
			p.Kind = command.KindBool
		}
		for len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
			p.Flags = append(p.Flags, rest[0])
			rest = rest[1:]
		}
		if len(p.Flags) == 0 {
			return p, fmt.Errorf("%s needs at least one flag: %q", kind, line)
		}
		if kind == "@option" && len(rest) > 0 && isMetavar(rest[0]) {
			p.Metavar, rest = rest[0], rest[1:]
		}
		p.Name = command.ParamName(longFlag(p.Flags))
	case "@arg":
		if len(rest) == 0 {
			return p, fmt.Errorf("@arg needs a name: %q", line)
		}
		name := rest[0]
		rest = rest[1:]
		p.Kind = command.KindString
		p.Positional = true
		if trimmed, ok := strings.CutSuffix(name, "..."); ok {
			name = trimmed
			p.Variadic = true
			p.Kind = command.KindStrings
		} else {
			p.Required = true
		}
		p.Metavar = name
		p.Name = command.ParamName(name)
	default:
		return p, fmt.Errorf("unknown annotation %s", kind)
	}

	p.Help = strings.Join(rest, " ")
	if m := defaultPattern.FindStringSubmatch(p.Help); m != nil {
		def, err := p.Coerce(m[1])
		if err != nil {
			return p, err
		}
		p.Default = def
		p.Required = false
		p.Help = strings.TrimSpace(defaultPattern.ReplaceAllString(p.Help, ""))
	}
	return p, nil
}

func isMetavar(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return false
		}
	}
	return s != ""
}

func longFlag(flags []string) string {
	for _, f := range flags {
		if strings.HasPrefix(f, "--") {
			return f
		}
	}
	return flags[0]
}
