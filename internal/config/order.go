// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2/unstable"
)

var commandsPath = []string{"tool", "spin", "commands"}

// sectionOrder scans a TOML document and returns the section names of
// [tool.spin.commands] in the order they are declared. Decoding into a map
// loses that order, so the document is walked expression by expression.
//
// Three spellings are recognized:
//
//	[tool.spin.commands]
//	"Build" = [...]
//
//	[tool.spin]
//	commands = {"Build" = [...], "Test" = [...]}
//
//	[tool.spin]
//	commands.Build = [...]
func sectionOrder(doc []byte) ([]string, error) {
	var (
		p       unstable.Parser
		current []string
		names   []string
	)
	add := func(name string) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	p.Reset(doc)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			current = keyParts(expr.Key())
			if len(current) == len(commandsPath)+1 && slices.Equal(current[:len(commandsPath)], commandsPath) {
				add(current[len(commandsPath)])
			}
		case unstable.KeyValue:
			full := append(slices.Clone(current), keyParts(expr.Key())...)
			switch {
			case len(full) == len(commandsPath)+1 && slices.Equal(full[:len(commandsPath)], commandsPath):
				add(full[len(commandsPath)])
			case slices.Equal(full, commandsPath) && expr.Value().Kind == unstable.InlineTable:
				children := expr.Value().Children()
				for children.Next() {
					kv := children.Node()
					if kv.Kind != unstable.KeyValue {
						continue
					}
					if parts := keyParts(kv.Key()); len(parts) > 0 {
						add(parts[0])
					}
				}
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan command sections: %w", err)
	}
	return names, nil
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}
