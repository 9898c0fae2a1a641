// SPDX-License-Identifier: MPL-2.0

package command

import (
	"reflect"
	goruntime "runtime"
	"strings"
	"unicode"
)

// Source languages a command callback can be written in.
const (
	LangGo    = "go"
	LangLua   = "lua"
	LangShell = "sh"
)

// Origin points at the user code behind a command, not at any wrapper spin
// generated around it. The introspect command reads the source from here.
type Origin struct {
	// Module is the module path or file the command was resolved from.
	Module string
	File   string
	Line   int
	// Symbol is the function or global name in File.
	Symbol string
	Lang   string
}

// OriginOf describes a Go function value.
func OriginOf(fn any) Origin {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Origin{Lang: LangGo}
	}
	f := goruntime.FuncForPC(v.Pointer())
	if f == nil {
		return Origin{Lang: LangGo}
	}
	file, line := f.FileLine(f.Entry())
	return Origin{File: file, Line: line, Symbol: f.Name(), Lang: LangGo}
}

// FuncName returns the bare function name from a fully qualified symbol
// ("github.com/x/cmds.buildDocs" becomes "buildDocs"). Anonymous functions
// yield "".
func FuncName(symbol string) string {
	if i := strings.LastIndex(symbol, "/"); i >= 0 {
		symbol = symbol[i+1:]
	}
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		symbol = symbol[i+1:]
	}
	if strings.HasPrefix(symbol, "func") && strings.TrimLeft(symbol[4:], "0123456789") == "" {
		return ""
	}
	return symbol
}

// CommandName converts an identifier to a command name: underscores become
// hyphens and camelCase is split ("build_docs" and "buildDocs" both become
// "build-docs").
func CommandName(ident string) string {
	var b strings.Builder
	runes := []rune(ident)
	for i, r := range runes {
		switch {
		case r == '_':
			b.WriteRune('-')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' && !unicode.IsUpper(runes[i-1]) {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
