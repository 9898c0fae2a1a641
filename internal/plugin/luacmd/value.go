// SPDX-License-Identifier: MPL-2.0

package luacmd

import (
	"fmt"
	"math"

	"github.com/Shopify/go-lua"
	"github.com/spf13/cast"
)

func pushValue(l *lua.State, v any) {
	switch v := v.(type) {
	case nil:
		l.PushNil()
	case string:
		l.PushString(v)
	case bool:
		l.PushBoolean(v)
	case int:
		l.PushInteger(v)
	case int64:
		l.PushInteger(int(v))
	case float64:
		l.PushNumber(v)
	case []string:
		l.CreateTable(len(v), 0)
		for i, s := range v {
			l.PushString(s)
			l.RawSetInt(-2, i+1)
		}
	case []any:
		l.CreateTable(len(v), 0)
		for i, e := range v {
			pushValue(l, e)
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		l.CreateTable(0, len(v))
		for k, e := range v {
			pushValue(l, e)
			l.SetField(-2, k)
		}
	default:
		l.PushString(fmt.Sprint(v))
	}
}

func toGo(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		if math.Mod(n, 1) == 0 {
			return int(n)
		}
		return n
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(l, index)
	default:
		return nil
	}
}

// tableToGo returns a []any for sequences and a map[string]any otherwise.
func tableToGo(l *lua.State, index int) any {
	index = l.AbsIndex(index)
	isArray := true
	count, maxIndex := 0, 0

	l.PushNil()
	for l.Next(index) {
		if isArray {
			if i, ok := l.ToInteger(-2); ok && l.TypeOf(-2) == lua.TypeNumber && i > 0 {
				count++
				maxIndex = max(maxIndex, i)
			} else {
				isArray = false
			}
		}
		l.Pop(1)
	}

	if isArray && count > 0 && count == maxIndex {
		out := make([]any, 0, count)
		for i := 1; i <= count; i++ {
			l.RawGetInt(index, i)
			out = append(out, toGo(l, -1))
			l.Pop(1)
		}
		return out
	}
	return tableToMap(l, index)
}

func tableToMap(l *lua.State, index int) map[string]any {
	out := map[string]any{}
	index = l.AbsIndex(index)
	l.PushNil()
	for l.Next(index) {
		if l.TypeOf(-2) == lua.TypeString {
			k, _ := l.ToString(-2)
			out[k] = toGo(l, -1)
		}
		l.Pop(1)
	}
	return out
}

// optTable reads an optional table argument.
func optTable(l *lua.State, index int) map[string]any {
	if l.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(l, index)
}

// stringsAt reads the sequence part of the table at index as strings.
func stringsAt(l *lua.State, index int) []string {
	var out []string
	for i := 1; ; i++ {
		l.RawGetInt(index, i)
		if l.TypeOf(-1) == lua.TypeNil {
			l.Pop(1)
			return out
		}
		s, ok := l.ToString(-1)
		l.Pop(1)
		if !ok {
			lua.Errorf(l, "element %d must be a string", i)
		}
		out = append(out, s)
	}
}

func stringField(l *lua.State, index int, key string) string {
	l.Field(index, key)
	if l.TypeOf(-1) == lua.TypeNil {
		l.Pop(1)
		return ""
	}
	s, ok := l.ToString(-1)
	l.Pop(1)
	if !ok {
		lua.Errorf(l, "field '%s' must be a string", key)
	}
	return s
}

func stringsField(l *lua.State, index int, key string) []string {
	l.Field(index, key)
	v := toGo(l, -1)
	l.Pop(1)
	if v == nil {
		return nil
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		lua.Errorf(l, "field '%s' must be a list of strings", key)
	}
	return out
}

func boolField(l *lua.State, index int, key string) bool {
	l.Field(index, key)
	b := l.ToBoolean(-1)
	l.Pop(1)
	return b
}
