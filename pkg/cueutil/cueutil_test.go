// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const testSchema = `
#Tool: {
	name?: string
	items?: [...string]
	...
}
`

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     any
		wantErr  bool
		contains []string
	}{
		{
			name: "valid document",
			data: map[string]any{"name": "demo", "items": []any{"a", "b"}},
		},
		{
			name: "unknown keys are allowed",
			data: map[string]any{"other": int64(1)},
		},
		{
			name:     "wrong scalar type",
			data:     map[string]any{"name": int64(3)},
			wantErr:  true,
			contains: []string{"demo.toml", "tool.name"},
		},
		{
			name:     "wrong list element",
			data:     map[string]any{"items": []any{"a", true}},
			wantErr:  true,
			contains: []string{"tool.items[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(testSchema, "#Tool", tt.data, "demo.toml", "tool")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, s := range tt.contains {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q should contain %q", err, s)
				}
			}
		})
	}
}

func TestValidate_UnknownDefinition(t *testing.T) {
	t.Parallel()

	if err := Validate(testSchema, "#Missing", map[string]any{}, "x.toml", ""); err == nil {
		t.Fatal("expected an error for a missing definition")
	}
}

func TestFormatError_NonCUE(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.toml", "") != nil {
		t.Error("FormatError(nil) should return nil")
	}

	err := FormatError(errors.New("some error"), "test.toml", "")
	if !strings.Contains(err.Error(), "test.toml") || !strings.Contains(err.Error(), "some error") {
		t.Errorf("unexpected error text: %v", err)
	}

	wrapped := FormatError(fmt.Errorf("decode tool.spin: %w", errors.New("bad table")), "spin.toml", "tool.spin")
	if got := wrapped.Error(); strings.HasSuffix(got, ": ") || !strings.Contains(got, "bad table") {
		t.Errorf("FormatError() = %q, want the cause in the message", got)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix   string
		path     []string
		expected string
	}{
		{"", nil, ""},
		{"", []string{"name"}, "name"},
		{"tool.spin", []string{"commands", "0"}, "tool.spin.commands[0]"},
		{"", []string{"kwargs", "spin.build", "jobs"}, "kwargs.spin.build.jobs"},
		{"tool", []string{"3"}, "tool[3]"},
		{"", []string{"#Spin", "package"}, "package"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.prefix, tt.path); got != tt.expected {
			t.Errorf("formatPath(%q, %v) = %q, want %q", tt.prefix, tt.path, got, tt.expected)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "a.toml"); err != nil {
		t.Errorf("size at limit should pass: %v", err)
	}
	err := CheckFileSize(make([]byte, 11), 10, "a.toml")
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("size over limit should fail, got %v", err)
	}
}
