// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize bounds configuration files read from disk (4 MiB).
const DefaultMaxFileSize int64 = 4 << 20

// FormatError formats a CUE error with key path prefixes.
//
// Error format: <file-path>: <key-path>: <message>
//
// Examples:
//   - pyproject.toml: tool.spin.commands[2]: conflicting values 3 and string
//   - .spin.toml: tool.spin.package: conflicting values true and string
//
// prefix is prepended to every key path so that errors on a sub-document
// still name the full location in the file.
func FormatError(err error, filePath, prefix string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(prefix, errors.Path(e))
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if msg == "" {
			// Errors from outside CUE are promoted with an empty message.
			msg = e.Error()
			if msg == "" || len(cueErrors) == 1 {
				msg = err.Error()
			}
		}

		if pathStr != "" {
			lines = append(lines, pathStr+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path (["commands", "0"]) to dotted
// notation with bracketed indices ("tool.spin.commands[0]"). Definition
// labels are dropped.
func formatPath(prefix string, path []string) string {
	var result strings.Builder
	result.WriteString(prefix)

	for _, part := range path {
		if strings.HasPrefix(part, "#") {
			continue
		}
		if isIndex(part) && result.Len() > 0 {
			result.WriteString("[" + part + "]")
			continue
		}
		if result.Len() > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}

	return result.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize verifies that data does not exceed the specified maximum size.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
