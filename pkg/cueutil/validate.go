// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Validate checks data (as produced by a TOML or JSON decoder) against the
// definition named def in schema. Errors are formatted with FormatError.
func Validate(schema, def string, data any, filePath, prefix string) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	definition := schemaValue.LookupPath(cue.ParsePath(def))
	if !definition.Exists() {
		return fmt.Errorf("internal error: schema has no definition %s", def)
	}

	userValue := ctx.Encode(data)
	if userValue.Err() != nil {
		return FormatError(userValue.Err(), filePath, prefix)
	}

	unified := definition.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return FormatError(err, filePath, prefix)
	}
	return nil
}
