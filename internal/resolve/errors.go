// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
)

type (
	// skippable marks errors that only cost the affected command.
	skippable interface {
		skippable()
	}

	// InvalidRefError is a reference that fits no known form.
	InvalidRefError struct {
		Ref    string
		Reason string
	}

	// ModuleNotFoundError is a dotted reference to an unknown module.
	ModuleNotFoundError struct {
		Module string
		Ref    string
	}

	// SymbolNotFoundError is a reference to a name its module or file does
	// not define.
	SymbolNotFoundError struct {
		Source string
		Symbol string
		Ref    string
		File   bool
	}

	// FileNotFoundError is a file reference to a missing file.
	FileNotFoundError struct {
		Path string
		Ref  string
	}

	// UnsupportedFileError is a file reference to a file no loader handles.
	UnsupportedFileError struct {
		Path string
		Ref  string
	}

	// LoadError is a custom command file that failed to compile or whose
	// top-level code failed. It is fatal.
	LoadError struct {
		Path string
		Ref  string
		Err  error
	}
)

func (*InvalidRefError) skippable()      {}
func (*ModuleNotFoundError) skippable()  {}
func (*SymbolNotFoundError) skippable()  {}
func (*FileNotFoundError) skippable()    {}
func (*UnsupportedFileError) skippable() {}

// IsSkippable reports whether err only prevents a single command from being
// registered.
func IsSkippable(err error) bool {
	var s skippable
	return errors.As(err, &s)
}

func (e *InvalidRefError) Error() string {
	return fmt.Sprintf("Invalid command reference `%s`: %s", e.Ref, e.Reason)
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("Could not import module `%s` to load command `%s`", e.Module, e.Ref)
}

func (e *SymbolNotFoundError) Error() string {
	kind := "module"
	if e.File {
		kind = "file"
	}
	return fmt.Sprintf("Could not load command `%s` from %s `%s`.", e.Symbol, kind, e.Source)
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("Could not find file `%s` to load custom command `%s`.", e.Path, e.Ref)
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("Cannot load custom command `%s`: unsupported file type `%s` (expected one of %s)",
		e.Ref, filepath.Ext(e.Path), supportedExtensions())
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Could not import file `%s` to load custom command `%s`:\n%v", e.Path, e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
