// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandNotFound is returned by Context.InvokeName for unknown names.
	ErrCommandNotFound = errors.New("command not found")

	// ErrAnonymousExtension is returned by Extend when the extending
	// function has no name to derive the command name from.
	ErrAnonymousExtension = errors.New("cannot derive a command name from an anonymous function; set a name")
)

type (
	// DuplicateCommandError is returned when two configured commands share
	// a name.
	DuplicateCommandError struct {
		Name     string
		Existing string
		New      string
	}

	// UnknownParamError is returned when Invoke receives a key that matches
	// no parameter, visible or hidden.
	UnknownParamError struct {
		Command string
		Param   string
	}

	// MissingParamError is returned when a required parameter has no value.
	MissingParamError struct {
		Command string
		Param   string
	}

	// InvalidValueError is returned when a value cannot be converted to the
	// parameter's kind or is not one of its choices.
	InvalidValueError struct {
		Param string
		Kind  Kind
		Value any
		Err   error
	}

	// DuplicateParamError is returned by Extend when an added parameter
	// shares its name with one of the parent's.
	DuplicateParamError struct {
		Command string
		Param   string
	}

	// UnknownOverrideError reports a configured override naming no parameter.
	UnknownOverrideError struct {
		Command string
		Key     string
	}
)

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command `%s` is declared twice (by `%s` and `%s`)", e.Name, e.Existing, e.New)
}

func (e *UnknownParamError) Error() string {
	return fmt.Sprintf("command `%s` has no parameter `%s`", e.Command, e.Param)
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("command `%s` requires parameter `%s`", e.Command, e.Param)
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for parameter `%s` (%s): %v", e.Value, e.Param, e.Kind, e.Err)
}

func (e *InvalidValueError) Unwrap() error { return e.Err }

func (e *DuplicateParamError) Error() string {
	return fmt.Sprintf("parameter `%s` already exists on command `%s`", e.Param, e.Command)
}

func (e *UnknownOverrideError) Error() string {
	return fmt.Sprintf("override `%s` for command `%s` matches no parameter; ignored", e.Key, e.Command)
}
