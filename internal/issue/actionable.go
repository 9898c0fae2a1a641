// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error: what spin was doing, the file,
	// path or command involved, and what the developer can try next.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load configuration").
	//		WithResource("pyproject.toml").
	//		WithSuggestion("Add a [tool.spin] section").
	//		Wrap(originalErr).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "load configuration".
		Operation string
		// Resource names the file, path or command involved. Optional.
		Resource string
		// Suggestions are printed below the message, one per line.
		Suggestions []string
		// Issue links to a catalog entry with longer guidance. Optional.
		Issue Id
		Cause error
	}

	// ErrorContext builds an ActionableError one field at a time.
	ErrorContext struct {
		err ActionableError
	}
)

func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error is the one-line form: "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error followed by its suggestions as bullets. Verbose
// output also lists every error in the cause chain, outermost first.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteByte('\n')
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err)
		}
	}
	return b.String()
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends a hint. Hints keep the order they were added in.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// BuildError returns the built error, or nil when no operation was set.
func (c *ErrorContext) BuildError() error {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}
