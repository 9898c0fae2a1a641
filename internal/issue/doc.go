// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog in issue.go holds longer Markdown guidance
// for recurring problems (missing configuration, no built package, broken
// custom command files), rendered in the terminal with glamour.
package issue
