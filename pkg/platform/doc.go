// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes OS name constants and host capability checks, such as
// whether a launched tool may replace the current process.
package platform
