// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover environment variables (MustSetenv, MustUnsetenv, SetHomeDir),
// the working directory (MustChdir) and on-disk fixtures (MustWriteFile,
// WriteTree).
package testutil
