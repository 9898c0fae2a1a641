// SPDX-License-Identifier: MPL-2.0

// Package pyenv asks the project's Python interpreter about itself: its
// version and whether a distribution is installed in editable mode.
package pyenv
