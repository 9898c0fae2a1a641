// SPDX-License-Identifier: MPL-2.0

// Package command is the command model behind spin's subcommands.
//
// A Command is a value: a name, ordered parameter descriptors, help text and
// a Callback. Commands come from Go code (the built-ins), Lua files or shell
// files, and are all handled the same way once resolved.
//
// Extend derives a new command from an existing one without touching the
// parent. ApplyOverrides rebinds parameter defaults from configuration.
// Registry groups commands into ordered help sections. Context is built once
// per process and passed to every callback; it carries the configuration,
// the registry and the process launcher, and Invoke uses it to run one
// command from inside another.
package command
