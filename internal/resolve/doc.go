// SPDX-License-Identifier: MPL-2.0

// Package resolve turns command references from the configuration into
// commands.
//
// A reference is one of:
//
//   - an alias of a built-in command, such as "spin.build";
//   - a dotted module reference, "spin.cmds.meson.docs", naming a symbol in
//     a module compiled into spin and registered with RegisterModule;
//   - a file reference, "path/to/cmds.lua:symbol", naming a symbol in a
//     custom command file loaded by the loader for its extension.
//
// Failures that concern a single command (unknown module, missing file or
// symbol) are skippable: the command is left out and a warning is printed.
// A custom command file that fails to load is a fatal LoadError.
package resolve
