// SPDX-License-Identifier: MPL-2.0

// Package cmds holds the commands compiled into spin. They are registered
// as modules in init and referenced from configuration like any other
// command, for example "spin.cmds.meson.build" or the alias "spin.build".
//
// Commands that need the project built first look up "build" in the
// registry at call time, so a configured replacement of build is honored.
package cmds
