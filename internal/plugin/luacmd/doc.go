// SPDX-License-Identifier: MPL-2.0

// Package luacmd loads custom commands from Lua files.
//
// A file is executed once when loaded. Its top-level code declares commands
// through the global spin table and stores them in globals, which are then
// addressable as "path.lua:global":
//
//	example = spin.command{
//		help = "Print a greeting.",
//		params = { spin.option{"-n", "--name", default = "world"} },
//		run = function(ctx, args)
//			ctx.echo("hello " .. args.name)
//		end,
//	}
//
//	docs = spin.extend("spin.cmds.meson.build", { remove = {"gcov"} },
//		function(ctx, args, parent)
//			parent(args)
//			ctx.run({"make", "-C", "doc", "html"})
//		end)
//
// Callbacks receive a ctx table exposing run, shell, invoke, config,
// commands and echo, plus the bound argument table.
package luacmd
