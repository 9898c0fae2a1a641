// SPDX-License-Identifier: MPL-2.0

// Package runtime launches the external tools spin delegates to.
//
// Runner.Run spawns a program from an argv slice. It can echo the command
// line, run it in a given directory, capture its output, or replace the
// current process image on platforms that support execve. Working
// directories are always passed to the child; the parent never changes its
// own directory except immediately before a process replacement.
//
// Runner.Shell evaluates a shell string with the embedded mvdan/sh
// interpreter, so `spin run "<script>"` behaves the same on every platform.
package runtime
