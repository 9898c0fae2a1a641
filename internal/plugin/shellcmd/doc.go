// SPDX-License-Identifier: MPL-2.0

// Package shellcmd loads custom commands from shell scripts run by the
// embedded POSIX shell interpreter.
//
// The script's top-level statements run once, when the file is loaded. Every
// function it defines is then addressable as "path.sh:function". The comment
// block directly above a function is its help text; annotation lines declare
// parameters:
//
//	# Build the documentation.
//	#
//	# @option -f --format FORMAT  Output format (default: html)
//	# @flag -v --verbose  Show sphinx output
//	# @arg TARGETS...  Pages to rebuild
//	build_docs() {
//		sphinx-build -b "$SPIN_ARG_FORMAT" doc "build/$SPIN_ARG_FORMAT" "$@"
//	}
//
// Parameter values are exported as SPIN_ARG_<NAME>; booleans are "1" when
// set and empty otherwise. A variadic argument becomes the positional
// parameters.
package shellcmd
