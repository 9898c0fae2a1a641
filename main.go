// SPDX-License-Identifier: MPL-2.0

// Command spin is a developer tool for scientific Python projects.
package main

import cmd "github.com/spinkit/spin/cmd/spin"

func main() {
	cmd.Execute()
}
