// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin

package runtime

import "syscall"

func replaceProcess(argv0 string, argv []string, envv []string) error {
	return syscall.Exec(argv0, argv, envv)
}
