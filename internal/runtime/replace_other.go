// SPDX-License-Identifier: MPL-2.0

//go:build !linux && !darwin

package runtime

import "errors"

func replaceProcess(string, []string, []string) error {
	return errors.New("process replacement is not supported on this platform")
}
