// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// SupportsProcessReplacement reports whether the host can replace the
// current process image (execve). Windows has no equivalent, so callers
// fall back to spawning a child and waiting for it.
func SupportsProcessReplacement() bool {
	return supportsReplacement(runtime.GOOS)
}

func supportsReplacement(goos string) bool {
	return goos == Linux || goos == Darwin
}

// IsWindows reports whether the host is Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}
