// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is an interpreter version. Only Major and Minor take part in
// site-packages matching.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseVersion parses "3.12.1", "3.12" or "Python 3.12.1".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "Python"))
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid Python version %q: %w", s, err)
	}
	return Version{Major: v.Major(), Minor: v.Minor(), Patch: v.Patch()}, nil
}

// String returns "MAJOR.MINOR", the form used in library directory names.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Satisfies reports whether v meets a semver constraint such as ">= 3.11".
func (v Version) Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	return c.Check(semver.New(v.Major, v.Minor, v.Patch, "", "")), nil
}
