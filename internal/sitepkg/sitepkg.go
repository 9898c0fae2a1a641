// SPDX-License-Identifier: MPL-2.0

// Package sitepkg locates the library directory a build installed the
// project into.
//
// Build backends put installed packages under site-packages or
// dist-packages, sometimes below a pythonX.Y directory. Resolve picks the
// one directory that belongs to the running interpreter and refuses to
// guess when that is not possible.
package sitepkg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spinkit/spin/internal/pyenv"
)

const libDirPattern = "**/{site,dist}-packages"

var (
	// ErrNotFound is wrapped by NotFoundError.
	ErrNotFound = errors.New("site-packages not found")
	// ErrAmbiguous is wrapped by AmbiguousError.
	ErrAmbiguous = errors.New("site-packages is ambiguous")

	versionSegment = regexp.MustCompile(`^python(\d+)\.(\d+)`)
)

type (
	// Candidate is a library directory found under an install root.
	Candidate struct {
		// Path is absolute.
		Path string
		// Tagged is true when a path segment names a pythonX.Y version.
		Tagged bool
		Major  uint64
		Minor  uint64
	}

	// NotFoundError is returned when no candidate applies.
	NotFoundError struct {
		Root string
		// Version is set when tagged candidates existed but none matched it.
		Version *pyenv.Version
	}

	// AmbiguousError is returned when more than one candidate applies.
	AmbiguousError struct {
		Root       string
		Candidates []string
	}
)

func (e *NotFoundError) Error() string {
	if e.Version != nil {
		return fmt.Sprintf("No site-packages found in `%s` for Python %s", e.Root, e.Version)
	}
	return fmt.Sprintf("No `site-packages` or `dist-packages` found under `%s`", e.Root)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("Multiple `site-packages` found in `%s`, but cannot use Python version to disambiguate:\n  %s",
		e.Root, strings.Join(e.Candidates, "\n  "))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

// InstallDir returns the install prefix used for a build directory.
func InstallDir(buildDir string) string {
	return buildDir + "-install"
}

// Candidates walks root and returns every site-packages or dist-packages
// directory below it in lexical order. A missing root yields no candidates.
func Candidates(root string) ([]Candidate, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, nil
	}

	var found []Candidate
	err = doublestar.GlobWalk(os.DirFS(abs), libDirPattern, func(path string, d fs.DirEntry) error {
		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			// Symlinks are matched but not followed; count those to a directory.
			info, err := os.Stat(filepath.Join(abs, filepath.FromSlash(path)))
			isDir = err == nil && info.IsDir()
		}
		if !isDir {
			return nil
		}
		found = append(found, newCandidate(abs, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", root, err)
	}
	return found, nil
}

func newCandidate(root, rel string) Candidate {
	c := Candidate{Path: filepath.Join(root, filepath.FromSlash(rel))}
	for _, segment := range strings.Split(rel, "/") {
		m := versionSegment.FindStringSubmatch(segment)
		if m == nil {
			continue
		}
		c.Major, _ = strconv.ParseUint(m[1], 10, 64)
		c.Minor, _ = strconv.ParseUint(m[2], 10, 64)
		c.Tagged = true
		break
	}
	return c
}

// Resolve returns the single library directory under root that applies to
// an interpreter of version want.
//
// When any candidate carries a pythonX.Y tag, only tagged candidates whose
// tag equals want's major.minor apply. Otherwise every candidate applies.
// No applicable candidate yields a *NotFoundError and more than one a
// *AmbiguousError. The tree is searched on every call.
func Resolve(root string, want pyenv.Version) (string, error) {
	candidates, err := Candidates(root)
	if err != nil {
		return "", err
	}

	tagged := false
	for _, c := range candidates {
		if c.Tagged {
			tagged = true
			break
		}
	}

	var matches []string
	for _, c := range candidates {
		if !tagged || (c.Tagged && c.Major == want.Major && c.Minor == want.Minor) {
			matches = append(matches, c.Path)
		}
	}

	switch len(matches) {
	case 0:
		nf := &NotFoundError{Root: root}
		if tagged {
			nf.Version = &want
		}
		return "", nf
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Root: root, Candidates: matches}
	}
}
