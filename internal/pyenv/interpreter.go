// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spinkit/spin/internal/runtime"
)

const (
	versionScript = `import sys; print("%d.%d.%d" % sys.version_info[:3])`

	// Prints the editable source directory of a distribution, or nothing.
	// direct_url.json is read directly so the query works before 3.13.
	editableScript = `
import sys
try:
    import importlib.metadata as md
    dist = md.distribution(sys.argv[1])
    print(dist.read_text("direct_url.json") or "")
except Exception:
    print("")
`
)

// Interpreter runs queries against a Python executable.
type Interpreter struct {
	Path   string
	runner *runtime.Runner
}

// directURL is the subset of PEP 610 direct_url.json spin reads.
type directURL struct {
	URL     string `json:"url"`
	DirInfo struct {
		Editable bool `json:"editable"`
	} `json:"dir_info"`
}

// New creates an Interpreter for path (e.g. "python3").
func New(runner *runtime.Runner, path string) *Interpreter {
	return &Interpreter{Path: path, runner: runner}
}

// Version reports the interpreter's version.
func (i *Interpreter) Version(ctx context.Context) (Version, error) {
	res, err := i.runner.Run(ctx, []string{i.Path, "-c", versionScript}, runtime.Capture(), runtime.Echo(false))
	if err != nil {
		return Version{}, fmt.Errorf("failed to query %s version: %w", i.Path, err)
	}
	return ParseVersion(res.LastLine())
}

// EditableInstallPath returns the source directory of an editable install
// of distname, or "" when distname is not installed in editable mode.
func (i *Interpreter) EditableInstallPath(ctx context.Context, distname string) (string, error) {
	if distname == "" {
		return "", nil
	}
	res, err := i.runner.Run(ctx, []string{i.Path, "-c", editableScript, distname},
		runtime.Capture(), runtime.Echo(false), runtime.MustSucceed(false))
	if err != nil {
		return "", err
	}
	return parseDirectURL(res.LastLine()), nil
}

// IsEditableInstallOf reports whether distname is installed in editable mode
// from the directory dir.
func (i *Interpreter) IsEditableInstallOf(ctx context.Context, distname, dir string) (bool, string, error) {
	path, err := i.EditableInstallPath(ctx, distname)
	if err != nil || path == "" {
		return false, path, err
	}
	return sameDir(path, dir), path, nil
}

func parseDirectURL(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	var u directURL
	if err := json.Unmarshal([]byte(out), &u); err != nil || !u.DirInfo.Editable {
		return ""
	}
	path := strings.TrimPrefix(u.URL, "file://")
	// file:///C:/src on Windows.
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}

func sameDir(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// PrependPath puts entry in front of a PATH-style list.
func PrependPath(entry, list string) string {
	if list == "" {
		return entry
	}
	if entry == "" {
		return list
	}
	return entry + string(os.PathListSeparator) + list
}
