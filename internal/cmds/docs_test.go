// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/internal/testutil"
)

const fakeMake = `#!/bin/sh
echo "$(basename "$(pwd -P)")|$*|$SPHINXOPTS" >> "$FAKE_LOG"
`

func TestDocs_NoDocDir(t *testing.T) {
	f := newFixture(t)

	err := f.cc.Invoke(docsCmd, command.Args{})
	var exitErr *runtime.ExitCodeError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("docs error = %v, want exit code 1", err)
	}
	if !strings.Contains(f.out.String(), "No documentation folder found") {
		t.Errorf("output = %q", f.out.String())
	}
}

func TestDocs_Targets(t *testing.T) {
	f := newFixture(t)
	f.tool(t, "make", fakeMake)
	builds := fakeBuild(t, f)
	f.siteDir(t, "build")
	testutil.MustMkdirAll(t, filepath.Join(f.dir, "docs"))
	t.Cleanup(testutil.MustUnsetenv(t, "SPHINXOPTS"))

	if err := f.cc.Invoke(docsCmd, command.Args{"sphinx_target": "targets"}); err != nil {
		t.Fatalf("docs error = %v", err)
	}
	if len(*builds) != 0 {
		t.Error("listing targets should not build")
	}
	want := []string{"docs|help|-W -j auto"}
	if got := f.calls(t); !slices.Equal(got, want) {
		t.Errorf("make calls = %q, want %q", got, want)
	}
}

func TestDocs_BuildsAndCleans(t *testing.T) {
	f := newFixture(t)
	f.tool(t, "make", fakeMake)
	builds := fakeBuild(t, f)
	f.siteDir(t, "build")
	stale := filepath.Join(f.dir, "doc", "build", "html", "index.html")
	testutil.MustWriteFile(t, stale, "old")
	t.Cleanup(testutil.MustSetenv(t, "SPHINXOPTS", "-q"))

	err := f.cc.Invoke(docsCmd, command.Args{"clean": true, "sphinx_gallery_plot": false, "jobs": "2"})
	if err != nil {
		t.Fatalf("docs error = %v", err)
	}
	if len(*builds) != 1 {
		t.Errorf("build invocations = %d, want 1", len(*builds))
	}
	if !strings.Contains(f.out.String(), "Removing") {
		t.Errorf("output = %q", f.out.String())
	}
	want := []string{"doc|html|-q -D plot_gallery=0 -j 2"}
	if got := f.calls(t); !slices.Equal(got, want) {
		t.Errorf("make calls = %q, want %q", got, want)
	}
}

func TestSphinxOpts(t *testing.T) {
	if got := sphinxOpts("-W", true, "auto"); got != "-W -j auto" {
		t.Errorf("sphinxOpts() = %q", got)
	}
	if got := sphinxOpts("", false, "4"); got != " -D plot_gallery=0 -j 4" {
		t.Errorf("sphinxOpts() = %q", got)
	}
}
