// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/testutil"
)

func TestBuild_FreshSetup(t *testing.T) {
	f := newFixture(t)

	if err := f.cc.Invoke(buildCmd, command.Args{"jobs": 4}); err != nil {
		t.Fatalf("build error = %v\n%s", err, f.out.String())
	}

	want := []string{
		"setup build --prefix=" + defaultPrefix(),
		"compile -j 4 -C build",
		"install --only-changed -C build --destdir " + filepath.Join("..", "build-install"),
	}
	if got := f.calls(t); !slices.Equal(got, want) {
		t.Errorf("meson calls = %q, want %q", got, want)
	}
	if !strings.Contains(f.out.String(), "$ meson setup build") {
		t.Errorf("setup should be echoed, got %q", f.out.String())
	}
}

func TestBuild_BuildDirFromEnvironment(t *testing.T) {
	f := newFixture(t)
	t.Cleanup(testutil.MustSetenv(t, "SPIN_BUILD_DIR", "build-debug"))

	if err := f.cc.Invoke(buildCmd, command.Args{}); err != nil {
		t.Fatalf("build error = %v\n%s", err, f.out.String())
	}
	if got := f.calls(t); len(got) == 0 || !strings.HasPrefix(got[0], "setup build-debug ") {
		t.Errorf("meson calls = %q, want setup of build-debug", got)
	}
}

func TestBuild_Reconfigure(t *testing.T) {
	tests := []struct {
		name       string
		installed  string
		configured string
		gcov       bool
		coverage   string
		wantSetup  bool
	}{
		{name: "same version", installed: "1.4.0", configured: "1.4.0"},
		{name: "meson upgraded", installed: "1.5.1", configured: "1.4.0", wantSetup: true},
		{name: "gcov not configured", installed: "1.4.0", configured: "1.4.0", gcov: true, wantSetup: true},
		{
			name: "gcov configured", installed: "1.4.0", configured: "1.4.0", gcov: true,
			coverage: `[{"name": "b_coverage", "value": true}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			t.Cleanup(testutil.MustSetenv(t, "FAKE_MESON_VERSION", tt.installed))
			testutil.MustWriteFile(t, filepath.Join(f.dir, "build", "meson-info", "meson-info.json"),
				`{"meson_version": {"full": "`+tt.configured+`"}}`)
			if tt.coverage != "" {
				testutil.MustWriteFile(t, filepath.Join(f.dir, "build", "meson-info", "intro-buildoptions.json"), tt.coverage)
			}

			if err := f.cc.Invoke(buildCmd, command.Args{"gcov": tt.gcov}); err != nil {
				t.Fatalf("build error = %v", err)
			}

			calls := f.calls(t)
			reconfigured := len(calls) > 0 && strings.HasPrefix(calls[0], "setup ") && strings.HasSuffix(calls[0], " --reconfigure")
			if reconfigured != tt.wantSetup {
				t.Errorf("reconfigured = %v, want %v (calls %q)", reconfigured, tt.wantSetup, calls)
			}
			if tt.gcov && reconfigured && !strings.Contains(calls[0], "-Db_coverage=true") {
				t.Errorf("setup should enable coverage: %q", calls[0])
			}
		})
	}
}

func TestBuild_SetupFailure(t *testing.T) {
	f := newFixture(t)
	t.Cleanup(testutil.MustSetenv(t, "FAKE_SETUP_FAIL", "1"))

	err := f.cc.Invoke(buildCmd, command.Args{})
	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("build error = %v, want *SetupError", err)
	}
	if len(f.calls(t)) != 1 {
		t.Errorf("nothing should run after a failed setup: %q", f.calls(t))
	}
}

func TestBuild_QuietCapturesOutput(t *testing.T) {
	f := newFixture(t)

	if err := f.cc.Invoke(buildCmd, command.Args{"quiet": true, "meson_args": []string{"-Dfoo=bar"}}); err != nil {
		t.Fatalf("build error = %v", err)
	}
	if got := f.calls(t)[0]; got != "setup build --prefix="+defaultPrefix()+" -Dfoo=bar" {
		t.Errorf("setup = %q", got)
	}
}

func TestBuild_Clean(t *testing.T) {
	f := newFixture(t)
	stale := filepath.Join(f.dir, "build-install", "stale.txt")
	testutil.MustWriteFile(t, stale, "x")

	if err := f.cc.Invoke(buildCmd, command.Args{"clean": true}); err != nil {
		t.Fatalf("build error = %v", err)
	}
	if !strings.Contains(f.out.String(), "Removing `build-install`") {
		t.Errorf("output = %q", f.out.String())
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale install should be removed, stat error = %v", err)
	}
}

func TestCompileArgs(t *testing.T) {
	tests := []struct {
		verbose bool
		jobs    int
		want    []string
	}{
		{want: []string{"meson", "compile", "-C", "b"}},
		{verbose: true, jobs: 8, want: []string{"meson", "compile", "-v", "-j", "8", "-C", "b"}},
	}
	for _, tt := range tests {
		if got := compileArgs([]string{"meson"}, "b", tt.verbose, tt.jobs); !slices.Equal(got, tt.want) {
			t.Errorf("compileArgs(%v, %d) = %q, want %q", tt.verbose, tt.jobs, got, tt.want)
		}
	}
}

func TestSameVersion(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.4.0", "1.4.0", true},
		{"1.4", "1.4.0", true},
		{"1.4.1", "1.4.0", false},
		{"", "1.4.0", false},
		{"weird", "weird", true},
	}
	for _, tt := range tests {
		if got := sameVersion(tt.a, tt.b); got != tt.want {
			t.Errorf("sameVersion(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestInstallDestDir(t *testing.T) {
	got, err := installDestDir("build", "build-install")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("..", "build-install"); got != want {
		t.Errorf("installDestDir() = %q, want %q", got, want)
	}

	abs := filepath.Join(t.TempDir(), "out-install")
	if got, _ := installDestDir("out", abs); got != abs {
		t.Errorf("absolute install dir should be kept, got %q", got)
	}
}
