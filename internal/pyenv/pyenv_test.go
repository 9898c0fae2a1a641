// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	spinruntime "github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/internal/testutil"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "3.12.1\n", want: Version{3, 12, 1}},
		{in: "3.11", want: Version{3, 11, 0}},
		{in: "Python 3.13.0", want: Version{3, 13, 0}},
		{in: "not a version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseVersion() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVersion_String(t *testing.T) {
	if got := (Version{3, 12, 4}).String(); got != "3.12" {
		t.Errorf("String() = %q, want 3.12", got)
	}
}

func TestVersion_Satisfies(t *testing.T) {
	tests := []struct {
		v          Version
		constraint string
		want       bool
	}{
		{Version{3, 11, 0}, ">= 3.11", true},
		{Version{3, 10, 12}, ">= 3.11", false},
		{Version{3, 13, 1}, "~3.13", true},
	}

	for _, tt := range tests {
		got, err := tt.v.Satisfies(tt.constraint)
		if err != nil {
			t.Fatalf("Satisfies(%q) error = %v", tt.constraint, err)
		}
		if got != tt.want {
			t.Errorf("%v.Satisfies(%q) = %v, want %v", tt.v, tt.constraint, got, tt.want)
		}
	}

	if _, err := (Version{3, 12, 0}).Satisfies("not a constraint !!"); err == nil {
		t.Error("Satisfies() should reject an invalid constraint")
	}
}

func TestParseDirectURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"not json", "garbage", ""},
		{"not editable", `{"url": "file:///src/pkg", "dir_info": {}}`, ""},
		{"editable", `{"url": "file:///src/pkg", "dir_info": {"editable": true}}`, filepath.FromSlash("/src/pkg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseDirectURL(tt.in); got != tt.want {
				t.Errorf("parseDirectURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrependPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	tests := []struct {
		entry, list, want string
	}{
		{"/site", "", "/site"},
		{"", "/old", "/old"},
		{"/site", "/old", "/site" + sep + "/old"},
	}

	for _, tt := range tests {
		if got := PrependPath(tt.entry, tt.list); got != tt.want {
			t.Errorf("PrependPath(%q, %q) = %q, want %q", tt.entry, tt.list, got, tt.want)
		}
	}
}

func TestInterpreter_Queries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter is a shell script")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutil.MustMkdirAll(t, src)

	fake := filepath.Join(dir, "python")
	testutil.MustWriteFile(t, fake, `#!/bin/sh
case "$2" in
  *version_info*) echo "3.12.3" ;;
  *) echo '{"url": "file://`+src+`", "dir_info": {"editable": true}}' ;;
esac
`)
	if err := os.Chmod(fake, 0o755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	py := New(spinruntime.NewRunner(&out, &out), fake)

	v, err := py.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v != (Version{3, 12, 3}) {
		t.Errorf("Version() = %+v", v)
	}

	same, path, err := py.IsEditableInstallOf(context.Background(), "example-pkg", src)
	if err != nil {
		t.Fatalf("IsEditableInstallOf() error = %v", err)
	}
	if !same || path != src {
		t.Errorf("IsEditableInstallOf() = %v, %q", same, path)
	}

	if same, _, _ := py.IsEditableInstallOf(context.Background(), "example-pkg", dir); same {
		t.Error("a different directory should not match")
	}
	if out.Len() != 0 {
		t.Errorf("interpreter queries should not echo, got %q", out.String())
	}
}
