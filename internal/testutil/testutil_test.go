// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteTree(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"a/b/file.txt":  "hello",
		"empty/dir/":    "",
		"top-level.txt": "x",
	})

	data, err := os.ReadFile(filepath.Join(root, "a", "b", "file.txt"))
	if err != nil || string(data) != "hello" {
		t.Errorf("a/b/file.txt = %q, %v", data, err)
	}

	info, err := os.Stat(filepath.Join(root, "empty", "dir"))
	if err != nil || !info.IsDir() {
		t.Errorf("empty/dir should be a directory: %v", err)
	}
}

func TestMustSetenv_Restores(t *testing.T) {
	const key = "SPIN_TESTUTIL_VAR"
	restore := MustUnsetenv(t, key)
	defer restore()

	cleanup := MustSetenv(t, key, "1")
	if got := os.Getenv(key); got != "1" {
		t.Fatalf("Getenv = %q, want 1", got)
	}
	cleanup()

	if _, ok := os.LookupEnv(key); ok {
		t.Error("variable should be unset after cleanup")
	}
}
