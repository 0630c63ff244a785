// Package testutil provides testing utilities for dwcheck tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// SetupWorkspace creates a temporary workspace directory populated with files.
// The files map contains slash-separated relative paths to file contents. The
// workspace is removed when the test completes.
func SetupWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	// Resolve symlinks so paths compare equal to what the walker reports (macOS /var → /private/var).
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	for rel, content := range files {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content, 0644)
	}
	return dir
}

// WriteFile writes content to path with the given permissions, creating parent
// directories as needed. The mode is applied explicitly so the umask does not
// interfere.
func WriteFile(t *testing.T, path, content string, mode fs.FileMode) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("failed to chmod %s: %v", path, err)
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Perm returns the permission bits of path or fails the test.
func Perm(t *testing.T, path string) fs.FileMode {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	return info.Mode().Perm()
}

// MemWorkspace returns an in-memory filesystem holding files under root.
// Values in modes override the default 0644 for the matching relative path.
func MemWorkspace(t *testing.T, root string, files map[string]string, modes map[string]fs.FileMode) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		mode, ok := modes[rel]
		if !ok {
			mode = 0644
		}
		if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fsys, path, []byte(content), mode); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
		if err := fsys.Chmod(path, mode); err != nil {
			t.Fatalf("failed to chmod %s: %v", path, err)
		}
	}
	return fsys
}

// ListFiles returns the sorted slash-separated relative paths of every regular
// file under root.
func ListFiles(t *testing.T, fsys afero.Fs, root string) []string {
	t.Helper()

	var out []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk %s: %v", root, err)
	}
	sort.Strings(out)
	return out
}

// SkipIfRoot skips tests that rely on permission bits being enforced.
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "windows" && os.Geteuid() == 0 {
		t.Skip("permission checks are not enforced for root")
	}
}

// SkipIfWindows skips tests that depend on POSIX permission bits.
func SkipIfWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permission bits are not available on windows")
	}
}
