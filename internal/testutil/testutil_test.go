package testutil

import (
	"io/fs"
	"path/filepath"
	"testing"
)

func TestSetupWorkspace(t *testing.T) {
	dir := SetupWorkspace(t, map[string]string{
		"index.html":   "<html></html>",
		"css/site.css": "body{}",
	})

	if got := ReadFile(t, filepath.Join(dir, "css", "site.css")); got != "body{}" {
		t.Errorf("site.css = %q", got)
	}
	SkipIfWindows(t)
	if got := Perm(t, filepath.Join(dir, "index.html")); got != 0644 {
		t.Errorf("mode = %v, want 0644", got)
	}
}

func TestMemWorkspace(t *testing.T) {
	fsys := MemWorkspace(t, "/ws", map[string]string{
		"a.txt":     "a",
		"sub/b.txt": "b",
	}, map[string]fs.FileMode{"a.txt": 0444})

	files := ListFiles(t, fsys, "/ws")
	if len(files) != 2 || files[0] != "a.txt" || files[1] != "sub/b.txt" {
		t.Fatalf("ListFiles() = %v", files)
	}
	info, err := fsys.Stat("/ws/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0444 {
		t.Errorf("mode = %v, want 0444", info.Mode().Perm())
	}
}
