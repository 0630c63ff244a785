package status

import (
	"context"
	"testing"

	"github.com/Iron-Ham/dwcheck/internal/testutil"
)

func TestWalker_Walk(t *testing.T) {
	fsys := testutil.MemWorkspace(t, root, map[string]string{
		"index.html":              "",
		"index.html.LCK":          "",
		"img/logo.png":            "",
		"img/logo.psd":            "",
		"img/_notes/dwsync.xml":   "",
		"node_modules/x/index.js": "",
		"CVS/Entries":             "",
		".svn/entries":            "",
		"drafts/old.html":         "",
	}, nil)

	w := NewWalker(fsys, root, []string{"*.psd", "node_modules", "drafts/*"})
	files, err := w.Walk(context.Background())
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := []string{"/ws/img/logo.png", "/ws/index.html"}
	if len(files) != len(want) {
		t.Fatalf("Walk() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestWalker_Excluded(t *testing.T) {
	w := NewWalker(nil, "/ws", []string{"*.bak"})

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"/ws/a.html", false, false},
		{"/ws/a.html.LCK", false, true},
		{"/ws/dwsync.xml", false, true},
		{"/ws/sub/_notes", true, true},
		{"/ws/.git", true, true},
		{"/ws/.dwcheck/logs/dwcheck.log", false, true},
		{"/ws/a.bak", false, true},
		{"/ws/old.bak/keep.html", false, true},
		{"/other/a.html", false, true},
		{"/ws/sub", true, false},
	}
	for _, tt := range tests {
		if got := w.Excluded(tt.path, tt.isDir); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWalker_MissingRoot(t *testing.T) {
	fsys := testutil.MemWorkspace(t, root, nil, nil)
	w := NewWalker(fsys, "/nowhere", nil)
	if _, err := w.Walk(context.Background()); err == nil {
		t.Error("Walk() on a missing root should fail")
	}
}

func TestSummary_String(t *testing.T) {
	s := Summary{Total: 4, Unlocked: 1, Locked: 2, Out: 1}
	if got := s.String(); got != "4 files: 1 unlocked, 2 locked, 1 checked out" {
		t.Errorf("String() = %q", got)
	}
	s.Failed = 2
	if got := s.String(); got != "4 files: 1 unlocked, 2 locked, 1 checked out, 2 failed" {
		t.Errorf("String() with failures = %q", got)
	}
}
