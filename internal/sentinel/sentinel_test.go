package sentinel

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/dwcheck/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Sentinel
	}{
		{"owner and contact", "rchisholm||rchisholm@example.org", Sentinel{"rchisholm", "rchisholm@example.org"}},
		{"no delimiter", "alice", Sentinel{Owner: "alice"}},
		{"empty", "", Sentinel{}},
		{"extra delimiters kept in contact", "bob||a||b", Sentinel{"bob", "a||b"}},
		{"whitespace trimmed", "  carol \n||carol@x.org\n", Sentinel{"carol", "carol@x.org"}},
		{"empty owner", "||nobody@x.org", Sentinel{Contact: "nobody@x.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.content); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.content, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if got := Format("rchisholm", "rchisholm@example.org"); got != "rchisholm||rchisholm@example.org" {
		t.Errorf("Format() = %q", got)
	}
}

func TestPathAndIsSentinel(t *testing.T) {
	if got := Path("/ws/index.html"); got != "/ws/index.html.LCK" {
		t.Errorf("Path() = %q", got)
	}
	if !IsSentinel("/ws/index.html.LCK") {
		t.Error("IsSentinel(.LCK) = false")
	}
	if IsSentinel("/ws/index.html") {
		t.Error("IsSentinel(.html) = true")
	}
}

func TestStore_CreateReadDelete(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := NewStore(fsys, nil)
	file := "/ws/index.html"

	if _, ok := store.Read(file); ok {
		t.Fatal("Read() found a sentinel before Create")
	}

	if err := store.Create(file, "rchisholm", "rchisholm@example.org"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	raw, err := afero.ReadFile(fsys, "/ws/index.html.LCK")
	if err != nil {
		t.Fatalf("sentinel not written: %v", err)
	}
	if string(raw) != "rchisholm||rchisholm@example.org" {
		t.Errorf("content = %q, want exact format with no newline", raw)
	}

	got, ok := store.Read(file)
	if !ok || got.Owner != "rchisholm" {
		t.Errorf("Read() = %+v, %v", got, ok)
	}
	if !store.Exists(file) {
		t.Error("Exists() = false after Create")
	}

	if err := store.Delete(file); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Exists(file) {
		t.Error("Exists() = true after Delete")
	}
}

func TestStore_CreateOverwrites(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), nil)
	file := "/ws/a.txt"

	if err := store.Create(file, "alice", "alice@x.org"); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(file, "bob", "bob@x.org"); err != nil {
		t.Fatal(err)
	}

	got, _ := store.Read(file)
	if got != (Sentinel{"bob", "bob@x.org"}) {
		t.Errorf("Read() = %+v, want bob's sentinel", got)
	}
}

func TestStore_DeleteMissing(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), nil)

	err := store.Delete("/ws/missing.txt")
	if !errors.Is(err, errors.ErrSentinelNotFound) {
		t.Fatalf("Delete() error = %v, want ErrSentinelNotFound", err)
	}
	if errors.GetSeverity(err) != errors.SeverityWarning {
		t.Errorf("severity = %v, want warning", errors.GetSeverity(err))
	}
}

func TestStore_CreateFailure(t *testing.T) {
	store := NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), nil)

	err := store.Create("/ws/a.txt", "alice", "alice@x.org")
	var sentErr *errors.SentinelError
	if !errors.As(err, &sentErr) {
		t.Fatalf("Create() error = %v, want *SentinelError", err)
	}
	if sentErr.Op != "create" || sentErr.Path != "/ws/a.txt" {
		t.Errorf("SentinelError = %+v", sentErr)
	}
}
