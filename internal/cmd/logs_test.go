package cmd

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/logging"
	"github.com/Iron-Ham/dwcheck/internal/testutil"
)

const sampleLog = `{"time":"2026-03-01T10:00:00Z","level":"INFO","msg":"checked out","op":"checkout","path":"/ws/index.html","user":"alice"}
{"time":"2026-03-01T10:05:00Z","level":"WARN","msg":"lock file already gone","op":"checkin","path":"/ws/about.html"}
not json at all
{"time":"2026-03-01T10:06:00Z","level":"ERROR","msg":"put failed","op":"checkin","path":"/ws/about.html","error":"550 denied"}
`

func TestLogFilter(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 10, 0, 0, time.UTC)
	tests := []struct {
		name  string
		level string
		since string
		grep  string
		want  []string
	}{
		{"all", "", "", "", []string{"checked out", "lock file already gone", "not json", "put failed"}},
		{"warn and up", "warn", "", "", []string{"lock file already gone", "not json", "put failed"}},
		{"since", "", "6m", "", []string{"lock file already gone", "not json", "put failed"}},
		{"grep extra field", "", "", "550", []string{"not json", "put failed"}},
		{"grep path", "", "", `index\.html`, []string{"checked out", "not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newLogFilter(tt.level, tt.since, tt.grep, now)
			if err != nil {
				t.Fatalf("newLogFilter() error = %v", err)
			}
			var got []string
			for _, line := range strings.Split(sampleLog, "\n") {
				if s := formatLogLine(line, f); s != "" {
					got = append(got, s)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines, want %d:\n%s", len(got), len(tt.want), strings.Join(got, "\n"))
			}
			for i, w := range tt.want {
				if !strings.Contains(got[i], w) {
					t.Errorf("line %d = %q, want it to contain %q", i, got[i], w)
				}
			}
		})
	}
}

func TestLogFilter_Invalid(t *testing.T) {
	if _, err := newLogFilter("", "yesterday", "", time.Now()); err == nil {
		t.Error("expected an error for a bad duration")
	}
	if _, err := newLogFilter("", "", "(", time.Now()); err == nil {
		t.Error("expected an error for a bad pattern")
	}
}

func TestLogsCommand(t *testing.T) {
	root, _ := setupWorkspace(t, map[string]string{"index.html": "<html>"})
	testutil.WriteFile(t, filepath.Join(config.LogDir(root), logging.FileName), sampleLog, 0644)

	out, err := executeCommand(t, "logs", "-w", root, "--tail", "1")
	if err != nil {
		t.Fatalf("logs error = %v", err)
	}
	if !strings.Contains(out, "put failed") || strings.Contains(out, "checked out") {
		t.Errorf("output = %q, want only the last entry", out)
	}
}

func TestLogsCommand_NoFile(t *testing.T) {
	root, _ := setupWorkspace(t, nil)

	out, err := executeCommand(t, "logs", "-w", root)
	if err != nil {
		t.Fatalf("logs error = %v", err)
	}
	if !strings.Contains(out, "No log file") {
		t.Errorf("output = %q", out)
	}
}
