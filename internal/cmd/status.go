package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/status"
	"github.com/Iron-Ham/dwcheck/internal/tui/styles"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var statusCmd = &cobra.Command{
	Use:   "status [file...]",
	Short: "Show the checkout status of files",
	Long: `Show the checkout status of files.

With file arguments the status of each file is read from disk. Without
arguments the whole workspace is scanned and every tracked file is listed.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringP("format", "f", formatText, "output format: text, json or yaml")
}

// statusEntry is the serialized form of one file's status.
type statusEntry struct {
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status" yaml:"status"`
	Owner  string `json:"owner,omitempty" yaml:"owner,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !slices.Contains([]string{formatText, formatJSON, formatYAML}, format) {
		return fmt.Errorf("invalid format %q: expected text, json or yaml", format)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		summary, err := a.resolver.ResolveWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		records := a.resolver.Records()
		if format == formatText {
			writeRecords(out, a, records)
			fmt.Fprintln(out, summary.String())
			return nil
		}
		return encodeRecords(out, format, a.root, records)
	}

	svc := a.svc
	if format != formatText {
		// Keep structured output clean; errors still reach stderr.
		svc = svc.WithNotifier(levelFilter{next: prompt.NewConsole(cmd.ErrOrStderr(), true), min: prompt.LevelWarning})
	}

	var records []status.Record
	var errs []error
	for _, p := range args {
		res, err := svc.Status(cmd.Context(), p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, res.Record)
	}
	if format != formatText {
		if err := encodeRecords(out, format, a.root, records); err != nil {
			return err
		}
	}
	if len(errs) > 0 {
		return errors.MarkReported(errors.Join(errs...))
	}
	return nil
}

// levelFilter drops notifications below min.
type levelFilter struct {
	next prompt.Notifier
	min  prompt.Level
}

func (f levelFilter) Notify(level prompt.Level, msg string) {
	if level >= f.min {
		f.next.Notify(level, msg)
	}
}

func writeRecords(w io.Writer, a *app, records []status.Record) {
	plain := !isTerminal(w)
	for _, rec := range records {
		st := statusName(rec)
		icon := styles.StatusIcon(st)
		name := relPath(a.root, rec.Path)
		owner := rec.Owner
		if !plain {
			icon = styles.StatusStyle(st).Render(icon)
			if owner != "" {
				owner = styles.OwnerStyle(a.self.Owns(owner)).Render(owner)
			}
		}
		line := fmt.Sprintf("%s %-8s %s", icon, st, name)
		if owner != "" {
			line += "  " + owner
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func encodeRecords(w io.Writer, format, root string, records []status.Record) error {
	entries := make([]statusEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, statusEntry{
			Path:   relPath(root, rec.Path),
			Status: statusName(rec),
			Owner:  rec.Owner,
		})
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}
	return nil
}

// statusName reports an entry that could not be read from disk as "unknown".
func statusName(rec status.Record) string {
	if !rec.Resolved {
		return statusUnknown
	}
	return rec.Status.String()
}

const statusUnknown = "unknown"

func relPath(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}
