package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/logging"
	"github.com/Iron-Ham/dwcheck/internal/tui/styles"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the workspace log",
	Long: `View and filter the dwcheck log for the current workspace.

Logging must be enabled (logging.enabled: true) for entries to be written.

Examples:
  # Last 50 entries
  dwcheck logs

  # Only warnings and errors from the last hour
  dwcheck logs --level warn --since 1h

  # Every checkin of a given file
  dwcheck logs -n 0 --grep 'checkin.*index\.html'`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail   int
	logsFollow bool
	logsLevel  string
	logsSince  string
	logsGrep   string
)

func init() {
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep printing new entries")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Only entries newer than this duration (e.g. 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Only entries matching this regular expression")
}

// logEntry is one parsed JSON log line.
type logEntry struct {
	Time  time.Time      `json:"time"`
	Level string         `json:"level"`
	Msg   string         `json:"msg"`
	Op    string         `json:"op,omitempty"`
	Path  string         `json:"path,omitempty"`
	Extra map[string]any `json:"-"`
}

func (e *logEntry) UnmarshalJSON(data []byte) error {
	type plain logEntry
	if err := json.Unmarshal(data, (*plain)(e)); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"time", "level", "msg", "op", "path"} {
		delete(all, k)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// logFilter selects which entries are printed.
type logFilter struct {
	minLevel int
	since    time.Time
	pattern  *regexp.Regexp
}

var levelOrder = []string{logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError}

func levelRank(level string) int {
	return slices.Index(levelOrder, strings.ToUpper(level))
}

func newLogFilter(level, since, grep string, now time.Time) (logFilter, error) {
	f := logFilter{minLevel: -1}
	if level != "" {
		f.minLevel = levelRank(logging.ParseLevel(strings.ToUpper(level)))
	}
	if since != "" {
		d, err := time.ParseDuration(since)
		if err != nil {
			return f, fmt.Errorf("invalid --since duration: %w", err)
		}
		f.since = now.Add(-d)
	}
	if grep != "" {
		re, err := regexp.Compile(grep)
		if err != nil {
			return f, fmt.Errorf("invalid --grep pattern: %w", err)
		}
		f.pattern = re
	}
	return f, nil
}

func (f logFilter) match(e *logEntry) bool {
	if f.minLevel >= 0 && levelRank(e.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && e.Time.Before(f.since) {
		return false
	}
	if f.pattern != nil {
		text := strings.Join([]string{e.Msg, e.Op, e.Path}, " ")
		for _, v := range e.Extra {
			text += fmt.Sprintf(" %v", v)
		}
		if !f.pattern.MatchString(text) {
			return false
		}
	}
	return true
}

func levelStyle(level string) func(...string) string {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return styles.Muted.Render
	case logging.LevelWarn:
		return styles.Warning.Render
	case logging.LevelError:
		return styles.Error.Render
	default:
		return styles.Primary.Render
	}
}

func formatLogEntry(e *logEntry) string {
	var sb strings.Builder
	sb.WriteString(styles.Muted.Render("[" + e.Time.Local().Format("2006-01-02 15:04:05") + "]"))
	sb.WriteString(" ")
	sb.WriteString(levelStyle(e.Level)(fmt.Sprintf("%-5s", strings.ToUpper(e.Level))))
	sb.WriteString(" ")
	if e.Op != "" {
		sb.WriteString(e.Op + ": ")
	}
	sb.WriteString(e.Msg)
	if e.Path != "" {
		sb.WriteString(" " + styles.Muted.Render(e.Path))
	}

	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sb.WriteString(styles.Muted.Render(fmt.Sprintf(" %s=%v", k, e.Extra[k])))
	}
	return sb.String()
}

// formatLogLine renders a raw line, or "" when the entry is filtered out.
// Lines that are not JSON are passed through.
func formatLogLine(line string, f logFilter) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	var e logEntry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return line
	}
	if !f.match(&e) {
		return ""
	}
	return formatLogEntry(&e)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	root, err := cfg.ResolveRoot()
	if err != nil {
		return err
	}
	logPath := filepath.Join(config.LogDir(root), logging.FileName)

	out := cmd.OutOrStdout()
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No log file at %s\n", logPath)
		if !cfg.Logging.Enabled {
			fmt.Fprintln(out, "Logging is disabled. Enable it with logging.enabled: true")
		}
		return nil
	}

	filter, err := newLogFilter(logsLevel, logsSince, logsGrep, time.Now())
	if err != nil {
		return err
	}

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if err := printLogTail(out, f, logsTail, filter); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return followLog(ctx, out, f, filter)
}

// printLogTail prints the last tail matching entries of r (all when tail <= 0).
func printLogTail(out io.Writer, r io.Reader, tail int, f logFilter) error {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if s := formatLogLine(scanner.Text(), f); s != "" {
			lines = append(lines, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "No matching log entries.")
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	return nil
}

// followLog polls r for appended lines until ctx is done.
func followLog(ctx context.Context, out io.Writer, r io.Reader, f logFilter) error {
	reader := bufio.NewReader(r)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var partial string
	for {
		line, err := reader.ReadString('\n')
		partial += line
		if err == nil {
			if s := formatLogLine(partial, f); s != "" {
				fmt.Fprintln(out, s)
			}
			partial = ""
			continue
		}
		if err != io.EOF {
			return fmt.Errorf("error reading log file: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
