// Package util provides small string helpers shared by the explorer and the
// command output.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks removed text.
const Ellipsis = "…"

// TruncateANSI truncates s to maxWidth visual columns, ending with Ellipsis.
// ANSI escape codes and wide characters are measured correctly.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// TruncatePath shortens a slash-separated path to maxWidth columns by dropping
// leading directories, so the file name stays visible: "…/css/main.css".
// A file name that alone is too wide is cut from the left.
func TruncatePath(p string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if ansi.StringWidth(p) <= maxWidth {
		return p
	}

	parts := strings.Split(p, "/")
	for i := 1; i < len(parts); i++ {
		candidate := Ellipsis + "/" + strings.Join(parts[i:], "/")
		if ansi.StringWidth(candidate) <= maxWidth {
			return candidate
		}
	}

	runes := []rune(parts[len(parts)-1])
	for i := range runes {
		tail := string(runes[i:])
		if ansi.StringWidth(tail)+1 <= maxWidth {
			return Ellipsis + tail
		}
	}
	return Ellipsis
}
