package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/status"
	"github.com/Iron-Ham/dwcheck/internal/tui/styles"
	"github.com/Iron-Ham/dwcheck/internal/util"
)

// View renders the explorer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.confirm != nil {
		b.WriteString(m.renderDialog())
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderRows())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	if m.confirm != nil {
		b.WriteString(m.help.View(dialogKeys{yes: m.keys.Yes, no: m.keys.No}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := fmt.Sprintf("dwcheck  %s", m.svc.Root())
	user := styles.Muted.Render("user: ") + styles.OwnerStyle(true).Render(m.svc.Identity().Username)
	header := styles.Header.Render(title)
	if m.width == 0 {
		return header + "  " + user
	}
	gap := max(m.width-lipgloss.Width(header)-lipgloss.Width(user), 2)
	return header + strings.Repeat(" ", gap) + user
}

func (m Model) renderRows() string {
	if len(m.records) == 0 {
		if m.scanning {
			return styles.Muted.Render("Scanning workspace...") + "\n"
		}
		return styles.Muted.Render("No files.") + "\n"
	}

	var b strings.Builder
	end := min(m.offset+m.visibleRows(), len(m.records))
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.records[i])
		if i == m.cursor {
			line = styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderRow draws one file: icon, path relative to the root and the owner of
// a checked-out file.
func (m Model) renderRow(rec status.Record) string {
	st := string(rec.Status)
	if !rec.Resolved {
		st = ""
	}
	icon := styles.StatusStyle(st).Render(styles.StatusIcon(st))

	name := rec.Path
	if rel, err := filepath.Rel(m.svc.Root(), rec.Path); err == nil {
		name = filepath.ToSlash(rel)
	}

	var owner string
	if rec.Status == status.Out && rec.Resolved {
		self := m.svc.Identity().Owns(rec.Owner)
		owner = "  " + styles.OwnerStyle(self).Render(rec.Owner)
	}

	// 2 for the cursor column, 2 for the icon.
	if m.width > 0 {
		name = util.TruncatePath(name, max(m.width-4-lipgloss.Width(owner), 8))
	}
	return icon + " " + styles.StatusStyle(st).Render(name) + owner
}

func (m Model) renderDialog() string {
	q := m.confirm.question
	yes := q.Affirmative
	if yes == "" {
		yes = "Yes"
	}
	no := q.Negative
	if no == "" {
		no = "No"
	}

	title := q.Title
	if m.width > 0 {
		title = util.TruncateANSI(title, max(m.width-6, 20))
	}
	body := styles.Text.Bold(true).Render(title)
	if q.Description != "" {
		body += "\n" + styles.Muted.Render(q.Description)
	}
	body += "\n\n" + styles.HelpKey.Render("[y] ") + yes + "   " + styles.HelpKey.Render("[n] ") + no
	return styles.Dialog.Render(body)
}

func (m Model) renderStatusBar() string {
	var text string
	switch {
	case m.busy != "":
		text = styles.Primary.Render(fmt.Sprintf("%s...", m.busy))
	case m.message != nil:
		text = renderMessage(*m.message)
	case m.scanning:
		text = styles.Muted.Render("refreshing...")
	default:
		text = styles.Muted.Render(m.summary.String())
	}
	bar := styles.StatusBar
	if m.width > 0 {
		bar = bar.Width(m.width)
	}
	return bar.Render(text)
}

func renderMessage(n notifyMsg) string {
	switch n.level {
	case prompt.LevelError:
		return styles.Error.Render(n.text)
	case prompt.LevelWarning:
		return styles.Warning.Render(n.text)
	default:
		return styles.Success.Render(n.text)
	}
}
