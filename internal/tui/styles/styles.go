// Package styles holds the lipgloss colors and styles shared by the explorer
// and the console notifier.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on dark backgrounds
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple
	SuccessColor = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	TextColor    = lipgloss.Color("#F9FAFB") // Light text
	BorderColor  = lipgloss.Color("#6B7280") // Gray
	SurfaceColor = lipgloss.Color("#1F2937") // Dark surface

	// Status colors
	StatusUnlocked = lipgloss.Color("#9CA3AF") // Gray
	StatusLocked   = lipgloss.Color("#60A5FA") // Blue
	OwnerSelf      = lipgloss.Color("#10B981") // Green
	OwnerOther     = lipgloss.Color("#F87171") // Red

	// Convenience styles for colors
	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Success = lipgloss.NewStyle().Foreground(SuccessColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)
	Text    = lipgloss.NewStyle().Foreground(TextColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Background(PrimaryColor).
		Padding(0, 1)

	Selected = lipgloss.NewStyle().
			Bold(true).
			Background(SurfaceColor)

	StatusBar = lipgloss.NewStyle().
			Foreground(MutedColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(BorderColor)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(WarningColor).
		Padding(1, 2)

	HelpKey  = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	HelpDesc = lipgloss.NewStyle().Foreground(MutedColor)
)

// Icons shown next to a file's name.
const (
	IconLocked   = "🔒"
	IconOut      = "✔"
	IconUnlocked = " "
	IconUnknown  = "?"
)

// StatusIcon returns the icon for a status name ("unlocked", "locked", "out").
// Unknown or unresolved statuses get IconUnknown.
func StatusIcon(status string) string {
	switch status {
	case "locked":
		return IconLocked
	case "out":
		return IconOut
	case "unlocked":
		return IconUnlocked
	default:
		return IconUnknown
	}
}

// StatusStyle returns the style used to render a status name.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "locked":
		return lipgloss.NewStyle().Foreground(StatusLocked)
	case "out":
		return lipgloss.NewStyle().Foreground(WarningColor)
	default:
		return lipgloss.NewStyle().Foreground(StatusUnlocked)
	}
}

// OwnerStyle colors an owner name green when it is the acting user and red otherwise.
func OwnerStyle(isSelf bool) lipgloss.Style {
	if isSelf {
		return lipgloss.NewStyle().Foreground(OwnerSelf).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(OwnerOther).Bold(true)
}
