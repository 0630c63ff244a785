package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the explorer key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Checkout key.Binding
	Checkin  key.Binding
	Push     key.Binding
	Pull     key.Binding
	Status   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding

	// Confirmation dialog
	Yes key.Binding
	No  key.Binding
}

// DefaultKeyMap returns the default explorer bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "check out"),
		),
		Checkin: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "check in"),
		),
		Push: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "push"),
		),
		Pull: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "pull"),
		),
		Status: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "status"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Checkout, k.Checkin, k.Push, k.Pull, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Checkout, k.Checkin, k.Push, k.Pull},
		{k.Status, k.Refresh, k.Help, k.Quit},
	}
}

// dialogKeys is the help shown while a confirmation is open.
type dialogKeys struct{ yes, no key.Binding }

func (d dialogKeys) ShortHelp() []key.Binding  { return []key.Binding{d.yes, d.no} }
func (d dialogKeys) FullHelp() [][]key.Binding { return [][]key.Binding{d.ShortHelp()} }
