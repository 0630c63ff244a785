package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dwcheck/internal/checkout"
	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/status"
)

// chromeLines is the number of lines taken by the header, status bar and help.
const chromeLines = 6

// Model is the Bubbletea model of the workspace explorer.
type Model struct {
	ctx  context.Context
	svc  *checkout.Service
	keys KeyMap
	help help.Model

	records []status.Record
	cursor  int
	offset  int

	width  int
	height int

	busy     checkout.Op
	scanning bool
	summary  status.Summary
	confirm  *confirmMsg
	message  *notifyMsg
	quitting bool
}

// NewModel creates an explorer over the service's workspace. The service should
// already report through the explorer (see App).
func NewModel(ctx context.Context, svc *checkout.Service) Model {
	m := Model{
		ctx:  ctx,
		svc:  svc,
		keys: DefaultKeyMap(),
		help: help.New(),
	}
	m.reload()
	return m
}

// Init starts the first workspace scan.
func (m Model) Init() tea.Cmd {
	return m.scan()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case recordsMsg:
		m.reload()
		return m, nil

	case scannedMsg:
		m.scanning = false
		m.summary = msg.summary
		if msg.err != nil {
			m.message = &notifyMsg{level: prompt.LevelError, text: "refresh failed: " + msg.err.Error()}
		}
		m.reload()
		return m, nil

	case resultMsg:
		m.busy = ""
		m.reload()
		return m, nil

	case notifyMsg:
		m.message = &msg
		return m, nil

	case confirmMsg:
		m.confirm = &msg
		return m, nil

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.handleDialogKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.answer(true)
	case key.Matches(msg, m.keys.No), msg.String() == "ctrl+c":
		m.answer(false)
	}
	return m, nil
}

func (m *Model) answer(ok bool) {
	m.confirm.reply <- ok
	m.confirm = nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Top):
		m.move(-len(m.records))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(m.records))

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.ensureVisible()

	case key.Matches(msg, m.keys.Refresh):
		if m.scanning {
			return m, nil
		}
		m.scanning = true
		return m, m.scan()

	case key.Matches(msg, m.keys.Checkout):
		return m.run(checkout.OpCheckout, m.svc.Checkout)
	case key.Matches(msg, m.keys.Checkin):
		return m.run(checkout.OpCheckin, m.svc.Checkin)
	case key.Matches(msg, m.keys.Push):
		return m.run(checkout.OpPush, m.svc.Push)
	case key.Matches(msg, m.keys.Pull):
		return m.run(checkout.OpPull, m.svc.Pull)
	case key.Matches(msg, m.keys.Status):
		return m.run(checkout.OpStatus, m.svc.Status)
	}
	return m, nil
}

type opFunc func(ctx context.Context, path string) (checkout.Result, error)

// run starts op on the selected file in the background. Only one operation
// runs at a time.
func (m Model) run(op checkout.Op, fn opFunc) (tea.Model, tea.Cmd) {
	if m.busy != "" {
		m.message = &notifyMsg{level: prompt.LevelWarning, text: fmt.Sprintf("%s in progress", m.busy)}
		return m, nil
	}
	path := m.selectedPath()
	m.busy = op
	ctx := m.ctx
	return m, func() tea.Msg {
		res, err := fn(ctx, path)
		return resultMsg{result: res, err: err}
	}
}

func (m Model) scan() tea.Cmd {
	resolver := m.svc.Resolver()
	ctx := m.ctx
	return func() tea.Msg {
		summary, err := resolver.ResolveWorkspace(ctx)
		return scannedMsg{summary: summary, err: err}
	}
}

// reload copies the cache into the rows, keeping the selection on the same
// file when it still exists.
func (m *Model) reload() {
	selected := m.selectedPath()
	m.records = m.svc.Resolver().Records()

	m.cursor = min(m.cursor, max(len(m.records)-1, 0))
	for i, rec := range m.records {
		if rec.Path == selected {
			m.cursor = i
			break
		}
	}
	m.ensureVisible()
}

func (m *Model) move(delta int) {
	if len(m.records) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.records)-1, m.cursor+delta))
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(0, min(m.offset, max(len(m.records)-rows, 0)))
}

func (m Model) visibleRows() int {
	extra := 0
	if m.help.ShowAll {
		extra = len(m.keys.FullHelp()[0]) - 1
	}
	if m.height == 0 {
		return max(len(m.records), 1)
	}
	return max(m.height-chromeLines-extra, 1)
}

func (m Model) selectedPath() string {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return ""
	}
	return m.records[m.cursor].Path
}

// Selected returns the record under the cursor.
func (m Model) Selected() (status.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return status.Record{}, false
	}
	return m.records[m.cursor], true
}
