package prompt

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/dwcheck/internal/tui/styles"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, msg string)

// Notify calls f.
func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

// Console writes one styled line per notification.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	plain bool
}

// NewConsole creates a Console on out. When plain is true no ANSI styling is
// applied, for pipes and tests.
func NewConsole(out io.Writer, plain bool) *Console {
	return &Console{out: out, plain: plain}
}

// Notify writes msg with a level prefix.
func (c *Console) Notify(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix, style := "", lipgloss.NewStyle()
	switch level {
	case LevelWarning:
		prefix, style = "warning: ", styles.Warning
	case LevelError:
		prefix, style = "error: ", styles.Error
	}
	line := prefix + msg
	if !c.plain && level != LevelInfo {
		line = style.Render(line)
	}
	fmt.Fprintln(c.out, line)
}

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Notify records the message.
func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: msg})
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Reset clears the recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
