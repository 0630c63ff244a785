package tui

import (
	"github.com/Iron-Ham/dwcheck/internal/checkout"
	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/status"
)

// recordsMsg asks the model to reload its rows from the status cache.
type recordsMsg struct{}

// scannedMsg is sent when a workspace scan completes.
type scannedMsg struct {
	summary status.Summary
	err     error
}

// resultMsg carries the outcome of an operation run in the background.
type resultMsg struct {
	result checkout.Result
	err    error
}

// notifyMsg is a notification raised by the service.
type notifyMsg struct {
	level prompt.Level
	text  string
}

// confirmMsg opens a confirmation dialog. The answer is sent on reply.
type confirmMsg struct {
	question prompt.Question
	reply    chan<- bool
}
