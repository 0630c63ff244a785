// Package tui implements the interactive workspace explorer: a list of tracked
// files with their status icons and owners, live updates from the watcher, and
// key bindings for every checkout operation.
package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dwcheck/internal/checkout"
	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/logging"
	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/watch"
)

// Options configures an App.
type Options struct {
	Bus    *event.Bus
	Logger *logging.Logger
	// Watch keeps the view in sync with changes made outside the explorer.
	Watch bool
}

// App wraps the Bubbletea program.
type App struct {
	program *tea.Program
	svc     *checkout.Service
	opts    Options
	ctx     context.Context
}

// New creates an explorer for svc. Confirmations and notifications raised by
// the service are shown inside the explorer.
func New(svc *checkout.Service, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Bus == nil {
		opts.Bus = event.NewBus()
	}
	a := &App{opts: opts}
	a.svc = svc.
		WithPrompter(prompt.Func(a.confirm)).
		WithNotifier(prompt.NotifierFunc(a.notify))
	return a
}

// Run starts the explorer and blocks until the user quits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.ctx = ctx

	a.program = tea.NewProgram(
		NewModel(ctx, a.svc),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			a.program.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	ids := a.opts.Bus.SubscribeMany(func(event.Event) {
		a.program.Send(recordsMsg{})
	}, event.TypeStatusChanged, event.TypeRefreshRequested)
	defer func() {
		for _, id := range ids {
			a.opts.Bus.Unsubscribe(id)
		}
	}()

	if a.opts.Watch {
		w, err := watch.New(a.svc.Resolver(), watch.Options{Bus: a.opts.Bus, Logger: a.opts.Logger})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			a.opts.Logger.Warn("live refresh disabled", "error", err.Error())
		}
		defer w.Stop()
	}

	_, err := a.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// confirm shows q in the explorer and waits for the answer.
func (a *App) confirm(ctx context.Context, q prompt.Question) (bool, error) {
	reply := make(chan bool, 1)
	a.program.Send(confirmMsg{question: q, reply: reply})
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-a.ctx.Done():
		return false, a.ctx.Err()
	}
}

func (a *App) notify(level prompt.Level, msg string) {
	a.opts.Logger.Debug("notification", "level", level.String(), "message", msg)
	a.program.Send(notifyMsg{level: level, text: msg})
}
