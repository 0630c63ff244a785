package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print status changes in the workspace as they happen",
	Long: `Scan the workspace, then watch it and print a line whenever a file is
checked out, checked in, added or removed. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	summary, err := a.resolver.ResolveWorkspace(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %s (%s)\n", a.root, summary)

	a.bus.Subscribe(event.TypeStatusChanged, func(e event.Event) {
		ev, ok := e.(event.StatusChangedEvent)
		if !ok {
			return
		}
		fmt.Fprintln(out, describeChange(a, ev))
	})

	w, err := watch.New(a.resolver, watch.Options{Bus: a.bus, Logger: a.logger})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	return nil
}

func describeChange(a *app, ev event.StatusChangedEvent) string {
	name := relPath(a.root, ev.Path)
	switch {
	case ev.Status == "":
		return fmt.Sprintf("%s removed", name)
	case ev.Status == "out" && a.self.Owns(ev.Owner):
		return fmt.Sprintf("%s checked out by you", name)
	case ev.Status == "out":
		return fmt.Sprintf("%s checked out by %s", name, ev.Owner)
	default:
		return fmt.Sprintf("%s %s", name, ev.Status)
	}
}
