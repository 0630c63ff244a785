package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/dwcheck/internal/tui"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse the workspace and check files out and in interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return tui.New(a.svc, tui.Options{
			Bus:    a.bus,
			Logger: a.logger,
			Watch:  a.cfg.TUI.Watch,
		}).Run(ctx)
	},
}
