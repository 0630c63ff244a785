package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/dwcheck/internal/checkout"
	"github.com/Iron-Ham/dwcheck/internal/errors"
)

type opFunc func(svc *checkout.Service, ctx context.Context, path string) (checkout.Result, error)

type opDef struct {
	op    checkout.Op
	short string
	long  string
	run   opFunc
}

var opDefs = []opDef{
	{
		op:    checkout.OpCheckout,
		short: "Check files out: lock them for you and make them writable",
		long: `Check files out.

A <file>.LCK lock file naming you is written next to each file and the file is
made writable. If another user holds the checkout you are asked whether to
override it. Depending on checkout.pull the file is then downloaded from the
server (ask, always or never).`,
		run: (*checkout.Service).Checkout,
	},
	{
		op:    checkout.OpCheckin,
		short: "Check files in: release the lock, upload and make read-only",
		long: `Check files in.

The lock file is removed, the file is uploaded to the server and made
read-only. If another user holds the checkout you are asked whether to
override it.`,
		run: (*checkout.Service).Checkin,
	},
	{
		op:    checkout.OpPush,
		short: "Upload files without changing their lock state",
		long: `Upload files to the server.

A file can be pushed when it is checked out by you or not tracked at all.
Files checked out by someone else, or checked in, are refused.`,
		run: (*checkout.Service).Push,
	},
	{
		op:    checkout.OpPull,
		short: "Download files from the server",
		long: `Download files from the server, overwriting the local copy.

Pulling is always allowed and does not change lock state.`,
		run: (*checkout.Service).Pull,
	},
}

func registerOpCommands(parent *cobra.Command) {
	for _, def := range opDefs {
		parent.AddCommand(newOpCmd(def))
	}
}

func newOpCmd(def opDef) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <file>...", def.op),
		Short: def.short,
		Long:  def.long,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return runOp(cmd.Context(), a, def, args)
		},
	}
}

// runOp runs def on each path in turn. Every failure has already been shown
// by the service, so the returned error is marked as reported.
func runOp(ctx context.Context, a *app, def opDef, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(paths) == 0 {
		paths = []string{""}
	}

	var errs []error
	for _, p := range paths {
		res, err := def.run(a.svc, ctx, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, w := range res.Warnings {
			a.logger.Debug("operation warning", "op", string(def.op), "path", res.Path, "warning", w)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	// "No file specified." is informational only.
	if len(errs) == 1 && errors.Is(errs[0], errors.ErrNoFile) {
		return nil
	}
	return errors.MarkReported(errors.Join(errs...))
}
