package cmd

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/dwcheck/internal/attr"
	"github.com/Iron-Ham/dwcheck/internal/checkout"
	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/identity"
	"github.com/Iron-Ham/dwcheck/internal/logging"
	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/remote"
	"github.com/Iron-Ham/dwcheck/internal/sentinel"
	"github.com/Iron-Ham/dwcheck/internal/status"
)

// Wrapper variables to allow testing
var (
	lookupUsername identity.LookupFunc = identity.OSUsername
	// dialOverride replaces the configured FTP/SFTP dialer when set.
	dialOverride remote.Dialer
	promptInput  *os.File = os.Stdin
)

// app holds everything a command needs for one workspace.
type app struct {
	cfg      *config.Config
	root     string
	self     identity.Identity
	logger   *logging.Logger
	bus      *event.Bus
	resolver *status.Resolver
	gateway  *remote.Gateway
	svc      *checkout.Service
	notifier prompt.Notifier
}

// newApp loads the configuration and wires the services. Notifications go to
// the command's output.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	root, err := cfg.ResolveRoot()
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errors.NewConfigError("workspace root is not a directory: "+root, err).WithKey("workspace.root")
	}

	self, err := identity.Resolve(cfg.Identity, lookupUsername)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, root)
	if err != nil {
		return nil, err
	}
	logger = logger.With("user", self.Username)

	bus := event.NewBus()
	fsys := afero.NewOsFs()
	store := sentinel.NewStore(fsys, logger)
	guard := attr.NewGuard(fsys)
	resolver := status.NewResolver(fsys, store, guard, status.Options{
		Root:    root,
		Exclude: cfg.Workspace.Exclude,
		Workers: cfg.Workspace.ResolveWorkers,
		Bus:     bus,
		Logger:  logger,
	})

	gwOpts := []remote.GatewayOption{remote.WithBus(bus), remote.WithLogger(logger)}
	if dialOverride != nil {
		gwOpts = append(gwOpts, remote.WithDialer(dialOverride))
	}
	gateway := remote.NewGateway(cfg.Server, root, gwOpts...)

	notifier := prompt.NewConsole(cmd.OutOrStdout(), !isTerminal(cmd.OutOrStdout()))
	svc := checkout.NewService(checkout.Deps{
		Fs:         fsys,
		Root:       root,
		Resolver:   resolver,
		Sentinels:  store,
		Guard:      guard,
		Transfers:  gateway,
		Identity:   self,
		Prompter:   prompt.New(promptMode(), promptInput, outFile(cmd)),
		Notifier:   notifier,
		Bus:        bus,
		Logger:     logger,
		PullPolicy: cfg.Checkout.Pull,
	})

	return &app{
		cfg:      cfg,
		root:     root,
		self:     self,
		logger:   logger,
		bus:      bus,
		resolver: resolver,
		gateway:  gateway,
		svc:      svc,
		notifier: notifier,
	}, nil
}

// Close flushes the log file.
func (a *app) Close() {
	_ = a.logger.Close()
}

func newLogger(cfg *config.Config, root string) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(logging.Options{
		Dir:        config.LogDir(root),
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}
	return logger, nil
}

func promptMode() prompt.Mode {
	switch {
	case viper.GetBool("yes"):
		return prompt.ModeYes
	case viper.GetBool("no"):
		return prompt.ModeNo
	default:
		return prompt.ModeAuto
	}
}

func outFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && prompt.IsTerminal(f)
}
