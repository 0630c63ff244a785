package checkout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/dwcheck/internal/attr"
	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/identity"
	"github.com/Iron-Ham/dwcheck/internal/logging"
	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/sentinel"
	"github.com/Iron-Ham/dwcheck/internal/status"
)

// Transfers moves file contents to and from the server. *remote.Gateway
// implements it.
type Transfers interface {
	Check() error
	Get(ctx context.Context, local string) error
	Put(ctx context.Context, local string) error
}

// Deps holds the collaborators of a Service.
type Deps struct {
	// Fs is the local filesystem. Defaults to the OS filesystem.
	Fs        afero.Fs
	Root      string
	Resolver  *status.Resolver
	Sentinels *sentinel.Store
	Guard     *attr.Guard
	Transfers Transfers
	Identity  identity.Identity
	Prompter  prompt.Prompter
	Notifier  prompt.Notifier
	Bus       *event.Bus
	Logger    *logging.Logger
	// PullPolicy is one of config.PullAsk, config.PullAlways, config.PullNever.
	PullPolicy string
}

// Service runs checkout, checkin, push, pull and status for one workspace.
type Service struct {
	fs        afero.Fs
	root      string
	resolver  *status.Resolver
	sentinels *sentinel.Store
	guard     *attr.Guard
	transfers Transfers
	self      identity.Identity
	prompter  prompt.Prompter
	notifier  prompt.Notifier
	bus       *event.Bus
	logger    *logging.Logger
	pull      string
}

// NewService creates a Service. Nil Prompter, Notifier and Logger default to
// "always no", a discarding notifier and a no-op logger.
func NewService(d Deps) *Service {
	s := &Service{
		fs:        d.Fs,
		root:      filepath.Clean(d.Root),
		resolver:  d.Resolver,
		sentinels: d.Sentinels,
		guard:     d.Guard,
		transfers: d.Transfers,
		self:      d.Identity,
		prompter:  d.Prompter,
		notifier:  d.Notifier,
		bus:       d.Bus,
		logger:    d.Logger,
		pull:      d.PullPolicy,
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.prompter == nil {
		s.prompter = prompt.Static(false)
	}
	if s.notifier == nil {
		s.notifier = prompt.NotifierFunc(func(prompt.Level, string) {})
	}
	if s.logger == nil {
		s.logger = logging.NopLogger()
	}
	if s.pull == "" {
		s.pull = config.PullAsk
	}
	return s
}

// As returns a copy of s acting as id.
func (s *Service) As(id identity.Identity) *Service {
	c := *s
	c.self = id
	return &c
}

// WithPrompter returns a copy of s that asks p instead.
func (s *Service) WithPrompter(p prompt.Prompter) *Service {
	c := *s
	c.prompter = p
	return &c
}

// WithNotifier returns a copy of s that reports to n instead.
func (s *Service) WithNotifier(n prompt.Notifier) *Service {
	c := *s
	c.notifier = n
	return &c
}

// Identity returns the acting user.
func (s *Service) Identity() identity.Identity { return s.self }

// Root returns the workspace root.
func (s *Service) Root() string { return s.root }

// Resolver returns the status resolver.
func (s *Service) Resolver() *status.Resolver { return s.resolver }

// Checkout claims path for the acting user.
func (s *Service) Checkout(ctx context.Context, path string) (Result, error) {
	res, rec, logger, err := s.begin(OpCheckout, path)
	if err != nil {
		return res, err
	}
	name := s.displayName(res.Path)

	if rec.Status == status.Out && s.self.Owns(rec.Owner) {
		s.notifier.Notify(prompt.LevelWarning, fmt.Sprintf("%s is already checked out by you.", name))
		res.Outcome = OutcomeNoop
		return res, nil
	}
	if s.pull == config.PullAlways {
		if err := s.transfers.Check(); err != nil {
			return s.fail(res, logger, err)
		}
	}

	if rec.Status == status.Out {
		ok, err := s.confirmOverride(ctx, name, rec.Owner)
		if err != nil || !ok {
			return s.canceled(res, logger, err)
		}
		// The new lock file replaces theirs in place, so a failed create
		// leaves their checkout intact.
		logger.Info("overriding checkout", "previous_owner", rec.Owner)
	}
	return s.proceedCheckout(ctx, res, logger)
}

// proceedCheckout writes the lock file, updates the cache, makes the file
// writable and optionally pulls it.
func (s *Service) proceedCheckout(ctx context.Context, res Result, logger *logging.Logger) (Result, error) {
	name := s.displayName(res.Path)

	if err := s.sentinels.Create(res.Path, s.self.Username, s.self.Email); err != nil {
		if rec, resolveErr := s.resolver.ResolveOne(res.Path); resolveErr == nil {
			res.Record = rec
		}
		return s.fail(res, logger, err)
	}
	res.Record = s.resolver.Set(res.Path, status.Out, s.self.Username)

	if err := s.guard.ClearReadOnly(res.Path); err != nil {
		logger.Error("failed to make file writable", "error", err.Error())
		s.notifier.Notify(prompt.LevelError, errors.UserMessage(err))
		res.warn(err.Error())
	}

	pullErr := s.pullAfterCheckout(ctx, &res, logger)

	res.Outcome = OutcomeDone
	s.bus.Publish(event.NewRefreshRequestedEvent(res.Path, string(OpCheckout)))
	s.notifier.Notify(prompt.LevelInfo, fmt.Sprintf("%s checked out.", name))
	logger.Info("checked out", "owner", s.self.Username, "pulled", res.Pulled)
	return res, pullErr
}

func (s *Service) pullAfterCheckout(ctx context.Context, res *Result, logger *logging.Logger) error {
	name := s.displayName(res.Path)

	switch s.pull {
	case config.PullNever:
		return nil
	case config.PullAsk:
		if err := s.transfers.Check(); err != nil {
			logger.Debug("skipping pull question", "reason", err.Error())
			return nil
		}
		ok, err := s.prompter.Confirm(ctx, prompt.Question{
			Title:       fmt.Sprintf("Get %s from remote server?", name),
			Affirmative: "Yes",
			Negative:    "No",
		})
		if err != nil {
			logger.Warn("pull question aborted", "error", err.Error())
			res.warn("pull skipped: " + err.Error())
			return nil
		}
		if !ok {
			return nil
		}
	}

	if err := s.transfers.Get(ctx, res.Path); err != nil {
		s.notifier.Notify(prompt.LevelError, errors.UserMessage(err))
		return err
	}
	res.Pulled = true
	return nil
}

// Checkin releases path, uploads it and makes it read-only.
func (s *Service) Checkin(ctx context.Context, path string) (Result, error) {
	res, rec, logger, err := s.begin(OpCheckin, path)
	if err != nil {
		return res, err
	}
	name := s.displayName(res.Path)

	switch {
	case rec.Status == status.Locked:
		s.notifier.Notify(prompt.LevelWarning, fmt.Sprintf("%s is locked. Already checked in.", name))
		res.Outcome = OutcomeNoop
		return res, nil
	case rec.Status == status.Out && !s.self.Owns(rec.Owner):
		ok, err := s.confirmOverride(ctx, name, rec.Owner)
		if err != nil || !ok {
			return s.canceled(res, logger, err)
		}
		logger.Info("overriding checkout", "previous_owner", rec.Owner)
	}

	if err := s.transfers.Check(); err != nil {
		return s.fail(res, logger, err)
	}
	return s.proceedCheckin(ctx, res, logger)
}

// proceedCheckin removes the lock file, updates the cache, uploads the file and
// makes it read-only. A failed upload does not undo the local steps.
func (s *Service) proceedCheckin(ctx context.Context, res Result, logger *logging.Logger) (Result, error) {
	name := s.displayName(res.Path)

	if err := s.sentinels.Delete(res.Path); err != nil {
		s.recordSentinelDeleteError(&res, logger, err)
	}
	res.Record = s.resolver.Set(res.Path, status.Locked, "")

	putErr := s.transfers.Put(ctx, res.Path)
	if putErr != nil {
		s.notifier.Notify(prompt.LevelError, errors.UserMessage(putErr))
	} else {
		res.Pushed = true
	}

	var roErr error
	if err := s.guard.SetReadOnly(res.Path); err != nil {
		roErr = err
		logger.Error("failed to set read-only", "error", err.Error())
		s.notifier.Notify(prompt.LevelError, errors.UserMessage(err))
		res.warn(err.Error())
	}

	res.Outcome = OutcomeDone
	s.bus.Publish(event.NewRefreshRequestedEvent(res.Path, string(OpCheckin)))
	s.notifier.Notify(prompt.LevelInfo, fmt.Sprintf("%s checked in.", name))
	logger.Info("checked in", "pushed", res.Pushed)

	if putErr != nil {
		return res, putErr
	}
	return res, roErr
}

// Push uploads path without changing its lock state.
func (s *Service) Push(ctx context.Context, path string) (Result, error) {
	res, rec, logger, err := s.begin(OpPush, path)
	if err != nil {
		return res, err
	}
	name := s.displayName(res.Path)

	switch {
	case rec.Status == status.Out && !s.self.Owns(rec.Owner):
		err := errors.NewBlockedError(string(OpPush), res.Path, errors.ErrCheckedOutByOther).WithOwner(rec.Owner)
		return s.blocked(res, logger, err,
			fmt.Sprintf("%s is checked out by %s. Please check file out to push.", name, rec.Owner))
	case rec.Status == status.Locked:
		err := errors.NewBlockedError(string(OpPush), res.Path, errors.ErrLocked)
		return s.blocked(res, logger, err,
			fmt.Sprintf("%s is locked. Please check file out to push.", name))
	}

	if err := s.transfers.Check(); err != nil {
		return s.fail(res, logger, err)
	}
	if err := s.transfers.Put(ctx, res.Path); err != nil {
		return s.fail(res, logger, err)
	}

	res.Pushed = true
	res.Outcome = OutcomeDone
	s.notifier.Notify(prompt.LevelInfo, fmt.Sprintf("%s pushed to server.", name))
	logger.Info("pushed")
	return res, nil
}

// Pull downloads path regardless of its status. The status is not changed.
func (s *Service) Pull(ctx context.Context, path string) (Result, error) {
	res := Result{Op: OpPull, Path: path}
	logger := s.logger.WithOperation(string(OpPull)).WithPath(path)

	target, err := s.target(path)
	if err != nil && !errors.Is(err, errors.ErrFileNotFound) {
		return s.reject(res, logger, err)
	}
	res.Path = target
	name := s.displayName(target)

	if err := s.transfers.Check(); err != nil {
		return s.fail(res, logger, err)
	}
	if err := s.transfers.Get(ctx, target); err != nil {
		return s.fail(res, logger, err)
	}

	if rec, ok := s.resolver.Get(target); ok {
		res.Record = rec
	}
	res.Pulled = true
	res.Outcome = OutcomeDone
	s.notifier.Notify(prompt.LevelInfo, fmt.Sprintf("%s pulled from server.", name))
	logger.Info("pulled")
	return res, nil
}

// Status re-reads path from disk and reports it.
func (s *Service) Status(ctx context.Context, path string) (Result, error) {
	res := Result{Op: OpStatus, Path: path}
	logger := s.logger.WithOperation(string(OpStatus)).WithPath(path)

	target, err := s.target(path)
	if err != nil {
		return s.reject(res, logger, err)
	}
	res.Path = target

	rec, err := s.resolver.ResolveOne(target)
	if err != nil {
		return s.reject(res, logger, err)
	}
	res.Record = rec
	res.Outcome = OutcomeNoop
	s.notifier.Notify(prompt.LevelInfo, s.Describe(rec))
	return res, nil
}

// Describe renders a record as a sentence.
func (s *Service) Describe(rec status.Record) string {
	name := s.displayName(rec.Path)
	switch rec.Status {
	case status.Out:
		if s.self.Owns(rec.Owner) {
			return fmt.Sprintf("%s is checked out by you.", name)
		}
		return fmt.Sprintf("%s is checked out by %s.", name, rec.Owner)
	case status.Locked:
		return fmt.Sprintf("%s is locked.", name)
	case status.Unlocked:
		return fmt.Sprintf("%s is unlocked.", name)
	default:
		return fmt.Sprintf("%s has an unknown status.", name)
	}
}

// begin validates path and loads its current status, resolving from disk when
// the cache has no resolved entry.
func (s *Service) begin(op Op, path string) (Result, status.Record, *logging.Logger, error) {
	res := Result{Op: op, Path: path}
	logger := s.logger.WithOperation(string(op)).WithPath(path)

	target, err := s.target(path)
	if err != nil {
		res, err = s.reject(res, logger, err)
		return res, status.Record{}, logger, err
	}
	res.Path = target

	rec, err := s.resolver.Lookup(target)
	if err != nil {
		res, err = s.reject(res, logger, err)
		return res, status.Record{}, logger, err
	}
	res.Record = rec
	logger.Debug("current status", "status", rec.Status.String(), "owner", rec.Owner)
	return res, rec, logger, nil
}

// target cleans path and checks that it names a file inside the workspace.
// A path that does not exist is returned together with ErrFileNotFound.
func (s *Service) target(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.ErrNoFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if rel, err := filepath.Rel(s.root, abs); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs, errors.Wrapf(errors.ErrNotInWorkspace, "%s", path)
	}
	if sentinel.IsSentinel(abs) {
		return abs, errors.Wrapf(errors.ErrNotInWorkspace, "%s is a lock file", path)
	}
	info, err := s.fs.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return abs, errors.Wrapf(errors.ErrFileNotFound, "%s", path)
	case err != nil:
		return abs, err
	case info.IsDir():
		return abs, errors.Wrapf(errors.ErrIsDirectory, "%s", path)
	}
	return abs, nil
}

func (s *Service) confirmOverride(ctx context.Context, name, owner string) (bool, error) {
	return s.prompter.Confirm(ctx, prompt.Question{
		Title:       fmt.Sprintf("%s is checked out by %s. Override their checkout?", name, owner),
		Affirmative: "Confirm",
		Negative:    "Cancel",
	})
}

func (s *Service) recordSentinelDeleteError(res *Result, logger *logging.Logger, err error) {
	if errors.Is(err, errors.ErrSentinelNotFound) {
		logger.Warn("lock file was already missing")
		res.warn("lock file was already missing")
		return
	}
	logger.Error("failed to delete lock file", "error", err.Error())
	s.notifier.Notify(prompt.LevelError, errors.UserMessage(err))
	res.warn(err.Error())
}

// reject reports an invalid target: no file, a directory, or a path the
// resolver cannot read.
func (s *Service) reject(res Result, logger *logging.Logger, err error) (Result, error) {
	switch {
	case errors.Is(err, errors.ErrNoFile):
		s.notifier.Notify(prompt.LevelInfo, "No file specified.")
		res.Outcome = OutcomeNoop
	case errors.Is(err, errors.ErrIsDirectory):
		s.notifier.Notify(prompt.LevelWarning, "Directories have no status. Please select an individual file.")
		res.Outcome = OutcomeNoop
	default:
		logger.Error("invalid target", "error", err.Error())
		s.notifier.Notify(prompt.LevelError, errors.UserMessage(err))
		res.Outcome = OutcomeFailed
	}
	return res, err
}

func (s *Service) fail(res Result, logger *logging.Logger, err error) (Result, error) {
	logger.Error("operation failed", "error", err.Error())
	s.notifier.Notify(prompt.LevelError, errors.UserMessage(err))
	res.Outcome = OutcomeFailed
	return res, err
}

func (s *Service) blocked(res Result, logger *logging.Logger, err error, msg string) (Result, error) {
	logger.Warn("operation refused", "error", err.Error())
	s.notifier.Notify(prompt.LevelError, msg)
	res.Outcome = OutcomeBlocked
	return res, err
}

func (s *Service) canceled(res Result, logger *logging.Logger, err error) (Result, error) {
	res.Outcome = OutcomeCanceled
	if err != nil {
		logger.Warn("confirmation aborted", "error", err.Error())
		s.notifier.Notify(prompt.LevelWarning, fmt.Sprintf("%s canceled.", res.Op))
		return res, errors.Join(errors.ErrCanceled, err)
	}
	logger.Info("override declined")
	s.notifier.Notify(prompt.LevelInfo, fmt.Sprintf("%s canceled.", res.Op))
	return res, nil
}

// displayName is the path relative to the workspace root, or the base name for
// anything outside it.
func (s *Service) displayName(path string) string {
	if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}
