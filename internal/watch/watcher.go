// Package watch keeps the status cache in step with changes made on disk by
// other tools: lock files appearing or disappearing, files turning read-only
// and files being added or removed.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/logging"
	"github.com/Iron-Ham/dwcheck/internal/sentinel"
	"github.com/Iron-Ham/dwcheck/internal/status"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
// Many editors write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// relevant is the set of fsnotify operations that can change a status.
const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename | fsnotify.Chmod

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Bus      *event.Bus
	Logger   *logging.Logger
	// OnChange is called after each batch with the tracked files that were
	// re-resolved. It runs on the watcher goroutine.
	OnChange func(paths []string)
}

// Watcher re-resolves tracked files when they or their lock files change.
type Watcher struct {
	fsw      *fsnotify.Watcher
	resolver *status.Resolver
	walker   *status.Walker
	bus      *event.Bus
	logger   *logging.Logger
	debounce time.Duration
	onChange func([]string)

	mu      sync.Mutex
	started bool

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a Watcher for the resolver's workspace.
func New(resolver *status.Resolver, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsw:      fsw,
		resolver: resolver,
		walker:   resolver.Walker(),
		bus:      opts.Bus,
		logger:   logger.With("component", "watch"),
		debounce: debounce,
		onChange: opts.OnChange,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start adds the workspace directories to the watch list and begins processing
// events in the background. The watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	root := w.walker.Root()
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrapf(err, "workspace root %s", root)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrIsDirectory, "workspace root %s is not a directory", root)
	}
	if err := w.fsw.Add(root); err != nil {
		return err
	}
	w.addTree(root)

	w.started = true
	go w.loop(ctx)
	w.logger.Info("watching workspace", "root", root)
	return nil
}

// Stop ends watching and waits for the event loop to exit. Safe to call more
// than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fsw.Close()

		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if started {
			<-w.done
		}
	})
}

// addTree watches every non-excluded directory below dir.
func (w *Watcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || p == dir {
			return nil
		}
		if w.walker.Excluded(p, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Warn("failed to watch directory", "path", p, "error", err.Error())
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&relevant == 0 {
				continue
			}
			target, ok := w.track(ev)
			if !ok {
				continue
			}
			pending[target] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]struct{})
			w.flush(paths)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}

// track maps an fsnotify event to the tracked file it affects. New
// directories are added to the watch list and yield nothing.
func (w *Watcher) track(ev fsnotify.Event) (string, bool) {
	name := filepath.Clean(ev.Name)

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if !w.walker.Excluded(name, true) {
				_ = w.fsw.Add(name)
				w.addTree(name)
			}
			return "", false
		}
	}

	target := name
	if sentinel.IsSentinel(name) {
		target = strings.TrimSuffix(name, sentinel.Suffix)
	}
	if w.walker.Excluded(target, false) {
		return "", false
	}
	return target, true
}

// flush re-resolves each changed file from disk.
func (w *Watcher) flush(paths []string) {
	var changed []string
	for _, p := range paths {
		_, err := w.resolver.ResolveOne(p)
		switch {
		case err == nil:
			changed = append(changed, p)
		case errors.Is(err, errors.ErrFileNotFound):
			// p may have been a directory that was removed or moved away.
			changed = append(changed, p)
			changed = append(changed, w.resolver.ForgetTree(p)...)
		case errors.Is(err, errors.ErrIsDirectory):
		default:
			w.logger.Warn("failed to resolve changed file", "path", p, "error", err.Error())
		}
	}
	if len(changed) == 0 {
		return
	}

	w.logger.Debug("re-resolved changed files", "count", len(changed))
	w.bus.Publish(event.NewRefreshRequestedEvent("", "watch"))
	if w.onChange != nil {
		w.onChange(changed)
	}
}
