package status

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/dwcheck/internal/attr"
	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/logging"
	"github.com/Iron-Ham/dwcheck/internal/sentinel"
)

// DefaultWorkers is the resolution concurrency used when Options.Workers is zero.
const DefaultWorkers = 8

// Options configures a Resolver.
type Options struct {
	Root    string
	Exclude []string
	Workers int
	Bus     *event.Bus
	Logger  *logging.Logger
}

// Resolver derives file status from disk and caches the result.
// It is safe for concurrent use.
type Resolver struct {
	fs        afero.Fs
	sentinels *sentinel.Store
	guard     *attr.Guard
	walker    *Walker
	bus       *event.Bus
	logger    *logging.Logger
	workers   int

	mu      sync.RWMutex
	records map[string]Record
}

// NewResolver creates a Resolver for the workspace described by opts.
func NewResolver(fsys afero.Fs, sentinels *sentinel.Store, guard *attr.Guard, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Resolver{
		fs:        fsys,
		sentinels: sentinels,
		guard:     guard,
		walker:    NewWalker(fsys, opts.Root, opts.Exclude),
		bus:       opts.Bus,
		logger:    logger,
		workers:   workers,
		records:   make(map[string]Record),
	}
}

// Walker returns the workspace walker used for scans.
func (r *Resolver) Walker() *Walker { return r.walker }

// ResolveOne reads the status of path from disk and caches it.
// Directories return errors.ErrIsDirectory and are not cached. A missing file
// returns errors.ErrFileNotFound and is dropped from the cache.
func (r *Resolver) ResolveOne(path string) (Record, error) {
	path = clean(path)

	info, err := r.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.Forget(path)
			return Record{}, errors.Wrapf(errors.ErrFileNotFound, "%s", path)
		}
		return Record{}, err
	}
	if info.IsDir() {
		return Record{}, errors.Wrapf(errors.ErrIsDirectory, "%s", path)
	}

	lock, hasSentinel := r.sentinels.Read(path)
	readOnly := false
	if !hasSentinel {
		readOnly, err = r.guard.IsReadOnly(path)
		if err != nil {
			return Record{}, err
		}
	}

	st, owner := Derive(hasSentinel, lock.Owner, readOnly)
	return r.store(path, st, owner), nil
}

// ResolveWorkspace scans the workspace and re-resolves every trackable file.
// Per-file failures are logged and counted but do not stop the scan. Cached
// entries for files no longer on disk are evicted.
func (r *Resolver) ResolveWorkspace(ctx context.Context) (Summary, error) {
	start := time.Now()
	files, err := r.walker.Walk(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(files), Evicted: r.register(files)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := r.ResolveOne(file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				r.logger.Warn("failed to resolve status", "path", file, "error", err.Error())
				return nil
			}
			summary.add(rec.Status)
			return nil
		})
	}
	err = g.Wait()
	summary.Duration = time.Since(start)

	r.logger.Info("workspace resolved",
		"root", r.walker.Root(),
		"total", summary.Total,
		"failed", summary.Failed,
		"evicted", summary.Evicted,
		"duration_ms", summary.Duration.Milliseconds(),
	)
	r.bus.Publish(event.NewWorkspaceResolvedEvent(r.walker.Root(), summary.Total, summary.Failed, summary.Duration))
	return summary, err
}

// register marks every file unresolved (keeping any previous status) and
// evicts cached paths that were not found. It returns the eviction count.
func (r *Resolver) register(files []string) int {
	seen := make(map[string]struct{}, len(files))
	var evicted []Record

	r.mu.Lock()
	for _, f := range files {
		seen[f] = struct{}{}
		rec := r.records[f]
		rec.Path = f
		rec.Resolved = false
		r.records[f] = rec
	}
	for p, rec := range r.records {
		if _, ok := seen[p]; !ok {
			delete(r.records, p)
			evicted = append(evicted, rec)
		}
	}
	r.mu.Unlock()

	for _, rec := range evicted {
		r.publish(rec.Path, rec, Record{})
	}
	return len(evicted)
}

// Get returns the cached record for path without touching disk.
func (r *Resolver) Get(path string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[clean(path)]
	return rec, ok
}

// Lookup returns the cached record when it is resolved, resolving from disk otherwise.
func (r *Resolver) Lookup(path string) (Record, error) {
	if rec, ok := r.Get(path); ok && rec.Resolved {
		return rec, nil
	}
	return r.ResolveOne(path)
}

// Set records a status the caller has just established on disk.
func (r *Resolver) Set(path string, st Status, owner string) Record {
	return r.store(clean(path), st, owner)
}

// Forget drops path from the cache.
func (r *Resolver) Forget(path string) {
	path = clean(path)
	r.mu.Lock()
	prev, ok := r.records[path]
	delete(r.records, path)
	r.mu.Unlock()

	if ok {
		r.publish(path, prev, Record{})
	}
}

// ForgetTree drops every cached file below dir and returns their paths.
// Used when a directory disappears as a whole.
func (r *Resolver) ForgetTree(dir string) []string {
	prefix := clean(dir) + string(filepath.Separator)
	var evicted []Record

	r.mu.Lock()
	for p, rec := range r.records {
		if strings.HasPrefix(p, prefix) {
			delete(r.records, p)
			evicted = append(evicted, rec)
		}
	}
	r.mu.Unlock()

	paths := make([]string, 0, len(evicted))
	for _, rec := range evicted {
		r.publish(rec.Path, rec, Record{})
		paths = append(paths, rec.Path)
	}
	sort.Strings(paths)
	return paths
}

// Records returns a snapshot of the cache sorted by path.
func (r *Resolver) Records() []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (r *Resolver) store(path string, st Status, owner string) Record {
	if st != Out {
		owner = ""
	}
	rec := Record{
		Path:       path,
		Status:     st,
		Owner:      owner,
		Resolved:   true,
		ResolvedAt: time.Now(),
	}

	r.mu.Lock()
	prev := r.records[path]
	r.records[path] = rec
	r.mu.Unlock()

	r.publish(path, prev, rec)
	return rec
}

// publish emits a StatusChangedEvent when the (status, owner) pair changed.
// Called without the lock held so handlers may read the cache.
func (r *Resolver) publish(path string, prev, next Record) {
	if prev.Status == next.Status && prev.Owner == next.Owner {
		return
	}
	r.logger.Debug("status changed",
		"path", path,
		"from", string(prev.Status),
		"to", string(next.Status),
		"owner", next.Owner,
	)
	r.bus.Publish(event.NewStatusChangedEvent(path, string(prev.Status), prev.Owner, string(next.Status), next.Owner))
}

func clean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
