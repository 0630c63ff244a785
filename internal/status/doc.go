// Package status derives and caches the checkout status of workspace files.
//
// A file's status comes from two places on disk. If a sentinel (.LCK) file sits
// next to it, the file is [Out] and the sentinel names the owner. Otherwise the
// file is [Locked] when it has no write bits and [Unlocked] when it does. The
// sentinel always wins.
//
// The two checks are separate filesystem reads and are not atomic. A change made
// by someone else between them can produce a stale answer; nothing here retries.
//
// # Cache
//
// [Resolver] owns a cache of [Record] values keyed by absolute path. Entries found
// by a workspace scan are registered unresolved first and filled in by a bounded
// worker pool, so callers can tell "not yet known" from "unlocked". Every change
// to a cached (status, owner) pair is published as an event.StatusChangedEvent.
//
// # Basic Usage
//
//	r := status.NewResolver(fsys, store, guard, status.Options{Root: root, Bus: bus})
//
//	rec, err := r.ResolveOne("/srv/site/index.html")
//	if rec.Status == status.Out {
//	    fmt.Println("checked out by", rec.Owner)
//	}
//
//	summary, err := r.ResolveWorkspace(ctx)
package status
