// Package internal holds tests that run the checkout workflow end to end: a
// workspace on disk, the status cache, the FTP gateway against an in-memory
// server and the filesystem watcher, all talking over one event bus.
package internal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/dwcheck/internal/attr"
	"github.com/Iron-Ham/dwcheck/internal/checkout"
	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/identity"
	"github.com/Iron-Ham/dwcheck/internal/prompt"
	"github.com/Iron-Ham/dwcheck/internal/remote"
	"github.com/Iron-Ham/dwcheck/internal/remote/remotetest"
	"github.com/Iron-Ham/dwcheck/internal/sentinel"
	"github.com/Iron-Ham/dwcheck/internal/status"
	"github.com/Iron-Ham/dwcheck/internal/testutil"
	"github.com/Iron-Ham/dwcheck/internal/watch"
)

type stack struct {
	root     string
	bus      *event.Bus
	resolver *status.Resolver
	server   *remotetest.Server
	svc      *checkout.Service
	notes    *prompt.Recorder
}

func newStack(t *testing.T, files map[string]string) *stack {
	t.Helper()

	root := testutil.SetupWorkspace(t, files)
	bus := event.NewBus()
	fsys := afero.NewOsFs()
	store := sentinel.NewStore(fsys, nil)
	guard := attr.NewGuard(fsys)
	resolver := status.NewResolver(fsys, store, guard, status.Options{Root: root, Bus: bus})

	srv := remotetest.NewServer()
	server := config.ServerConfig{Type: "ftp", Host: "ftp.example.test", Dir: "/www"}
	gateway := remote.NewGateway(server, root, remote.WithDialer(srv.Dialer()), remote.WithBus(bus))

	notes := &prompt.Recorder{}
	svc := checkout.NewService(checkout.Deps{
		Fs:         fsys,
		Root:       root,
		Resolver:   resolver,
		Sentinels:  store,
		Guard:      guard,
		Transfers:  gateway,
		Identity:   identity.Identity{Username: "alice", Email: "alice@example.org"},
		Prompter:   prompt.Static(false),
		Notifier:   notes,
		Bus:        bus,
		PullPolicy: config.PullNever,
	})

	return &stack{root: root, bus: bus, resolver: resolver, server: srv, svc: svc, notes: notes}
}

// collect records every event of the given types published on bus.
func collect(bus *event.Bus, types ...string) func() []event.Event {
	var mu sync.Mutex
	var got []event.Event
	bus.SubscribeMany(func(e event.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	}, types...)
	return func() []event.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]event.Event(nil), got...)
	}
}

func TestCheckoutCheckinRoundTrip(t *testing.T) {
	s := newStack(t, map[string]string{"site/index.html": "<html>v2</html>"})
	file := filepath.Join(s.root, "site", "index.html")
	transfers := collect(s.bus, event.TypeTransfer)
	ctx := context.Background()

	if _, err := s.svc.Checkout(ctx, file); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if got := testutil.ReadFile(t, sentinel.Path(file)); got != "alice||alice@example.org" {
		t.Errorf("sentinel = %q", got)
	}

	res, err := s.svc.Checkin(ctx, file)
	if err != nil {
		t.Fatalf("Checkin() error = %v", err)
	}
	if res.Record.Status != status.Locked || !res.Pushed {
		t.Errorf("Checkin() = %+v, want locked and pushed", res)
	}
	if got, ok := s.server.File("/www/site/index.html"); !ok || got != "<html>v2</html>" {
		t.Errorf("server copy = %q, %v", got, ok)
	}
	if perm := testutil.Perm(t, file); perm&0o222 != 0 {
		t.Errorf("perm = %v, want read-only", perm)
	}

	evs := transfers()
	if len(evs) != 1 {
		t.Fatalf("transfer events = %d, want 1", len(evs))
	}
	if te := evs[0].(event.TransferEvent); te.Op != "put" || !te.Success() {
		t.Errorf("transfer event = %+v", te)
	}
}

func TestForeignCheckoutSeenByWatcher(t *testing.T) {
	s := newStack(t, map[string]string{"about.html": "<p>"})
	file := filepath.Join(s.root, "about.html")
	changes := collect(s.bus, event.TypeStatusChanged)

	w, err := watch.New(s.resolver, watch.Options{Debounce: 20 * time.Millisecond, Bus: s.bus})
	if err != nil {
		t.Fatalf("watch.New() error = %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	// Another user checks the file out from a different machine.
	testutil.WriteFile(t, sentinel.Path(file), "rchisholm||rchisholm@example.org", 0644)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if rec, ok := s.resolver.Get(file); ok && rec.Owner == "rchisholm" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the watcher to pick up the lock file")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(changes()) == 0 {
		t.Error("expected a status change event")
	}

	ctx := context.Background()
	res, err := s.svc.Push(ctx, file)
	var blocked *errors.BlockedError
	if !errors.As(err, &blocked) || blocked.Owner != "rchisholm" {
		t.Fatalf("Push() error = %v, want blocked by rchisholm", err)
	}
	if res.Outcome != checkout.OutcomeBlocked {
		t.Errorf("Push() outcome = %v", res.Outcome)
	}

	// Declining the override leaves their lock in place.
	res, err = s.svc.Checkout(ctx, file)
	if err != nil || res.Outcome != checkout.OutcomeCanceled {
		t.Fatalf("Checkout() = %v, %v, want canceled", res.Outcome, err)
	}
	if got := testutil.ReadFile(t, sentinel.Path(file)); got != "rchisholm||rchisholm@example.org" {
		t.Errorf("sentinel = %q, want untouched", got)
	}

	if _, err := s.svc.Status(ctx, file); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if last, _ := s.notes.Last(); last.Text != "about.html is checked out by rchisholm." {
		t.Errorf("last notification = %q", last.Text)
	}
}

func TestPullReplacesLocalCopy(t *testing.T) {
	s := newStack(t, map[string]string{"css/main.css": "old"})
	file := filepath.Join(s.root, "css", "main.css")
	s.server.SetFile("/www/css/main.css", "new")

	res, err := s.svc.Pull(context.Background(), file)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if !res.Pulled {
		t.Error("Pull() did not report a transfer")
	}
	if got := testutil.ReadFile(t, file); got != "new" {
		t.Errorf("local copy = %q, want %q", got, "new")
	}
}
