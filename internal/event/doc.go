// Package event provides a pub-sub event bus for decoupled inter-component
// communication in dwcheck.
//
// The status resolver, the checkout state machine and the remote gateway publish
// events; the explorer TUI, the watch command and the logger subscribe to them.
// This replaces the editor's "refresh tree view" command: anything that renders
// status re-queries the resolver when it sees a [RefreshRequestedEvent] or a
// [StatusChangedEvent].
//
// # Event Types
//
//   - [StatusChangedEvent] ("status.changed"): a cached (status, owner) pair changed
//   - [WorkspaceResolvedEvent] ("workspace.resolved"): a full workspace scan finished
//   - [RefreshRequestedEvent] ("view.refresh"): a checkout or checkin mutated state
//   - [TransferEvent] ("transfer.completed"): a remote get or put finished
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called synchronously
// on the publishing goroutine and protected against panics.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeStatusChanged, func(e event.Event) {
//	    changed := e.(event.StatusChangedEvent)
//	    fmt.Println(changed.Path, changed.Status)
//	})
//
//	bus.Publish(event.NewRefreshRequestedEvent("/ws/index.html", "checkout"))
package event
