package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "status.changed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeStatusChanged     = "status.changed"
	TypeWorkspaceResolved = "workspace.resolved"
	TypeRefreshRequested  = "view.refresh"
	TypeTransfer          = "transfer.completed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// StatusChangedEvent is emitted when the cached status or owner of a file changes.
// Status values are the plain strings "unlocked", "locked" and "out"; an empty
// Status means the entry was removed from the cache.
type StatusChangedEvent struct {
	baseEvent
	Path           string
	Status         string
	Owner          string
	PreviousStatus string
	PreviousOwner  string
}

// NewStatusChangedEvent creates a StatusChangedEvent.
func NewStatusChangedEvent(path, previousStatus, previousOwner, status, owner string) StatusChangedEvent {
	return StatusChangedEvent{
		baseEvent:      newBaseEvent(TypeStatusChanged),
		Path:           path,
		Status:         status,
		Owner:          owner,
		PreviousStatus: previousStatus,
		PreviousOwner:  previousOwner,
	}
}

// WorkspaceResolvedEvent is emitted when a workspace scan completes.
type WorkspaceResolvedEvent struct {
	baseEvent
	Root     string
	Total    int
	Failed   int
	Duration time.Duration
}

// NewWorkspaceResolvedEvent creates a WorkspaceResolvedEvent.
func NewWorkspaceResolvedEvent(root string, total, failed int, duration time.Duration) WorkspaceResolvedEvent {
	return WorkspaceResolvedEvent{
		baseEvent: newBaseEvent(TypeWorkspaceResolved),
		Root:      root,
		Total:     total,
		Failed:    failed,
		Duration:  duration,
	}
}

// RefreshRequestedEvent asks every status view to re-query the resolver.
// Reason names the operation that mutated state ("checkout", "checkin").
type RefreshRequestedEvent struct {
	baseEvent
	Path   string
	Reason string
}

// NewRefreshRequestedEvent creates a RefreshRequestedEvent.
func NewRefreshRequestedEvent(path, reason string) RefreshRequestedEvent {
	return RefreshRequestedEvent{
		baseEvent: newBaseEvent(TypeRefreshRequested),
		Path:      path,
		Reason:    reason,
	}
}

// TransferEvent is emitted after a remote get or put, successful or not.
type TransferEvent struct {
	baseEvent
	Op         string // "get" or "put"
	LocalPath  string
	RemotePath string
	Bytes      int64
	Err        error
}

// NewTransferEvent creates a TransferEvent.
func NewTransferEvent(op, localPath, remotePath string, bytes int64, err error) TransferEvent {
	return TransferEvent{
		baseEvent:  newBaseEvent(TypeTransfer),
		Op:         op,
		LocalPath:  localPath,
		RemotePath: remotePath,
		Bytes:      bytes,
		Err:        err,
	}
}

// Success reports whether the transfer completed without error.
func (e TransferEvent) Success() bool { return e.Err == nil }
