package event

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe(TypeStatusChanged, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
	if called {
		t.Error("handler should not run before anything is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var got StatusChangedEvent
	bus.Subscribe(TypeStatusChanged, func(e Event) {
		got = e.(StatusChangedEvent)
	})

	bus.Publish(NewStatusChangedEvent("/ws/index.html", "locked", "", "out", "rchisholm"))

	if got.Path != "/ws/index.html" {
		t.Fatalf("Path = %q, want /ws/index.html", got.Path)
	}
	if got.Status != "out" || got.Owner != "rchisholm" {
		t.Errorf("got (%q, %q), want (out, rchisholm)", got.Status, got.Owner)
	}
	if got.PreviousStatus != "locked" {
		t.Errorf("PreviousStatus = %q, want locked", got.PreviousStatus)
	}
}

func TestBus_PublishOnlyMatchingType(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(TypeTransfer, func(e Event) {
		t.Error("transfer handler should not see a refresh event")
	})

	count := 0
	bus.Subscribe(TypeRefreshRequested, func(e Event) { count++ })
	bus.Subscribe(TypeRefreshRequested, func(e Event) { count++ })

	bus.Publish(NewRefreshRequestedEvent("/ws/a.txt", "checkin"))

	if count != 2 {
		t.Errorf("refresh handlers called %d times, want 2", count)
	}
}

func TestBus_SubscribeAllRunsAfterSpecific(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all") })
	bus.Subscribe(TypeTransfer, func(e Event) { order = append(order, "specific") })

	bus.Publish(NewTransferEvent("put", "/ws/a.txt", "/www/a.txt", 10, nil))

	if len(order) != 2 || order[0] != "specific" || order[1] != "all" {
		t.Errorf("order = %v, want [specific all]", order)
	}
}

func TestBus_SubscribeMany(t *testing.T) {
	bus := NewBus()

	var seen []string
	ids := bus.SubscribeMany(func(e Event) { seen = append(seen, e.EventType()) },
		TypeStatusChanged, TypeWorkspaceResolved)

	if len(ids) != 2 {
		t.Fatalf("SubscribeMany returned %d ids, want 2", len(ids))
	}

	bus.Publish(NewWorkspaceResolvedEvent("/ws", 3, 0, 0))
	bus.Publish(NewStatusChangedEvent("/ws/a", "", "", "locked", ""))
	bus.Publish(NewRefreshRequestedEvent("/ws/a", "checkout"))

	if len(seen) != 2 {
		t.Errorf("seen = %v, want two events", seen)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe(TypeRefreshRequested, func(e Event) { called = true })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should return true for a known ID")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should return false")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}

	bus.Publish(NewRefreshRequestedEvent("/ws/a", "checkout"))
	if called {
		t.Error("handler ran after Unsubscribe")
	}
}

func TestBus_PanicIsContained(t *testing.T) {
	bus := NewBus()

	var reported string
	bus.SetPanicHandler(func(eventType string, recovered any, stack []byte) {
		reported = eventType
		if len(stack) == 0 {
			t.Error("expected a stack trace")
		}
	})

	bus.Subscribe(TypeTransfer, func(e Event) { panic("boom") })
	second := false
	bus.Subscribe(TypeTransfer, func(e Event) { second = true })

	bus.Publish(NewTransferEvent("get", "/ws/a", "/www/a", 0, errors.New("550")))

	if reported != TypeTransfer {
		t.Errorf("panic reported for %q, want %q", reported, TypeTransfer)
	}
	if !second {
		t.Error("handlers after a panicking one should still run")
	}
}

func TestBus_PublishNil(t *testing.T) {
	var nilBus *Bus
	nilBus.Publish(NewRefreshRequestedEvent("/ws/a", "checkout"))

	bus := NewBus()
	bus.Publish(nil)
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeTransfer, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear, want 0", bus.SubscriptionCount())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var count atomic.Int64
	bus.SubscribeAll(func(Event) { count.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewRefreshRequestedEvent("/ws/a", "checkout"))
		}()
	}
	wg.Wait()

	if got := count.Load(); got != 20 {
		t.Errorf("handler ran %d times, want 20", got)
	}
}

func TestTransferEvent_Success(t *testing.T) {
	ok := NewTransferEvent("put", "/ws/a", "/www/a", 1, nil)
	if !ok.Success() {
		t.Error("Success() = false for nil error")
	}
	failed := NewTransferEvent("put", "/ws/a", "/www/a", 0, errors.New("refused"))
	if failed.Success() {
		t.Error("Success() = true for a failed transfer")
	}
	if failed.Timestamp().IsZero() {
		t.Error("Timestamp() should be set")
	}
}
