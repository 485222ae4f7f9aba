package feed

import (
	"testing"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

func TestEventMatches(t *testing.T) {
	orgWide := scope.Scope{OrgID: "org-1", Capabilities: []string{scope.CapAllLocations}}
	oneLoc := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	tests := []struct {
		name     string
		event    Event
		scope    scope.Scope
		monthKey string
		expected bool
	}{
		{"same org and month", Event{OrgID: "org-1", MonthKey: "2024-06"}, orgWide, "2024-06", true},
		{"other org", Event{OrgID: "org-2", MonthKey: "2024-06"}, orgWide, "2024-06", false},
		{"other month", Event{OrgID: "org-1", MonthKey: "2024-07"}, orgWide, "2024-06", false},
		{"org-wide sees any location", Event{OrgID: "org-1", LocationID: "loc-2", MonthKey: "2024-06"}, orgWide, "2024-06", true},
		{"location scope sees its own", Event{OrgID: "org-1", LocationID: "loc-1", MonthKey: "2024-06"}, oneLoc, "2024-06", true},
		{"location scope skips others", Event{OrgID: "org-1", LocationID: "loc-2", MonthKey: "2024-06"}, oneLoc, "2024-06", false},
		{"location scope skips unlocated", Event{OrgID: "org-1", MonthKey: "2024-06"}, oneLoc, "2024-06", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Matches(tt.scope, tt.monthKey); got != tt.expected {
				t.Errorf("Matches(%+v, %q) = %v, want %v", tt.scope, tt.monthKey, got, tt.expected)
			}
		})
	}
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed early")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestBusFanout(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Emit(Event{OrgID: "org-1", MonthKey: "2024-06"})

	for _, ch := range []<-chan Event{a, b} {
		ev := recvEvent(t, ch)
		if ev.OrgID != "org-1" || ev.MonthKey != "2024-06" {
			t.Errorf("received %+v, want org-1 2024-06", ev)
		}
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	bus.Unsubscribe(a)

	if _, ok := <-a; ok {
		t.Error("unsubscribed channel still open")
	}

	bus.Emit(Event{OrgID: "org-1", MonthKey: "2024-06"})
	if ev := recvEvent(t, b); ev.OrgID != "org-1" {
		t.Errorf("remaining subscriber received %+v", ev)
	}
}

func TestBusEmitNeverBlocks(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe()
	// Nobody is reading; overflow past the buffer must drop, not block.
	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Emit(Event{OrgID: "org-1", MonthKey: "2024-06"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != subscriberBuffer {
				t.Errorf("buffered events = %d, want %d", received, subscriberBuffer)
			}
			return
		}
	}
}

func TestBusClose(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel still open after close")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Error("subscription on a closed bus is open")
	}

	// Emitting after close is a no-op, not a panic.
	bus.Emit(Event{OrgID: "org-1", MonthKey: "2024-06"})
}
