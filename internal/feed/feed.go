// Package feed pushes live month updates to report views. Visit mutations
// emit change events on a Bus; a Watcher per active scope and month re-runs
// the scoped month query on each relevant event and pushes the full result
// set, never a delta, so downstream aggregation can always rebuild from
// scratch.
package feed

import (
	"reflect"
	"sync"

	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

// Event describes one visit mutation. Watchers use it only to decide
// whether their scope is affected; the data itself always arrives by
// refetch.
type Event struct {
	OrgID      string `json:"org_id"`
	LocationID string `json:"location_id,omitempty"`
	MonthKey   string `json:"month_key"`
}

// Matches reports whether the event touches the given scope and month. An
// all-locations scope matches events from every location of its org.
func (e Event) Matches(sc scope.Scope, monthKey string) bool {
	if e.OrgID != sc.OrgID || e.MonthKey != monthKey {
		return false
	}
	return sc.LocationID == "" || sc.LocationID == e.LocationID
}

const subscriberBuffer = 16

// Bus fans visit change events out to subscribers. Channels are buffered
// and sends never block: a slow subscriber misses events instead of
// stalling writers, and catches up on its next full refetch.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel that receives future events. The channel is
// closed by Unsubscribe or when the bus shuts down.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subscribers = append(b.subscribers, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	if ch == nil {
		return
	}
	target := reflect.ValueOf(ch).Pointer()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if reflect.ValueOf(sub).Pointer() == target {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)
			break
		}
	}
}

// Emit delivers the event to every subscriber with buffer room. Safe to
// call from any goroutine.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subscribers {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}
