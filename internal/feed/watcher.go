package feed

import (
	"context"
	"sync"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/scope"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// State names the two fetch strategies a watcher runs under.
type State string

const (
	// StateLive means updates arrive through the event subscription.
	StateLive State = "live"
	// StateDegraded means the subscription or its query failed and the
	// visible data comes from the last one-shot fetch that worked.
	StateDegraded State = "degraded"
)

// Update carries one full snapshot push. Visits is the complete scoped
// month result set; LastSync is the time of the most recent successful
// fetch and survives failed ones.
type Update struct {
	State    State          `json:"state"`
	LastSync time.Time      `json:"last_sync"`
	Visits   []*visit.Visit `json:"visits"`
}

// Source is the scoped month query a watcher re-runs on every push.
type Source interface {
	ListMonth(s scope.Scope, monthKey string) ([]*visit.Visit, error)
}

// Watcher follows one scope and month. Callers that switch scope cancel
// the old watcher's context before starting the next one, so the last
// scope wins and a watcher never outlives its scope.
type Watcher struct {
	bus      *Bus
	source   Source
	scope    scope.Scope
	monthKey string

	mu       sync.Mutex
	state    State
	lastSync time.Time
	visits   []*visit.Visit
}

// NewWatcher creates a watcher for one scope and month.
func NewWatcher(bus *Bus, source Source, sc scope.Scope, monthKey string) *Watcher {
	return &Watcher{bus: bus, source: source, scope: sc, monthKey: monthKey, state: StateLive}
}

// State returns the current fetch strategy.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastSync returns the time of the last successful fetch.
func (w *Watcher) LastSync() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSync
}

// Watch subscribes to the bus and streams snapshots until ctx is canceled.
// The first snapshot is pushed immediately. A query failure pushes a
// degraded update carrying the last known visits; the next relevant event
// retries, and a success returns the watcher to live. If the subscription
// itself shuts down, the watcher falls back to one final one-shot fetch,
// pushes it as degraded, and stops; a fresh Watch starts live again.
func (w *Watcher) Watch(ctx context.Context) <-chan Update {
	out := make(chan Update, 1)
	events := w.bus.Subscribe()

	go func() {
		defer close(out)
		defer w.bus.Unsubscribe(events)

		w.push(ctx, out, StateLive)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					w.push(ctx, out, StateDegraded)
					return
				}
				if !ev.Matches(w.scope, w.monthKey) {
					continue
				}
				w.push(ctx, out, StateLive)
			}
		}
	}()
	return out
}

// push runs the scoped query and sends a snapshot. On a query error the
// watcher degrades and re-sends the last known result set with the old
// sync stamp; onSuccess is the state a working fetch lands in.
func (w *Watcher) push(ctx context.Context, out chan<- Update, onSuccess State) {
	visits, err := w.source.ListMonth(w.scope, w.monthKey)

	w.mu.Lock()
	if err != nil {
		w.state = StateDegraded
	} else {
		w.state = onSuccess
		w.lastSync = time.Now()
		w.visits = visits
	}
	upd := Update{State: w.state, LastSync: w.lastSync, Visits: w.visits}
	w.mu.Unlock()

	select {
	case out <- upd:
	case <-ctx.Done():
	}
}
