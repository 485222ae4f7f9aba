// Package ledger maintains the manual-day ledger: operator-declared empty
// days persisted per (org, location, month) scope, independently of the
// visit store.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

// Store persists raw ledger payloads by scope key. Implementations can be
// swapped without touching ledger behavior or aggregation.
type Store interface {
	// Read returns the payload for a key and whether one exists.
	Read(key string) ([]byte, bool, error)
	// Write replaces the payload for a key.
	Write(key string, payload []byte) error
	// Delete drops the payload for a key.
	Delete(key string) error
}

// Ledger reads and writes manual-day sets through a Store.
type Ledger struct {
	store Store
}

// New creates a ledger over the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Load returns the manual days for the scope and month, sorted newest
// first. A missing, unreadable, or malformed payload is an empty set,
// never an error; entries that are not valid day keys inside the month are
// dropped.
func (l *Ledger) Load(s scope.Scope, monthKey string) []string {
	raw, ok, err := l.store.Read(s.Key(monthKey))
	if err != nil || !ok {
		return []string{}
	}

	var days []string
	if err := json.Unmarshal(raw, &days); err != nil {
		return []string{}
	}

	return normalize(days, monthKey)
}

// Add records a manual day after validating its format and month
// membership. Adding a day already in the set changes nothing.
func (l *Ledger) Add(s scope.Scope, monthKey, dateKey string) error {
	if !datekey.ValidDay(dateKey) {
		return fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
	}
	if !datekey.InMonth(dateKey, monthKey) {
		return fmt.Errorf("day %s is outside month %s", dateKey, monthKey)
	}

	days := l.Load(s, monthKey)
	for _, d := range days {
		if d == dateKey {
			return nil
		}
	}
	days = append(days, dateKey)

	return l.persist(s, monthKey, days)
}

// Remove drops a manual day from the set. The day's visits, if any, are
// untouched: deleting data and removing the placeholder are separate
// operations composed by the caller. Removing an absent day is a no-op.
func (l *Ledger) Remove(s scope.Scope, monthKey, dateKey string) error {
	days := l.Load(s, monthKey)

	kept := make([]string, 0, len(days))
	for _, d := range days {
		if d != dateKey {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(days) {
		return nil
	}
	if len(kept) == 0 {
		if err := l.store.Delete(s.Key(monthKey)); err != nil {
			return fmt.Errorf("deleting manual days: %w", err)
		}
		return nil
	}

	return l.persist(s, monthKey, kept)
}

// persist writes the normalized set for a scope and month.
func (l *Ledger) persist(s scope.Scope, monthKey string, days []string) error {
	payload, err := json.Marshal(normalize(days, monthKey))
	if err != nil {
		return fmt.Errorf("encoding manual days: %w", err)
	}
	if err := l.store.Write(s.Key(monthKey), payload); err != nil {
		return fmt.Errorf("persisting manual days: %w", err)
	}
	return nil
}

// normalize dedupes, drops out-of-month entries, and sorts newest first.
func normalize(days []string, monthKey string) []string {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if !datekey.ValidDay(d) || !datekey.InMonth(d, monthKey) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
