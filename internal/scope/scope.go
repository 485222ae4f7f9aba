// Package scope defines the explicit tenant scope every store query,
// aggregation, and export entry point is keyed by. Scope travels as a
// plain parameter, never as ambient state.
package scope

import (
	"errors"
	"fmt"
)

// Capability names understood by the scope layer.
const (
	CapAllLocations = "org:all-locations"
	CapManageKeys   = "org:manage-keys"
)

// Scope identifies the organization slice a request operates on. An empty
// LocationID means "all locations" and requires the matching capability.
type Scope struct {
	OrgID        string   `json:"org_id"`
	LocationID   string   `json:"location_id,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Has reports whether the scope carries the named capability.
func (s Scope) Has(name string) bool {
	for _, c := range s.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks that the scope can back a store query. Queries must never
// run unscoped, so a missing org or an unauthorized missing location is an
// error before any data access.
func (s Scope) Validate() error {
	if s.OrgID == "" {
		return errors.New("no organization selected")
	}
	if s.LocationID == "" && !s.Has(CapAllLocations) {
		return errors.New("no location selected")
	}
	return nil
}

// Key returns the ledger storage key for this scope and month, in the form
// "<org>|<location>|<month>" with "none" standing in for an empty location.
func (s Scope) Key(monthKey string) string {
	loc := s.LocationID
	if loc == "" {
		loc = "none"
	}
	return fmt.Sprintf("%s|%s|%s", s.OrgID, loc, monthKey)
}

// String renders the scope for log output.
func (s Scope) String() string {
	if s.LocationID == "" {
		return fmt.Sprintf("org=%s", s.OrgID)
	}
	return fmt.Sprintf("org=%s location=%s", s.OrgID, s.LocationID)
}
