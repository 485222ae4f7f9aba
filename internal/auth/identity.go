// Package auth resolves caller credentials to identities. The platform's
// interactive sign-in lives outside this service; what arrives here is a
// bearer credential, and what the rest of the code consumes is the resolved
// Identity and the data scope it reaches.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

// ErrInvalidCredential is returned when a credential resolves to nobody.
var ErrInvalidCredential = errors.New("invalid credential")

// Identity is a resolved caller: who they are and the organization slice
// their credential reaches.
type Identity struct {
	UID          string   `json:"uid"`
	Email        string   `json:"email,omitempty"`
	Name         string   `json:"name,omitempty"`
	OrgID        string   `json:"org_id"`
	LocationID   string   `json:"location_id,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Has reports whether the identity carries the named capability.
func (id Identity) Has(name string) bool {
	for _, c := range id.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// CanAllLocations reports whether the identity may query across every
// location of its org.
func (id Identity) CanAllLocations() bool {
	return id.Has(scope.CapAllLocations)
}

// ScopeFor builds the query scope for a request. A location-bound identity
// always gets its own location and may not ask for another; an org-wide
// identity gets the requested location, or the whole org when none is
// requested.
func (id Identity) ScopeFor(locationID string) (scope.Scope, error) {
	sc := scope.Scope{OrgID: id.OrgID, Capabilities: id.Capabilities}

	if id.LocationID != "" {
		if locationID != "" && locationID != id.LocationID {
			return scope.Scope{}, fmt.Errorf("credential is bound to location %s", id.LocationID)
		}
		sc.LocationID = id.LocationID
	} else {
		sc.LocationID = locationID
	}

	if err := sc.Validate(); err != nil {
		return scope.Scope{}, err
	}
	return sc, nil
}

// Resolver turns a bearer credential into an Identity.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores the identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity stored by the middleware, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
