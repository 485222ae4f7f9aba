// Package org provides the organization and location registry.
package org

import (
	"strings"
	"time"
)

// Org represents a food bank organization, the tenant that owns clients,
// visits, and report branding.
type Org struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Zip       string    `json:"zip,omitempty"`
	Preparer  string    `json:"preparer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AddressBlock renders the single-line mailing address used in report
// headers, e.g. "123 Harvest Rd, Springfield, IL 62704".
func (o *Org) AddressBlock() string {
	var parts []string
	if o.Address != "" {
		parts = append(parts, o.Address)
	}
	locality := o.City
	if o.State != "" {
		if locality != "" {
			locality += ", " + o.State
		} else {
			locality = o.State
		}
	}
	if o.Zip != "" {
		if locality != "" {
			locality += " " + o.Zip
		} else {
			locality = o.Zip
		}
	}
	if locality != "" {
		parts = append(parts, locality)
	}
	return strings.Join(parts, ", ")
}

// BrandToken returns the org name with whitespace runs collapsed to
// underscores, safe for use inside an export filename.
func (o *Org) BrandToken() string {
	return strings.Join(strings.Fields(o.Name), "_")
}

// Location represents a distribution site within an organization.
type Location struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
