// Package visit provides the service visit domain model and data access.
package visit

import (
	"strings"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
)

// Visit represents one household served on one calendar day. The client_*
// fields are a snapshot taken at record time; the live client profile may
// change or be deleted afterward without rewriting history.
type Visit struct {
	ID              string    `json:"id"`
	OrgID           string    `json:"org_id"`
	LocationID      string    `json:"location_id,omitempty"`
	ClientID        string    `json:"client_id"`
	DateKey         string    `json:"date_key"`  // YYYY-MM-DD
	MonthKey        string    `json:"month_key"` // YYYY-MM
	VisitAt         time.Time `json:"visit_at"`
	HouseholdSize   int64     `json:"household_size"`
	USDAFirstTime   *bool     `json:"usda_first_time,omitempty"`
	USDACount       *int64    `json:"usda_count,omitempty"`
	ClientFirstName string    `json:"client_first_name,omitempty"`
	ClientLastName  string    `json:"client_last_name,omitempty"`
	ClientAddress   string    `json:"client_address,omitempty"`
	ClientCounty    string    `json:"client_county,omitempty"`
	ClientZip       string    `json:"client_zip,omitempty"`
	AddedByReports  bool      `json:"added_by_reports,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FirstTime reports whether the first-USDA-visit-of-month flag is set true.
func (v *Visit) FirstTime() bool {
	return v.USDAFirstTime != nil && *v.USDAFirstTime
}

// USDAUnits returns the USDA units this visit contributes: the explicit
// count when present, otherwise 1 for a first-time visit and 0 for the rest.
func (v *Visit) USDAUnits() int64 {
	if v.USDACount != nil {
		return *v.USDACount
	}
	if v.FirstTime() {
		return 1
	}
	return 0
}

// EffectiveDay returns the grouping day for the visit: DateKey when present,
// otherwise the local calendar day of the precise timestamp.
func (v *Visit) EffectiveDay() string {
	if v.DateKey != "" {
		return v.DateKey
	}
	return datekey.Day(v.VisitAt)
}

// SnapshotName joins the snapshot name fields captured at record time.
func (v *Visit) SnapshotName() string {
	return strings.TrimSpace(v.ClientFirstName + " " + v.ClientLastName)
}
