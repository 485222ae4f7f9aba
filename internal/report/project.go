package report

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// titleName uppercases the first letter of each name part without touching
// the rest, so intake data typed as "ada lovelace" prints as "Ada Lovelace"
// while "McDonald" survives. Casers are stateful, so each call builds its own.
func titleName(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// Row is one export/display line derived from a visit and, when available,
// its live client profile.
type Row struct {
	DateKey   string `json:"date_key"`
	Time      string `json:"time"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	County    string `json:"county"`
	Zip       string `json:"zip"`
	Household int64  `json:"household"`
	FirstTime bool   `json:"first_time"`
	USDAUnits int64  `json:"usda_units"`
}

// ProjectRow builds the row for one visit. The joined profile wins for the
// display name; the visit's snapshot fields win for address, county, and zip
// because the profile may have changed, or been deleted, since the visit was
// recorded. A row with no resolvable name renders empty rather than leaking
// an internal id into an export.
func ProjectRow(v *visit.Visit, c *client.Client) Row {
	name := ""
	if c != nil {
		name = c.FullName()
	}
	if name == "" {
		name = v.SnapshotName()
	}
	name = titleName(name)

	address := v.ClientAddress
	county := v.ClientCounty
	zip := v.ClientZip
	if c != nil {
		if address == "" {
			address = c.Address
		}
		if county == "" {
			county = c.County
		}
		if zip == "" {
			zip = c.Zip
		}
	}

	return Row{
		DateKey:   v.EffectiveDay(),
		Time:      v.VisitAt.Local().Format("3:04 PM"),
		Name:      name,
		Address:   address,
		County:    county,
		Zip:       zip,
		Household: v.HouseholdSize,
		FirstTime: v.FirstTime(),
		USDAUnits: v.USDAUnits(),
	}
}

// Record renders the row as an ordered CSV record.
func (r Row) Record() *Record {
	rec := NewRecord()
	rec.Set("date", r.DateKey)
	rec.Set("time", r.Time)
	rec.Set("name", r.Name)
	rec.Set("address", r.Address)
	rec.Set("county", r.County)
	rec.Set("zip", r.Zip)
	rec.Set("householdSize", strconv.FormatInt(r.Household, 10))
	rec.Set("firstTime", strconv.FormatBool(r.FirstTime))
	rec.Set("usdaUnits", strconv.FormatInt(r.USDAUnits, 10))
	return rec
}

// ClientSource supplies client profiles for row projection. Lookups are
// batched and a partial result with an error is still usable.
type ClientSource interface {
	GetBatch(ctx context.Context, ids []string) (map[string]*client.Client, error)
}

// Projector joins visits with their client profiles to produce export rows.
type Projector struct {
	clients ClientSource
}

// NewProjector creates a projector over the given profile source.
func NewProjector(clients ClientSource) *Projector {
	return &Projector{clients: clients}
}

// Rows projects every visit in input order. A failed profile lookup degrades
// the affected rows to their snapshot fields, never aborts the projection.
func (p *Projector) Rows(ctx context.Context, visits []*visit.Visit) []Row {
	ids := make([]string, 0, len(visits))
	for _, v := range visits {
		if v.ClientID != "" {
			ids = append(ids, v.ClientID)
		}
	}

	var found map[string]*client.Client
	if p.clients != nil && len(ids) > 0 {
		var err error
		found, err = p.clients.GetBatch(ctx, ids)
		if err != nil {
			slog.Warn("client lookup degraded, falling back to visit snapshots", "error", err)
		}
	}

	rows := make([]Row, 0, len(visits))
	for _, v := range visits {
		row := ProjectRow(v, found[v.ClientID])
		if row.Name == "" {
			slog.Warn("visit has no resolvable client name", "visit", v.ID)
		}
		rows = append(rows, row)
	}
	return rows
}
