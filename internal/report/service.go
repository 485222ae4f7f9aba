package report

import (
	"context"
	"fmt"

	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/ledger"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// Service composes the visit store, the client registry, the org registry,
// and the manual-day ledger into report and export operations.
type Service struct {
	visits    *visit.Repository
	orgs      *org.Repository
	manual    *ledger.Ledger
	projector *Projector
}

// NewService creates a report service.
func NewService(visits *visit.Repository, clients *client.Repository, orgs *org.Repository, manual *ledger.Ledger) *Service {
	return &Service{
		visits:    visits,
		orgs:      orgs,
		manual:    manual,
		projector: NewProjector(clients),
	}
}

// Export is a named artifact ready to download, attach, or write to disk.
type Export struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Content  []byte `json:"content"`
}

// EffectiveCalendarDays returns every day the month view should show: days
// with visits plus operator-declared manual days, most recent first.
func (s *Service) EffectiveCalendarDays(sc scope.Scope, monthKey string) ([]string, error) {
	visits, err := s.visits.ListMonth(sc, monthKey)
	if err != nil {
		return nil, fmt.Errorf("listing month visits: %w", err)
	}
	return DayKeysForCalendar(visits, s.manual.Load(sc, monthKey)), nil
}

// MonthSummary bundles everything the month dashboard shows.
type MonthSummary struct {
	MonthKey  string       `json:"month_key"`
	Days      []string     `json:"days"`
	Totals    MonthTotals  `json:"totals"`
	FirstTime Unduplicated `json:"first_time"`
	Series    []DayPoint   `json:"series"`
	Split     Split        `json:"split"`
}

// Summarize aggregates an already-loaded month of visits into the summary
// the dashboard shows. Live views that hold their own visit snapshots use
// this directly.
func Summarize(monthKey string, visits []*visit.Visit, manualDays []string) *MonthSummary {
	return &MonthSummary{
		MonthKey:  monthKey,
		Days:      DayKeysForCalendar(visits, manualDays),
		Totals:    TotalsForMonth(visits),
		FirstTime: UnduplicatedFirstTime(visits),
		Series:    DaySeries(visits),
		Split:     USDASplit(visits),
	}
}

// Month loads and aggregates one month for display.
func (s *Service) Month(sc scope.Scope, monthKey string) (*MonthSummary, error) {
	visits, err := s.visits.ListMonth(sc, monthKey)
	if err != nil {
		return nil, fmt.Errorf("listing month visits: %w", err)
	}
	return Summarize(monthKey, visits, s.manual.Load(sc, monthKey)), nil
}

// DayRows lists one day of visits, newest first, projected to export rows.
func (s *Service) DayRows(ctx context.Context, sc scope.Scope, dateKey string) ([]Row, error) {
	visits, err := s.visits.ListDay(sc, dateKey)
	if err != nil {
		return nil, fmt.Errorf("listing day visits: %w", err)
	}
	return s.projector.Rows(ctx, visits), nil
}

// DayCSV builds the raw CSV export for one day.
func (s *Service) DayCSV(ctx context.Context, sc scope.Scope, dateKey string) (*Export, error) {
	rows, err := s.DayRows(ctx, sc, dateKey)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return &Export{
		Filename: DayCSVName(dateKey),
		MIME:     "text/csv; charset=utf-8",
		Content:  BuildCSV(records),
	}, nil
}

// DayPDF builds the EFAP daily sheet for one day.
func (s *Service) DayPDF(ctx context.Context, sc scope.Scope, dateKey string) (*Export, error) {
	o, err := s.orgs.GetOrg(sc.OrgID)
	if err != nil {
		return nil, fmt.Errorf("loading org: %w", err)
	}
	rows, err := s.DayRows(ctx, sc, dateKey)
	if err != nil {
		return nil, err
	}
	content, err := BuildDailyPDF(o, dateKey, rows)
	if err != nil {
		return nil, err
	}
	return &Export{Filename: DailyPDFName(dateKey, o), MIME: "application/pdf", Content: content}, nil
}

// MonthCSV builds the raw USDA companion export for one month.
func (s *Service) MonthCSV(sc scope.Scope, monthKey string) (*Export, error) {
	visits, err := s.visits.ListMonth(sc, monthKey)
	if err != nil {
		return nil, fmt.Errorf("listing month visits: %w", err)
	}
	return &Export{
		Filename: MonthCSVName(monthKey),
		MIME:     "text/csv; charset=utf-8",
		Content:  BuildMonthlyCSV(visits),
	}, nil
}

// MonthPDF builds the USDA monthly report for one month.
func (s *Service) MonthPDF(sc scope.Scope, monthKey string) (*Export, error) {
	o, err := s.orgs.GetOrg(sc.OrgID)
	if err != nil {
		return nil, fmt.Errorf("loading org: %w", err)
	}
	visits, err := s.visits.ListMonth(sc, monthKey)
	if err != nil {
		return nil, fmt.Errorf("listing month visits: %w", err)
	}
	content, err := BuildMonthlyPDF(o, monthKey, visits, s.manual.Load(sc, monthKey))
	if err != nil {
		return nil, err
	}
	return &Export{Filename: MonthlyPDFName(monthKey), MIME: "application/pdf", Content: content}, nil
}

// DeleteDay removes every visit on the day in batches, clears the first-time
// markers those visits held, and drops the day from the manual ledger.
// Returns the number of visits deleted; on a partial batch failure the count
// covers the confirmed deletions and the day's ledger entry is kept so the
// operation can be rerun.
func (s *Service) DeleteDay(ctx context.Context, sc scope.Scope, dateKey string) (int, error) {
	if !datekey.ValidDay(dateKey) {
		return 0, fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
	}

	deleted, err := s.visits.DeleteDay(ctx, sc, dateKey)
	if err != nil {
		return deleted, err
	}

	monthKey, err := datekey.MonthOf(dateKey)
	if err != nil {
		return deleted, fmt.Errorf("deriving month: %w", err)
	}
	if err := s.manual.Remove(sc, monthKey, dateKey); err != nil {
		return deleted, fmt.Errorf("pruning manual day: %w", err)
	}
	return deleted, nil
}
