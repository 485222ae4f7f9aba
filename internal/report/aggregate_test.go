package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

func mkVisit(clientID, dateKey string, household int64) *visit.Visit {
	return &visit.Visit{
		ID:            "v-" + clientID + "-" + dateKey,
		OrgID:         "org-1",
		ClientID:      clientID,
		DateKey:       dateKey,
		MonthKey:      "2024-06",
		HouseholdSize: household,
	}
}

func flagged(v *visit.Visit) *visit.Visit {
	yes := true
	v.USDAFirstTime = &yes
	return v
}

func counted(v *visit.Visit, n int64) *visit.Visit {
	v.USDACount = &n
	return v
}

func TestGroupByDay(t *testing.T) {
	derived := mkVisit("c3", "", 1)
	derived.VisitAt = time.Date(2024, 6, 10, 14, 30, 0, 0, time.Local)

	visits := []*visit.Visit{
		mkVisit("c1", "2024-06-03", 4),
		mkVisit("c2", "2024-06-03", 2),
		derived,
	}

	byDay := GroupByDay(visits)
	if len(byDay) != 2 {
		t.Fatalf("got %d day buckets, want 2", len(byDay))
	}
	if len(byDay["2024-06-03"]) != 2 {
		t.Errorf("2024-06-03 bucket has %d visits, want 2", len(byDay["2024-06-03"]))
	}
	if len(byDay["2024-06-10"]) != 1 {
		t.Errorf("2024-06-10 bucket has %d visits, want 1 (derived from timestamp)", len(byDay["2024-06-10"]))
	}
}

func TestTotalsForDay(t *testing.T) {
	visits := []*visit.Visit{
		flagged(mkVisit("c1", "2024-06-03", 4)),
		mkVisit("c2", "2024-06-03", 2),
		counted(mkVisit("c3", "2024-06-03", 0), 3),
	}

	got := TotalsForDay(visits)
	want := DayTotals{Visits: 3, Households: 6, FirstTime: 1, USDAUnits: 4}
	if got != want {
		t.Errorf("TotalsForDay = %+v, want %+v", got, want)
	}
}

func TestTotalsForMonthScenario(t *testing.T) {
	visits := []*visit.Visit{
		flagged(mkVisit("c1", "2024-06-03", 4)),
		mkVisit("c2", "2024-06-03", 2),
		counted(mkVisit("c3", "2024-06-10", 3), 2),
	}

	got := TotalsForMonth(visits)
	if got.TotalHouseholds != 9 {
		t.Errorf("TotalHouseholds = %d, want 9", got.TotalHouseholds)
	}
	if got.TotalUSDAUnits != 3 {
		t.Errorf("TotalUSDAUnits = %d, want 3", got.TotalUSDAUnits)
	}
	if got.ActiveDayCount != 2 {
		t.Errorf("ActiveDayCount = %d, want 2", got.ActiveDayCount)
	}
	if got.AveragePerActiveDay != 1.5 {
		t.Errorf("AveragePerActiveDay = %v, want 1.5", got.AveragePerActiveDay)
	}
}

func TestTotalsForMonthAverage(t *testing.T) {
	// 10 units spread over 4 active days.
	visits := []*visit.Visit{
		counted(mkVisit("c1", "2024-06-01", 1), 3),
		counted(mkVisit("c2", "2024-06-05", 1), 3),
		counted(mkVisit("c3", "2024-06-12", 1), 2),
		counted(mkVisit("c4", "2024-06-20", 1), 2),
	}

	got := TotalsForMonth(visits)
	if got.ActiveDayCount != 4 {
		t.Fatalf("ActiveDayCount = %d, want 4", got.ActiveDayCount)
	}
	if got.AveragePerActiveDay != 2.5 {
		t.Errorf("AveragePerActiveDay = %v, want 2.5", got.AveragePerActiveDay)
	}
}

func TestTotalsForMonthEmpty(t *testing.T) {
	got := TotalsForMonth(nil)
	want := MonthTotals{}
	if got != want {
		t.Errorf("TotalsForMonth(nil) = %+v, want all zeros", got)
	}
}

func TestTotalsForMonthIdempotent(t *testing.T) {
	visits := []*visit.Visit{
		flagged(mkVisit("c1", "2024-06-03", 4)),
		counted(mkVisit("c2", "2024-06-10", 3), 2),
	}

	first := TotalsForMonth(visits)
	second := TotalsForMonth(visits)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs: %+v then %+v", first, second)
	}
}

func TestUnduplicatedFirstTime(t *testing.T) {
	// c1 is flagged twice in the month, a data anomaly the aggregator must
	// tolerate: only the earliest day counts.
	visits := []*visit.Visit{
		flagged(mkVisit("c1", "2024-06-05", 4)),
		flagged(mkVisit("c1", "2024-06-02", 5)),
		flagged(mkVisit("c2", "2024-06-07", 2)),
		mkVisit("c3", "2024-06-07", 6),
	}

	got := UnduplicatedFirstTime(visits)
	if got.Households != 2 {
		t.Errorf("Households = %d, want 2", got.Households)
	}
	if got.Persons != 7 {
		t.Errorf("Persons = %d, want 7 (5 from c1's earliest day, 2 from c2)", got.Persons)
	}
}

func TestUnduplicatedFirstTimeEmpty(t *testing.T) {
	got := UnduplicatedFirstTime(nil)
	if got.Households != 0 || got.Persons != 0 {
		t.Errorf("UnduplicatedFirstTime(nil) = %+v, want zeros", got)
	}
}

func TestDayKeysForCalendar(t *testing.T) {
	visits := []*visit.Visit{mkVisit("c1", "2024-02-10", 1)}
	manual := []string{"2024-02-20"}

	got := DayKeysForCalendar(visits, manual)
	want := []string{"2024-02-20", "2024-02-10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DayKeysForCalendar = %v, want %v", got, want)
	}
}

func TestDayKeysForCalendarDedupes(t *testing.T) {
	visits := []*visit.Visit{
		mkVisit("c1", "2024-06-03", 1),
		mkVisit("c2", "2024-06-03", 1),
	}
	manual := []string{"2024-06-03", "2024-06-15"}

	got := DayKeysForCalendar(visits, manual)
	want := []string{"2024-06-15", "2024-06-03"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DayKeysForCalendar = %v, want %v", got, want)
	}
}

func TestDaySeries(t *testing.T) {
	visits := []*visit.Visit{
		counted(mkVisit("c1", "2024-06-10", 3), 2),
		flagged(mkVisit("c2", "2024-06-03", 4)),
		mkVisit("c3", "2024-06-03", 2),
	}

	got := DaySeries(visits)
	want := []DayPoint{
		{DateKey: "2024-06-03", Visits: 2, Households: 6, USDAUnits: 1},
		{DateKey: "2024-06-10", Visits: 1, Households: 3, USDAUnits: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DaySeries = %+v, want %+v", got, want)
	}
}

func TestUSDASplit(t *testing.T) {
	visits := []*visit.Visit{
		flagged(mkVisit("c1", "2024-06-03", 4)),
		mkVisit("c2", "2024-06-03", 2),
		mkVisit("c3", "2024-06-10", 3),
	}

	got := USDASplit(visits)
	if got.FirstTime != 1 || got.Returning != 2 {
		t.Errorf("USDASplit = %+v, want {FirstTime:1 Returning:2}", got)
	}
}
