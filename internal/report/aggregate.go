// Package report turns scoped visit sets into the aggregate views and
// export artifacts behind the EFAP daily and USDA monthly reports. Every
// function here is a pure function of its input so the live feed can re-run
// them from scratch on each push.
package report

import (
	"math"
	"sort"

	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// DayTotals summarizes the visits of one calendar day.
type DayTotals struct {
	Visits     int   `json:"visits"`
	Households int64 `json:"households"`
	FirstTime  int   `json:"first_time"`
	USDAUnits  int64 `json:"usda_units"`
}

// MonthTotals summarizes a full month of visits.
type MonthTotals struct {
	TotalHouseholds     int64   `json:"total_households"`
	TotalUSDAUnits      int64   `json:"total_usda_units"`
	ActiveDayCount      int     `json:"active_day_count"`
	AveragePerActiveDay float64 `json:"average_per_active_day"`
}

// Unduplicated counts each first-time client once for the month, attributed
// to the earliest day they were flagged.
type Unduplicated struct {
	Households int64 `json:"households"`
	Persons    int64 `json:"persons"`
}

// GroupByDay buckets visits by their effective day. Input order is kept
// within each bucket; callers that need newest-first pass visits already
// sorted that way.
func GroupByDay(visits []*visit.Visit) map[string][]*visit.Visit {
	byDay := make(map[string][]*visit.Visit)
	for _, v := range visits {
		day := v.EffectiveDay()
		byDay[day] = append(byDay[day], v)
	}
	return byDay
}

// TotalsForDay sums one day bucket. A visit with no recorded household size
// contributes zero members.
func TotalsForDay(visits []*visit.Visit) DayTotals {
	var t DayTotals
	for _, v := range visits {
		t.Visits++
		t.Households += v.HouseholdSize
		t.USDAUnits += v.USDAUnits()
		if v.FirstTime() {
			t.FirstTime++
		}
	}
	return t
}

// TotalsForMonth sums a month of visits. The average divides total USDA
// units by the count of visit-bearing days, rounded to one decimal place;
// an empty month yields zero, never a division error. Manual ledger days
// are not active days and never enter the average.
func TotalsForMonth(visits []*visit.Visit) MonthTotals {
	var t MonthTotals
	days := make(map[string]bool)
	for _, v := range visits {
		t.TotalHouseholds += v.HouseholdSize
		t.TotalUSDAUnits += v.USDAUnits()
		days[v.EffectiveDay()] = true
	}
	t.ActiveDayCount = len(days)

	divisor := t.ActiveDayCount
	if divisor < 1 {
		divisor = 1
	}
	t.AveragePerActiveDay = round1(float64(t.TotalUSDAUnits) / float64(divisor))
	return t
}

// UnduplicatedFirstTime groups first-time-flagged visits by client and keeps
// only the earliest day per client, so a client flagged on two days in the
// same month counts once. Households is the number of distinct clients kept;
// Persons sums the household sizes of the kept visits.
func UnduplicatedFirstTime(visits []*visit.Visit) Unduplicated {
	earliest := make(map[string]*visit.Visit)
	for _, v := range visits {
		if !v.FirstTime() {
			continue
		}
		prev, ok := earliest[v.ClientID]
		if !ok || v.EffectiveDay() < prev.EffectiveDay() {
			earliest[v.ClientID] = v
		}
	}

	var u Unduplicated
	for _, v := range earliest {
		u.Households++
		u.Persons += v.HouseholdSize
	}
	return u
}

// DayKeysForCalendar returns the union of visit-bearing days and manual
// ledger days, most recent first.
func DayKeysForCalendar(visits []*visit.Visit, manualDays []string) []string {
	seen := make(map[string]bool)
	for _, v := range visits {
		seen[v.EffectiveDay()] = true
	}
	for _, day := range manualDays {
		seen[day] = true
	}

	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days
}

// DayPoint is one day of the month series consumed by dashboard charts.
type DayPoint struct {
	DateKey    string `json:"date_key"`
	Visits     int    `json:"visits"`
	Households int64  `json:"households"`
	USDAUnits  int64  `json:"usda_units"`
}

// DaySeries returns per-day totals in ascending day order.
func DaySeries(visits []*visit.Visit) []DayPoint {
	byDay := GroupByDay(visits)

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]DayPoint, 0, len(days))
	for _, day := range days {
		t := TotalsForDay(byDay[day])
		series = append(series, DayPoint{
			DateKey:    day,
			Visits:     t.Visits,
			Households: t.Households,
			USDAUnits:  t.USDAUnits,
		})
	}
	return series
}

// Split divides a month's visits into first-time and returning counts.
type Split struct {
	FirstTime int `json:"first_time"`
	Returning int `json:"returning"`
}

// USDASplit counts visits on each side of the first-time flag.
func USDASplit(visits []*visit.Visit) Split {
	var s Split
	for _, v := range visits {
		if v.FirstTime() {
			s.FirstTime++
		} else {
			s.Returning++
		}
	}
	return s
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
