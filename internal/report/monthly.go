package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

var (
	monthlyHeaders = []string{"Date", "Households", "USDA Units", "Notes"}
	monthlyWidths  = []float64{40, 35, 35, 75.9}
)

// BuildMonthlyPDF renders the USDA monthly report: a cover summary followed
// by one table row per calendar day and a closing totals row. Operator-
// declared manual days appear with zero counts and a note. Pagination and
// footer numbering follow the daily report's rules.
func BuildMonthlyPDF(o *org.Org, monthKey string, visits []*visit.Visit, manualDays []string) ([]byte, error) {
	byDay := GroupByDay(visits)
	totals := TotalsForMonth(visits)
	undup := UnduplicatedFirstTime(visits)

	days := DayKeysForCalendar(visits, manualDays)
	sort.Strings(days)

	pdf := newLetterPDF()
	pdf.AddPage()

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, "USDA Monthly Report", "0", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, o.Name, "0", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, datekey.MonthLabel(monthKey), "0", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().Format("January 2, 2006 3:04 PM")), "0", 1, "C", false, 0, "")
	if o.Preparer != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Prepared by %s", o.Preparer), "0", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	summary := []string{
		fmt.Sprintf("Total households served: %d", totals.TotalHouseholds),
		fmt.Sprintf("Total USDA units: %d", totals.TotalUSDAUnits),
		fmt.Sprintf("Active days: %d, averaging %.1f units per active day", totals.ActiveDayCount, totals.AveragePerActiveDay),
		fmt.Sprintf("Unduplicated first-time households: %d (%d persons)", undup.Households, undup.Persons),
	}
	for _, line := range summary {
		pdf.CellFormat(0, 6, line, "0", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	tableHeader(pdf, monthlyHeaders, monthlyWidths)

	for _, day := range days {
		breakPage(pdf, monthlyHeaders, monthlyWidths)

		dt := TotalsForDay(byDay[day])
		note := ""
		switch {
		case dt.Visits == 0:
			note = "No visits recorded"
		case dt.FirstTime > 0:
			note = fmt.Sprintf("%d first-time", dt.FirstTime)
		}

		pdf.CellFormat(monthlyWidths[0], rowHeight, day, "1", 0, "L", false, 0, "")
		pdf.CellFormat(monthlyWidths[1], rowHeight, strconv.FormatInt(dt.Households, 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(monthlyWidths[2], rowHeight, strconv.FormatInt(dt.USDAUnits, 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(monthlyWidths[3], rowHeight, note, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	breakPage(pdf, monthlyHeaders, monthlyWidths)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(monthlyWidths[0], rowHeight, "Totals", "1", 0, "L", false, 0, "")
	pdf.CellFormat(monthlyWidths[1], rowHeight, strconv.FormatInt(totals.TotalHouseholds, 10), "1", 0, "C", false, 0, "")
	pdf.CellFormat(monthlyWidths[2], rowHeight, strconv.FormatInt(totals.TotalUSDAUnits, 10), "1", 0, "C", false, 0, "")
	pdf.CellFormat(monthlyWidths[3], rowHeight, fmt.Sprintf("%d active days", totals.ActiveDayCount), "1", 0, "L", false, 0, "")
	pdf.Ln(-1)

	return renderPDF(pdf)
}

// BuildMonthlyCSV renders the raw companion export: one row per visit with
// the same derived first-time and unit values the monthly report sums.
func BuildMonthlyCSV(visits []*visit.Visit) []byte {
	records := make([]*Record, 0, len(visits))
	for _, v := range visits {
		rec := NewRecord()
		rec.Set("date", v.EffectiveDay())
		rec.Set("month", v.MonthKey)
		rec.Set("clientId", v.ClientID)
		rec.Set("householdSize", strconv.FormatInt(v.HouseholdSize, 10))
		rec.Set("firstTime", strconv.FormatBool(v.FirstTime()))
		rec.Set("usdaCount", strconv.FormatInt(v.USDAUnits(), 10))
		records = append(records, rec)
	}
	return BuildCSV(records)
}
