package report

import (
	"fmt"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/org"
)

// DayCSVName names the raw visit export for one day.
func DayCSVName(dateKey string) string {
	return fmt.Sprintf("visits_%s.csv", dateKey)
}

// MonthCSVName names the raw USDA companion export for one month.
func MonthCSVName(monthKey string) string {
	return fmt.Sprintf("USDA_Monthly_%s.csv", monthKey)
}

// DailyPDFName names the EFAP daily sheet using the org's brand token.
func DailyPDFName(dateKey string, o *org.Org) string {
	return fmt.Sprintf("EFAP_Daily_%s_%s.pdf", dateKey, o.BrandToken())
}

// MonthlyPDFName names the USDA monthly report with the spelled-out month,
// e.g. "EFAP_Monthly_June 2024.pdf".
func MonthlyPDFName(monthKey string) string {
	return fmt.Sprintf("EFAP_Monthly_%s.pdf", datekey.MonthLabel(monthKey))
}
