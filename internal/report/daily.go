package report

import (
	"fmt"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/org"
)

var (
	dailyHeaders = []string{"Name", "County / Address", "Zip", "Household", "First Time"}
	dailyWidths  = []float64{54, 66, 22, 22, 21.9}
)

// BuildDailyPDF renders the EFAP daily sheet for one day: a branded header,
// one line per visit, and a totals line. Column headings repeat on every
// page and every page carries a number in the footer.
func BuildDailyPDF(o *org.Org, dateKey string, rows []Row) ([]byte, error) {
	pdf := newLetterPDF()
	pdf.AddPage()

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, "EFAP Daily Report", "0", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, o.Name, "0", 1, "C", false, 0, "")
	if block := o.AddressBlock(); block != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, block, "0", 1, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, dateLabel(dateKey), "0", 1, "C", false, 0, "")
	pdf.Ln(4)

	tableHeader(pdf, dailyHeaders, dailyWidths)

	var households int64
	firstTime := 0
	for _, row := range rows {
		breakPage(pdf, dailyHeaders, dailyWidths)

		place := row.County
		if place == "" {
			place = row.Address
		}
		flag := ""
		if row.FirstTime {
			flag = "Yes"
		}

		pdf.CellFormat(dailyWidths[0], rowHeight, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(dailyWidths[1], rowHeight, place, "1", 0, "L", false, 0, "")
		pdf.CellFormat(dailyWidths[2], rowHeight, row.Zip, "1", 0, "C", false, 0, "")
		pdf.CellFormat(dailyWidths[3], rowHeight, fmt.Sprintf("%d", row.Household), "1", 0, "C", false, 0, "")
		pdf.CellFormat(dailyWidths[4], rowHeight, flag, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)

		households += row.Household
		if row.FirstTime {
			firstTime++
		}
	}

	breakPage(pdf, dailyHeaders, dailyWidths)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(dailyWidths[0], rowHeight, fmt.Sprintf("Totals (%d visits)", len(rows)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(dailyWidths[1], rowHeight, "", "1", 0, "L", false, 0, "")
	pdf.CellFormat(dailyWidths[2], rowHeight, "", "1", 0, "C", false, 0, "")
	pdf.CellFormat(dailyWidths[3], rowHeight, fmt.Sprintf("%d", households), "1", 0, "C", false, 0, "")
	pdf.CellFormat(dailyWidths[4], rowHeight, fmt.Sprintf("%d", firstTime), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	return renderPDF(pdf)
}

// dateLabel spells out a date key like "Monday, June 3, 2024". Malformed
// input passes through unchanged.
func dateLabel(dateKey string) string {
	t, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return dateKey
	}
	return t.Format("Monday, January 2, 2006")
}
