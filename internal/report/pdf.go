package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Letter geometry in millimeters. The printable width between margins is
// 185.9mm; rows drawn past breakAt move to a fresh page first.
const (
	pageMargin = 15.0
	breakAt    = 250.0
	rowHeight  = 8.0
)

func newLetterPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "0", 0, "C", false, 0, "")
	})
	return pdf
}

func setTableHeaderStyle(pdf *gofpdf.Fpdf) {
	pdf.SetFillColor(34, 84, 61)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(210, 210, 210)
	pdf.SetFont("Arial", "B", 9)
}

func setTableBodyStyle(pdf *gofpdf.Fpdf) {
	pdf.SetFillColor(255, 255, 255)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(210, 210, 210)
	pdf.SetFont("Arial", "", 9)
}

// tableHeader draws the column heading row and leaves the body style active.
func tableHeader(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	setTableHeaderStyle(pdf)
	for i, h := range headers {
		pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	setTableBodyStyle(pdf)
}

// breakPage starts a new page and repeats the column headings when the next
// row would cross the bottom threshold.
func breakPage(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	if pdf.GetY()+rowHeight < breakAt {
		return
	}
	pdf.AddPage()
	tableHeader(pdf, headers, widths)
}

func renderPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}
