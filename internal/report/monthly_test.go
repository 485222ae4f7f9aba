package report

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

func TestBuildMonthlyPDF(t *testing.T) {
	visits := []*visit.Visit{
		flagged(mkVisit("c1", "2024-06-03", 4)),
		mkVisit("c2", "2024-06-03", 2),
		counted(mkVisit("c3", "2024-06-10", 3), 2),
	}

	out, err := BuildMonthlyPDF(testOrg(), "2024-06", visits, []string{"2024-06-15"})
	if err != nil {
		t.Fatalf("build monthly pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
	if got := pageCount(out); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}
}

func TestBuildMonthlyPDFEmptyMonth(t *testing.T) {
	out, err := BuildMonthlyPDF(testOrg(), "2024-06", nil, nil)
	if err != nil {
		t.Fatalf("build monthly pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestBuildMonthlyPDFPaginates(t *testing.T) {
	days := make([]string, 0, 31)
	for d := 1; d <= 31; d++ {
		days = append(days, fmt.Sprintf("2024-01-%02d", d))
	}

	out, err := BuildMonthlyPDF(testOrg(), "2024-01", nil, days)
	if err != nil {
		t.Fatalf("build monthly pdf: %v", err)
	}
	if got := pageCount(out); got < 2 {
		t.Errorf("page count = %d, want at least 2 for a 31-day calendar", got)
	}
}

func TestBuildMonthlyCSV(t *testing.T) {
	visits := []*visit.Visit{
		flagged(mkVisit("c1", "2024-06-03", 4)),
		counted(mkVisit("c2", "2024-06-10", 3), 2),
		mkVisit("c3", "2024-06-10", 5),
	}

	expected := `"date","month","clientId","householdSize","firstTime","usdaCount"` + "\n" +
		`"2024-06-03","2024-06","c1","4","true","1"` + "\n" +
		`"2024-06-10","2024-06","c2","3","false","2"` + "\n" +
		`"2024-06-10","2024-06","c3","5","false","0"`

	if got := string(BuildMonthlyCSV(visits)); got != expected {
		t.Errorf("monthly csv = %q, want %q", got, expected)
	}
}

func TestBuildMonthlyCSVEmpty(t *testing.T) {
	if got := BuildMonthlyCSV(nil); len(got) != 0 {
		t.Errorf("monthly csv for no visits = %q, want empty", got)
	}
}
