package datekey

import (
	"testing"
	"time"
)

func TestDayAndMonth(t *testing.T) {
	ts := time.Date(2024, 6, 3, 14, 30, 0, 0, time.Local)

	if got := Day(ts); got != "2024-06-03" {
		t.Errorf("Day = %q, want %q", got, "2024-06-03")
	}
	if got := Month(ts); got != "2024-06" {
		t.Errorf("Month = %q, want %q", got, "2024-06")
	}
}

func TestValidDay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid", "2024-06-03", true},
		{"leap day", "2024-02-29", true},
		{"non leap feb 29", "2023-02-29", false},
		{"month out of range", "2024-13-01", false},
		{"day out of range", "2024-06-31", false},
		{"unpadded", "2024-6-3", false},
		{"trailing text", "2024-06-03x", false},
		{"month key", "2024-06", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidDay(tt.input); got != tt.expected {
				t.Errorf("ValidDay(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid", "2024-06", true},
		{"december", "2024-12", true},
		{"month out of range", "2024-00", false},
		{"unpadded", "2024-6", false},
		{"day key", "2024-06-03", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidMonth(tt.input); got != tt.expected {
				t.Errorf("ValidMonth(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMonthOf(t *testing.T) {
	got, err := MonthOf("2024-06-03")
	if err != nil {
		t.Fatalf("MonthOf: %v", err)
	}
	if got != "2024-06" {
		t.Errorf("MonthOf = %q, want %q", got, "2024-06")
	}

	if _, err := MonthOf("garbage"); err == nil {
		t.Error("expected error for malformed date key")
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name     string
		monthKey string
		start    string
		end      string
	}{
		{"thirty days", "2024-06", "2024-06-01", "2024-06-30"},
		{"thirty one days", "2024-07", "2024-07-01", "2024-07-31"},
		{"leap february", "2024-02", "2024-02-01", "2024-02-29"},
		{"plain february", "2023-02", "2023-02-01", "2023-02-28"},
		{"year end", "2024-12", "2024-12-01", "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := MonthRange(tt.monthKey)
			if err != nil {
				t.Fatalf("MonthRange(%q): %v", tt.monthKey, err)
			}
			if start != tt.start || end != tt.end {
				t.Errorf("MonthRange(%q) = %q..%q, want %q..%q", tt.monthKey, start, end, tt.start, tt.end)
			}
		})
	}

	if _, _, err := MonthRange("2024"); err == nil {
		t.Error("expected error for malformed month key")
	}
}

func TestInMonth(t *testing.T) {
	tests := []struct {
		name     string
		dateKey  string
		monthKey string
		expected bool
	}{
		{"middle of month", "2024-06-15", "2024-06", true},
		{"first day", "2024-06-01", "2024-06", true},
		{"last day", "2024-06-30", "2024-06", true},
		{"prior month", "2024-05-31", "2024-06", false},
		{"next month", "2024-07-01", "2024-06", false},
		{"malformed date", "junk", "2024-06", false},
		{"malformed month", "2024-06-15", "junk", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InMonth(tt.dateKey, tt.monthKey); got != tt.expected {
				t.Errorf("InMonth(%q, %q) = %v, want %v", tt.dateKey, tt.monthKey, got, tt.expected)
			}
		})
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel("2024-06"); got != "June 2024" {
		t.Errorf("MonthLabel = %q, want %q", got, "June 2024")
	}
	if got := MonthLabel("bogus"); got != "bogus" {
		t.Errorf("MonthLabel passthrough = %q, want %q", got, "bogus")
	}
}
