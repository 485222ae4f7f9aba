package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shepherdstable/pantry-cloud/internal/apiclient"
	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/report"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printOrg prints an organization in text format.
func printOrg(o *org.Org) {
	fmt.Printf("%s (%s)\n", o.Name, o.ID)
	if addr := o.AddressBlock(); addr != "" {
		fmt.Printf("  Address:  %s\n", addr)
	}
	if o.Preparer != "" {
		fmt.Printf("  Preparer: %s\n", o.Preparer)
	}
}

// printClientDetail prints a single client profile in text format.
func printClientDetail(c *client.Client) {
	fmt.Printf("Client %s\n", c.ID)
	fmt.Printf("  Name:       %s\n", c.FullName())
	if c.Address != "" {
		fmt.Printf("  Address:    %s\n", c.Address)
	}
	if c.County != "" {
		fmt.Printf("  County:     %s\n", c.County)
	}
	if c.Zip != "" {
		fmt.Printf("  Zip:        %s\n", c.Zip)
	}
	fmt.Printf("  Household:  %d\n", c.HouseholdSize)
	fmt.Printf("  Registered: %s\n", c.CreatedAt.Format("2006-01-02"))
}

// printClientTable prints a list of clients as a formatted table.
func printClientTable(clients []*client.Client) error {
	if len(clients) == 0 {
		fmt.Println("No clients registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tCOUNTY\tZIP\tHOUSEHOLD\tID"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "----\t------\t---\t---------\t--"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, c := range clients {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncate(c.FullName(), 30), c.County, c.Zip, c.HouseholdSize, c.ID); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d clients\n", len(clients))
	return nil
}

// printVisitTable prints a list of visits as a formatted table.
func printVisitTable(visits []*visit.Visit) error {
	if len(visits) == 0 {
		fmt.Println("No visits recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "DATE\tTIME\tNAME\tHOUSEHOLD\tUSDA\tFIRST\tID"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "----\t----\t----\t---------\t----\t-----\t--"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, v := range visits {
		first := ""
		if v.FirstTime() {
			first = "yes"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			v.EffectiveDay(), v.VisitAt.Local().Format("15:04"),
			truncate(v.SnapshotName(), 30), v.HouseholdSize, v.USDAUnits(), first, v.ID); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d visits\n", len(visits))
	return nil
}

// printMonthSummary prints the month dashboard in text format.
func printMonthSummary(s *report.MonthSummary) error {
	fmt.Println(datekey.MonthLabel(s.MonthKey))
	fmt.Printf("  Households served:  %d\n", s.Totals.TotalHouseholds)
	fmt.Printf("  USDA units:         %d\n", s.Totals.TotalUSDAUnits)
	fmt.Printf("  Active days:        %d of %d on the calendar\n", s.Totals.ActiveDayCount, len(s.Days))
	fmt.Printf("  Avg per active day: %.1f\n", s.Totals.AveragePerActiveDay)
	fmt.Printf("  USDA visits:        %d first-time, %d returning\n", s.Split.FirstTime, s.Split.Returning)
	fmt.Printf("  Unduplicated:       %d households, %d persons\n", s.FirstTime.Households, s.FirstTime.Persons)

	if len(s.Series) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "DAY\tVISITS\tHOUSEHOLDS\tUSDA"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "---\t------\t----------\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	for _, p := range s.Series {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
			p.DateKey, p.Visits, p.Households, p.USDAUnits); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printDayRows prints one day's projected report rows as a table.
func printDayRows(date string, rows []report.Row) error {
	if len(rows) == 0 {
		fmt.Printf("No visits on %s.\n", date)
		return nil
	}

	fmt.Println(date)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "TIME\tNAME\tADDRESS\tHOUSEHOLD\tUSDA\tFIRST"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "----\t----\t-------\t---------\t----\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, r := range rows {
		first := ""
		if r.FirstTime {
			first = "yes"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Time, truncate(r.Name, 30), truncate(r.Address, 34), r.Household, r.USDAUnits, first); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d visits\n", len(rows))
	return nil
}

// printKeyTable prints API keys as a formatted table.
func printKeyTable(keys []apiclient.KeyInfo) error {
	if len(keys) == 0 {
		fmt.Println("No API keys.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tPREFIX\tEMAIL\tLOCATION\tLAST USED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t------\t-----\t--------\t---------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, k := range keys {
		location := k.LocationID
		if location == "" {
			location = "all"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s…\t%s\t%s\t%s\n",
			k.ID, truncate(k.Name, 24), k.KeyPrefix, k.Email, location, lastUsed(k.LastUsedAt)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d keys\n", len(keys))
	return nil
}

// lastUsed renders a key's last-used timestamp as a calendar date.
func lastUsed(ts *string) string {
	if ts == nil {
		return "never"
	}
	if len(*ts) >= 10 {
		return (*ts)[:10]
	}
	return *ts
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
