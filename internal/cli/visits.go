package cli

import (
	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

func newVisitsCmd() *cobra.Command {
	var (
		month string
		day   string
	)

	cmd := &cobra.Command{
		Use:   "visits",
		Short: "List recorded visits",
		Long: `List visits for a month (default: the current month) or a single day.

Examples:
  stc visits
  stc visits --month 2026-07
  stc visits --day 2026-08-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisits(month, day)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&day, "day", "", "single day YYYY-MM-DD")

	return cmd
}

func runVisits(month, day string) error {
	c := newAPIClient()

	var (
		visits []*visit.Visit
		err    error
	)
	if day != "" {
		visits, err = c.ListDayVisits(day)
	} else {
		if month == "" {
			month = datekey.ThisMonth()
		}
		visits, err = c.ListMonthVisits(month)
	}
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(visits)
	}

	return printVisitTable(visits)
}
