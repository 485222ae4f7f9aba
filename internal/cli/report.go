package cli

import (
	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show report summaries",
		Long:  "Show the aggregated month dashboard or the projected rows for one day. Use 'stc export' for the CSV and PDF artifacts.",
	}

	cmd.AddCommand(newReportMonthCmd(), newReportDayCmd())

	return cmd
}

func newReportMonthCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a month's totals and day series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportMonth(month)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default: current month)")

	return cmd
}

func runReportMonth(month string) error {
	if month == "" {
		month = datekey.ThisMonth()
	}

	c := newAPIClient()

	summary, err := c.MonthReport(month)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(summary)
	}

	return printMonthSummary(summary)
}

func newReportDayCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show one day's visit rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportDay(day)
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "day YYYY-MM-DD (default: today)")

	return cmd
}

func runReportDay(day string) error {
	if day == "" {
		day = datekey.Today()
	}

	c := newAPIClient()

	rep, err := c.GetDayReport(day)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(rep)
	}

	return printDayRows(rep.Date, rep.Rows)
}
