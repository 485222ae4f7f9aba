package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/apiclient"
)

func newShareCmd() *cobra.Command {
	var (
		to     []string
		month  string
		day    string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "share <kind>",
		Short: "Email a report to recipients",
		Long: `Email a report artifact to one or more recipients. Kinds are the
same as for export: day-csv, day-pdf, month-csv, month-pdf.

Sending needs SMTP configured on the server (STC_SMTP_HOST and
STC_SMTP_FROM). --dry-run shows what would go out without sending.

Examples:
  stc share month-pdf --to board@zionpantry.org
  stc share day-csv --day 2026-08-01 --to a@x.org --to b@x.org --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShare(args[0], to, month, day, dryRun)
		},
	}

	cmd.Flags().StringSliceVar(&to, "to", nil, "recipient email (repeatable)")
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&day, "day", "", "day YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve the report without sending mail")

	return cmd
}

func runShare(kind string, to []string, month, day string, dryRun bool) error {
	endpoint, ok := exportKinds[kind]
	if !ok {
		return fmt.Errorf("unknown report kind %q (want day-csv, day-pdf, month-csv, or month-pdf)", kind)
	}
	if len(to) == 0 {
		return fmt.Errorf("at least one --to recipient is required")
	}

	c := newAPIClient()

	resp, err := c.Share(apiclient.ShareRequest{
		To:     to,
		Kind:   endpoint,
		Month:  month,
		Day:    day,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(resp)
	}

	if !resp.Sent {
		fmt.Printf("Dry run: would send %s to %s\n", resp.Filename, strings.Join(resp.To, ", "))
		fmt.Printf("  Subject: %s\n", resp.Subject)
		return nil
	}

	fmt.Printf("Sent %s to %s\n", resp.Filename, strings.Join(resp.To, ", "))
	return nil
}
