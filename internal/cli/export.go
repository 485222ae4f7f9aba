package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exportKinds maps CLI kind names to the server's export endpoints.
var exportKinds = map[string]string{
	"day-csv":   "day.csv",
	"day-pdf":   "day.pdf",
	"month-csv": "month.csv",
	"month-pdf": "month.pdf",
}

func newExportCmd() *cobra.Command {
	var (
		month string
		day   string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Download a report artifact",
		Long: `Download a report artifact and write it to disk.

Kinds:
  day-csv     daily visit data (CSV)
  day-pdf     EFAP daily sign-in sheet (PDF)
  month-csv   USDA monthly visit data (CSV)
  month-pdf   USDA monthly report (PDF)

The file keeps the server's canonical name unless --out is given.

Examples:
  stc export month-pdf --month 2026-07
  stc export day-csv --day 2026-08-01 --out /tmp/visits.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], month, day, out)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&day, "day", "", "day YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&out, "out", "", "output path (default: the server's filename)")

	return cmd
}

func runExport(kind, month, day, out string) error {
	endpoint, ok := exportKinds[kind]
	if !ok {
		return fmt.Errorf("unknown export kind %q (want day-csv, day-pdf, month-csv, or month-pdf)", kind)
	}

	c := newAPIClient()

	exp, err := c.Export(endpoint, month, day)
	if err != nil {
		return err
	}

	dest := out
	if dest == "" {
		dest = exp.Filename
	}

	if err := os.WriteFile(dest, exp.Content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"file":  dest,
			"bytes": len(exp.Content),
		})
	}

	fmt.Printf("Wrote %s (%d bytes).\n", dest, len(exp.Content))
	return nil
}
