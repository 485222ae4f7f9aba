package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/apiclient"
)

func newVisitCmd() *cobra.Command {
	var (
		date      string
		at        string
		household int64
		usda      int64
		first     bool
	)

	cmd := &cobra.Command{
		Use:   "visit <client-id>",
		Short: "Record a pantry visit",
		Long: `Record a service visit for a client. The visit lands on today's
date unless --date is given, and snapshots the client profile so later
profile edits don't rewrite report history.

Examples:
  stc visit 3f8a1c...
  stc visit 3f8a1c... --date 2026-08-01 --first
  stc visit 3f8a1c... --usda 2 --household 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisit(cmd, args[0], date, at, household, usda, first)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "visit date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&at, "at", "", "precise visit time, RFC 3339 (default: now)")
	cmd.Flags().Int64Var(&household, "household", 0, "household size served (default: from the client profile)")
	cmd.Flags().Int64Var(&usda, "usda", 0, "explicit USDA unit count")
	cmd.Flags().BoolVar(&first, "first", false, "first USDA visit of the month")

	return cmd
}

func runVisit(cmd *cobra.Command, clientID, date, at string, household, usda int64, first bool) error {
	in := apiclient.VisitInput{
		ClientID: clientID,
		Date:     date,
		VisitAt:  at,
	}

	flags := cmd.Flags()
	if flags.Changed("household") {
		in.HouseholdSize = &household
	}
	if flags.Changed("usda") {
		in.USDACount = &usda
	}
	if flags.Changed("first") {
		in.FirstTime = &first
	}

	c := newAPIClient()

	v, err := c.RecordVisit(in)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	name := v.SnapshotName()
	if name == "" {
		name = v.ClientID
	}
	fmt.Printf("Visit recorded: %s on %s (household of %d)\n", name, v.DateKey, v.HouseholdSize)
	if v.FirstTime() {
		fmt.Println("  first USDA visit this month")
	}
	return nil
}
