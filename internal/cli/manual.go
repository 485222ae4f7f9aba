package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
)

func newManualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Manage manual service days",
		Long:  "Manual days appear on the month calendar without any recorded visits, for distributions tracked on paper.",
	}

	cmd.AddCommand(newManualAddCmd(), newManualRemoveCmd(), newManualListCmd())

	return cmd
}

func newManualAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <date>",
		Short: "Mark a date as a service day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManualAdd(args[0])
		},
	}
}

func runManualAdd(date string) error {
	c := newAPIClient()

	if err := c.AddManualDay(date); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"date":  date,
			"added": true,
		})
	}

	fmt.Printf("Manual day %s added.\n", date)
	return nil
}

func newManualRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date>",
		Short: "Unmark a manual service day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManualRemove(args[0])
		},
	}
}

func runManualRemove(date string) error {
	c := newAPIClient()

	if err := c.RemoveManualDay(date); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"date":    date,
			"removed": true,
		})
	}

	fmt.Printf("Manual day %s removed.\n", date)
	return nil
}

func newManualListCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a month's manual service days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManualList(month)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default: current month)")

	return cmd
}

func runManualList(month string) error {
	if month == "" {
		month = datekey.ThisMonth()
	}

	c := newAPIClient()

	days, err := c.ManualDays(month)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(days)
	}

	if len(days) == 0 {
		fmt.Printf("No manual days in %s.\n", datekey.MonthLabel(month))
		return nil
	}
	for _, d := range days {
		fmt.Println(d)
	}
	return nil
}
