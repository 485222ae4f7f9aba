package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Inspect or clear a service day",
	}

	cmd.AddCommand(newDayCountCmd(), newDayDeleteCmd())

	return cmd
}

func newDayCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <date>",
		Short: "Count the visits on a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDayCount(args[0])
		},
	}
}

func runDayCount(date string) error {
	c := newAPIClient()

	n, err := c.CountDay(date)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"date":   date,
			"visits": n,
		})
	}

	fmt.Printf("%s: %d visits\n", date, n)
	return nil
}

func newDayDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <date>",
		Short: "Delete every visit on a day",
		Long:  "Deletes all visits recorded on a day and clears its manual-day marker. Asks for confirmation unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDayDelete(args[0], yes)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

func runDayDelete(date string, yes bool) error {
	c := newAPIClient()

	n, err := c.CountDay(date)
	if err != nil {
		return err
	}

	if !yes {
		fmt.Printf("Delete %d visits on %s? This cannot be undone. [y/N] ", n, date)
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted, err := c.DeleteDay(date)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"date":    date,
			"deleted": deleted,
		})
	}

	fmt.Printf("Deleted %d visits on %s.\n", deleted, date)
	return nil
}
