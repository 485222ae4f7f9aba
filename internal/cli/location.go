package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLocationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage distribution locations",
		Long:  "Add and list the distribution sites visits can be scoped to.",
	}

	cmd.AddCommand(newLocationAddCmd(), newLocationListCmd())

	return cmd
}

func newLocationAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a distribution location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocationAdd(args[0])
		},
	}
}

func runLocationAdd(name string) error {
	c := newAPIClient()

	loc, err := c.AddLocation(name)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(loc)
	}

	fmt.Printf("Location added: %s (%s)\n", loc.Name, loc.ID)
	return nil
}

func newLocationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List distribution locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocationList()
		},
	}
}

func runLocationList() error {
	c := newAPIClient()

	locs, err := c.ListLocations()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(locs)
	}

	if len(locs) == 0 {
		fmt.Println("No locations. Visits are recorded org-wide.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tID"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "----\t--"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	for _, loc := range locs {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", loc.Name, loc.ID); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d locations\n", len(locs))
	return nil
}
