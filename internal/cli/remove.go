package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <visit-id>",
		Short: "Remove a single visit",
		Long:  "Remove one recorded visit. To clear a whole day, use 'stc day delete'.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	c := newAPIClient()

	if err := c.RemoveVisit(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"id":      id,
			"removed": true,
		})
	}

	fmt.Printf("Visit %s removed.\n", id)
	return nil
}
