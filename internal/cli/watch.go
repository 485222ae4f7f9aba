package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/feed"
)

func newWatchCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a month's totals live",
		Long:  "Streams live updates for a month and prints a totals line whenever visits change on the server. Press Ctrl-C to stop.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(month)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default: current month)")

	return cmd
}

func runWatch(month string) error {
	if month == "" {
		month = datekey.ThisMonth()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newAPIClient()

	updates, err := c.WatchMonth(ctx, month)
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", datekey.MonthLabel(month))

	for u := range updates {
		if isJSON() {
			if err := printJSON(u); err != nil {
				return err
			}
			continue
		}

		stamp := u.LastSync.Local().Format("15:04:05")
		if u.State != string(feed.StateLive) {
			fmt.Printf("[%s] connection %s, totals may lag\n", stamp, u.State)
		}
		if u.Summary == nil {
			continue
		}
		t := u.Summary.Totals
		fmt.Printf("[%s] %d households, %d USDA units, %d active days\n",
			stamp, t.TotalHouseholds, t.TotalUSDAUnits, t.ActiveDayCount)
	}

	return nil
}
