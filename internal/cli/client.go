package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/apiclient"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage registered clients",
		Long:  "Register, list, update, and remove the households the pantry serves.",
	}

	cmd.AddCommand(
		newClientAddCmd(),
		newClientListCmd(),
		newClientShowCmd(),
		newClientUpdateCmd(),
		newClientRemoveCmd(),
	)

	return cmd
}

func newClientAddCmd() *cobra.Command {
	var (
		address   string
		county    string
		zip       string
		household int64
	)

	cmd := &cobra.Command{
		Use:   "add <first-name> <last-name>",
		Short: "Register a client",
		Long: `Register a household client.

Examples:
  stc client add Ada Lovelace --county Sangamon --household 4
  stc client add Grace Hopper --address "12 River Rd" --zip 62704`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClientAdd(args[0], args[1], address, county, zip, household)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "street address")
	cmd.Flags().StringVar(&county, "county", "", "county of residence")
	cmd.Flags().StringVar(&zip, "zip", "", "zip code")
	cmd.Flags().Int64Var(&household, "household", 1, "household size")

	return cmd
}

func runClientAdd(first, last, address, county, zip string, household int64) error {
	c := newAPIClient()

	created, err := c.AddClient(apiclient.ClientInput{
		FirstName:     first,
		LastName:      last,
		Address:       address,
		County:        county,
		Zip:           zip,
		HouseholdSize: household,
	})
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(created)
	}

	fmt.Printf("Client registered: %s (%s)\n", created.FullName(), created.ID)
	return nil
}

func newClientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClientList()
		},
	}
}

func runClientList() error {
	c := newAPIClient()

	clients, err := c.ListClients()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(clients)
	}

	return printClientTable(clients)
}

func newClientShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a client profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClientShow(args[0])
		},
	}
}

func runClientShow(id string) error {
	c := newAPIClient()

	found, err := c.GetClient(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(found)
	}

	printClientDetail(found)
	return nil
}

func newClientUpdateCmd() *cobra.Command {
	var (
		first     string
		last      string
		address   string
		county    string
		zip       string
		household int64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a client profile",
		Long:  "Updates a client. Only the fields given as flags change; the rest keep their current values. Past visits keep the snapshot taken when they were recorded.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClientUpdate(cmd, args[0], first, last, address, county, zip, household)
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&address, "address", "", "street address")
	cmd.Flags().StringVar(&county, "county", "", "county of residence")
	cmd.Flags().StringVar(&zip, "zip", "", "zip code")
	cmd.Flags().Int64Var(&household, "household", 0, "household size")

	return cmd
}

func runClientUpdate(cmd *cobra.Command, id, first, last, address, county, zip string, household int64) error {
	c := newAPIClient()

	cur, err := c.GetClient(id)
	if err != nil {
		return err
	}

	in := apiclient.ClientInput{
		FirstName:     cur.FirstName,
		LastName:      cur.LastName,
		Address:       cur.Address,
		County:        cur.County,
		Zip:           cur.Zip,
		HouseholdSize: cur.HouseholdSize,
	}

	flags := cmd.Flags()
	if flags.Changed("first") {
		in.FirstName = first
	}
	if flags.Changed("last") {
		in.LastName = last
	}
	if flags.Changed("address") {
		in.Address = address
	}
	if flags.Changed("county") {
		in.County = county
	}
	if flags.Changed("zip") {
		in.Zip = zip
	}
	if flags.Changed("household") {
		in.HouseholdSize = household
	}

	updated, err := c.UpdateClient(id, in)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(updated)
	}

	fmt.Println("Client updated.")
	printClientDetail(updated)
	return nil
}

func newClientRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a client",
		Long:  "Removes a client profile. Recorded visits keep their snapshot of the client and stay on the reports.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClientRemove(args[0])
		},
	}
}

func runClientRemove(id string) error {
	c := newAPIClient()

	if err := c.RemoveClient(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"id":      id,
			"removed": true,
		})
	}

	fmt.Printf("Client %s removed.\n", id)
	return nil
}
