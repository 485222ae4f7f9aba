package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/apiclient"
	"github.com/shepherdstable/pantry-cloud/internal/auth"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

func newOrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage the organization",
		Long:  "Create an organization, inspect it, and update the report header fields.",
	}

	cmd.AddCommand(
		newOrgAddCmd(),
		newOrgListCmd(),
		newOrgShowCmd(),
		newOrgUpdateCmd(),
	)

	return cmd
}

func newOrgAddCmd() *cobra.Command {
	var (
		address    string
		city       string
		state      string
		zip        string
		preparer   string
		adminEmail string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an organization and its first API key",
		Long: `Create an organization in the local database and mint a bootstrap
API key with full access, including key management.

This is the one command that writes to the database directly; everything
else goes through the API with the key it prints.

Example:
  stc org add "Zion Food Pantry" --city Springfield --state IL --admin-email admin@zion.org`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrgAdd(args[0], address, city, state, zip, preparer, adminEmail)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "street address for report headers")
	cmd.Flags().StringVar(&city, "city", "", "city for report headers")
	cmd.Flags().StringVar(&state, "state", "", "state for report headers")
	cmd.Flags().StringVar(&zip, "zip", "", "zip code for report headers")
	cmd.Flags().StringVar(&preparer, "preparer", "", "name printed on the monthly report signature line")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "email to associate with the bootstrap key")

	return cmd
}

func runOrgAdd(name, address, city, state, zip, preparer, adminEmail string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	orgs := org.NewRepository(database)
	o, err := orgs.CreateOrg(&org.Org{
		Name:     name,
		Address:  address,
		City:     city,
		State:    state,
		Zip:      zip,
		Preparer: preparer,
	})
	if err != nil {
		return err
	}

	keys := auth.NewAPIKeyStore(database)
	raw, _, err := keys.Create("Bootstrap", auth.Identity{
		Email:        adminEmail,
		OrgID:        o.ID,
		Capabilities: []string{scope.CapAllLocations, scope.CapManageKeys},
	})
	if err != nil {
		return fmt.Errorf("minting bootstrap key: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"org":     o,
			"api_key": raw,
		})
	}

	fmt.Printf("Organization created: %s (%s)\n\n", o.Name, o.ID)
	fmt.Printf("Bootstrap API key (shown once):\n\n  %s\n\n", raw)
	fmt.Println("Store it with 'stc login' or the STC_API_KEY environment variable.")
	return nil
}

func newOrgListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations in the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrgList()
		},
	}
}

func runOrgList() error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	orgs, err := org.NewRepository(database).ListOrgs()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(orgs)
	}

	if len(orgs) == 0 {
		fmt.Println("No organizations. Create one with 'stc org add'.")
		return nil
	}
	for _, o := range orgs {
		printOrg(o)
	}
	return nil
}

func newOrgShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the organization your API key belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrgShow()
		},
	}
}

func runOrgShow() error {
	c := newAPIClient()

	o, err := c.Org()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(o)
	}

	printOrg(o)
	return nil
}

func newOrgUpdateCmd() *cobra.Command {
	var (
		name     string
		address  string
		city     string
		state    string
		zip      string
		preparer string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update organization report header fields",
		Long:  "Updates the organization. Only the fields given as flags change; the rest keep their current values. Needs a manage-keys credential.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrgUpdate(cmd, name, address, city, state, zip, preparer)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name")
	cmd.Flags().StringVar(&address, "address", "", "street address")
	cmd.Flags().StringVar(&city, "city", "", "city")
	cmd.Flags().StringVar(&state, "state", "", "state")
	cmd.Flags().StringVar(&zip, "zip", "", "zip code")
	cmd.Flags().StringVar(&preparer, "preparer", "", "monthly report preparer")

	return cmd
}

func runOrgUpdate(cmd *cobra.Command, name, address, city, state, zip, preparer string) error {
	c := newAPIClient()

	cur, err := c.Org()
	if err != nil {
		return err
	}

	in := apiclient.OrgUpdate{
		Name:     cur.Name,
		Address:  cur.Address,
		City:     cur.City,
		State:    cur.State,
		Zip:      cur.Zip,
		Preparer: cur.Preparer,
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = name
	}
	if flags.Changed("address") {
		in.Address = address
	}
	if flags.Changed("city") {
		in.City = city
	}
	if flags.Changed("state") {
		in.State = state
	}
	if flags.Changed("zip") {
		in.Zip = zip
	}
	if flags.Changed("preparer") {
		in.Preparer = preparer
	}

	o, err := c.UpdateOrg(in)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(o)
	}

	fmt.Println("Organization updated.")
	printOrg(o)
	return nil
}
