package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/apiclient"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long:  "Mint, list, and revoke API keys. Every subcommand needs a manage-keys credential.",
	}

	cmd.AddCommand(newKeysAddCmd(), newKeysListCmd(), newKeysRemoveCmd())

	return cmd
}

func newKeysAddCmd() *cobra.Command {
	var (
		email      string
		location   string
		manageKeys bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Mint an API key",
		Long: `Mint an API key for a device or teammate. Without --location the
key sees the whole organization; with it, only that location's data.

Examples:
  stc keys add "Front Desk" --location 9c41ab...
  stc keys add "Director" --email dir@zionpantry.org --manage-keys`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysAdd(args[0], email, location, manageKeys)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email to associate with the key")
	cmd.Flags().StringVar(&location, "location", "", "restrict the key to one location ID")
	cmd.Flags().BoolVar(&manageKeys, "manage-keys", false, "allow the key to manage keys and the organization")

	return cmd
}

func runKeysAdd(name, email, location string, manageKeys bool) error {
	c := newAPIClient()

	raw, key, err := c.CreateKey(apiclient.KeyInput{
		Name:       name,
		Email:      email,
		Location:   location,
		ManageKeys: manageKeys,
	})
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"key":     raw,
			"api_key": key,
		})
	}

	fmt.Printf("Key #%d created: %s\n\n  %s\n\n", key.ID, key.Name, raw)
	fmt.Println("The key is shown once and never again.")
	return nil
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the organization's API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysList()
		},
	}
}

func runKeysList() error {
	c := newAPIClient()

	keys, err := c.ListKeys()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(keys)
	}

	return printKeyTable(keys)
}

func newKeysRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysRemove(args[0])
		},
	}
}

func runKeysRemove(arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid key ID: %s", arg)
	}

	c := newAPIClient()

	if err := c.RemoveKey(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"id":      id,
			"removed": true,
		})
	}

	fmt.Printf("Key #%d revoked.\n", id)
	return nil
}
