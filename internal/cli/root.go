// Package cli defines the cobra command tree for the pantry CLI.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/apiclient"
	"github.com/shepherdstable/pantry-cloud/internal/db"
)

var (
	flagFormat   string
	flagDB       string
	flagLocation string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stc",
		Short:         "Track pantry visits and build USDA/EFAP reports",
		Long:          "A tool for food pantries to register clients, record service visits, and produce the monthly USDA and daily EFAP reports, via CLI or HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.shepherds-table/pantry.db)")
	root.PersistentFlags().StringVar(&flagLocation, "location", "", "limit commands to one location ID (default: whole organization)")

	root.AddCommand(
		newOrgCmd(),
		newLocationCmd(),
		newClientCmd(),
		newVisitCmd(),
		newVisitsCmd(),
		newRemoveCmd(),
		newDayCmd(),
		newManualCmd(),
		newReportCmd(),
		newExportCmd(),
		newShareCmd(),
		newWatchCmd(),
		newKeysCmd(),
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag or default path.
// Used by serve and the org bootstrap, which work against the database
// directly instead of the API.
func openDB() (*sql.DB, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the pantry API.
func newAPIClient() *apiclient.Client {
	return apiclient.New(getServerURL(), getAPIKey(), getLocation())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
