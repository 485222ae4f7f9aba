package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shepherdstable/pantry-cloud/internal/email"
	"github.com/shepherdstable/pantry-cloud/internal/logging"
	"github.com/shepherdstable/pantry-cloud/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pantry API server",
		Long:  "Start the HTTP API server that the CLI commands and report streams talk to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, dev)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().BoolVar(&dev, "dev", false, "human-readable logs instead of JSON")

	return cmd
}

func runServe(port int, dev bool) error {
	// A .env file is optional; deployments usually set the variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}
	logging.Setup(dev)

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	srv := web.NewServer(database, smtpFromEnv())
	defer srv.Close()

	return srv.ListenAndServe(port)
}

// smtpFromEnv reads the SMTP settings the share endpoint sends mail with.
// An empty host leaves sharing in dry-run-only mode.
func smtpFromEnv() email.SMTPConfig {
	return email.SMTPConfig{
		Host: os.Getenv("STC_SMTP_HOST"),
		Port: os.Getenv("STC_SMTP_PORT"),
		User: os.Getenv("STC_SMTP_USER"),
		Pass: os.Getenv("STC_SMTP_PASS"),
		From: os.Getenv("STC_SMTP_FROM"),
	}
}
