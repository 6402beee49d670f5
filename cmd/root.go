package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the esap-events-api application
var rootCmd = &cobra.Command{
	Use:   "esap-events-api",
	Short: "HTTP API that creates Google Calendar events for the ESAP frontend",
	Long: `esap-events-api is a small HTTP service that accepts event creation
requests from a browser frontend, normalizes recurrence rules and
date/time values into the Google Calendar wire format, and creates the
events on a configured calendar using a service account credential.

The credential never leaves the server; the browser only ever talks to
this API.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "esap-events-api version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
