// fleportctl is a CLI client for the fleportd alert API.
//
// Installation:
//
//	go build -o fleportctl ./cmd/fleportctl
//	mv fleportctl /usr/local/bin/
//
// Usage:
//
//	fleportctl alerts list --priority high -q kumar
//	fleportctl alerts ack alert-id
//	fleportctl alerts create --title "Depot closed Monday" --priority high
//	fleportctl entities list drivers --filter status=active
//	fleportctl settings set --earnings-milestones=true
//	fleportctl status
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	outputFmt string
	serverURL string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fleportctl",
		Short: "Query and manage FlePort fleet alerts",
		Long: `fleportctl is a CLI tool for interacting with fleportd.

It talks to the daemon's HTTP API to list and act on alerts, browse fleet
entities and change alert settings.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "fleportd base URL (env FLEPORT_SERVER)")

	// Add subcommands
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(entitiesCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(statusCmd())

	return rootCmd
}

func defaultServerURL() string {
	if v := os.Getenv("FLEPORT_SERVER"); v != "" {
		return v
	}
	return "http://localhost:8080"
}
