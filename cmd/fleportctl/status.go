package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sonaligoyal925/FlePort/internal/api"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status: rules, entity counts, alerts and senders",
		Long: `Show a summary of the running daemon.

Examples:
  # Show status
  fleportctl status

  # Output as JSON
  fleportctl status -o json`,
		RunE: runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var caps api.CapabilitiesResponse
	if err := client.do(context.Background(), http.MethodGet, "/api/v1/capabilities", nil, nil, &caps); err != nil {
		return fmt.Errorf("failed to get capabilities: %w", err)
	}
	return outputResult(caps, outputFmt)
}
