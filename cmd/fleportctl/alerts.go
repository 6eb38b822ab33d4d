package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/sonaligoyal925/FlePort/internal/api"
	"github.com/sonaligoyal925/FlePort/internal/types"
	"github.com/sonaligoyal925/FlePort/internal/util"
)

// AlertActionResult is the result of ack, dismiss and read commands.
type AlertActionResult struct {
	Action string        `json:"action"`
	Alerts []types.Alert `json:"alerts"`
}

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List, create and act on alerts",
	}
	cmd.AddCommand(alertsListCmd())
	cmd.AddCommand(alertsCreateCmd())
	cmd.AddCommand(alertActionCmd("ack", "acknowledge", "Acknowledge active alerts"))
	cmd.AddCommand(alertActionCmd("dismiss", "dismiss", "Dismiss alerts"))
	cmd.AddCommand(alertActionCmd("read", "read", "Mark alerts as read"))
	cmd.AddCommand(alertsReadAllCmd())
	cmd.AddCommand(alertsStatsCmd())
	return cmd
}

func alertsListCmd() *cobra.Command {
	var (
		search     string
		priority   string
		status     string
		category   string
		entityType string
		sortField  string
		order      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		Long: `List alerts with optional search, filters and sort.

Examples:
  # High priority alerts mentioning "kumar"
  fleportctl alerts list -q kumar --priority high

  # Active compliance alerts, most urgent first
  fleportctl alerts list --status active --category compliance --sort priorityRank --order desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			query := url.Values{}
			setIfNotEmpty(query, "q", search)
			setIfNotEmpty(query, "priority", priority)
			setIfNotEmpty(query, "status", status)
			setIfNotEmpty(query, "category", category)
			setIfNotEmpty(query, "entityType", entityType)
			setIfNotEmpty(query, "sort", sortField)
			setIfNotEmpty(query, "order", order)

			var result api.AlertsResponse
			if err := client.do(context.Background(), http.MethodGet, "/api/v1/alerts", query, nil, &result); err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}
			return outputResult(result, outputFmt)
		},
	}

	cmd.Flags().StringVarP(&search, "query", "q", "", "Case-insensitive search over title, description and related entity")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (critical, high, medium, low)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, acknowledged, dismissed)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&entityType, "entity-type", "", "Filter by entity type")
	cmd.Flags().StringVar(&sortField, "sort", "", "Sort by field (e.g. createdAt, priorityRank, dueDate)")
	cmd.Flags().StringVar(&order, "order", "asc", "Sort order: asc or desc")

	return cmd
}

func alertsCreateCmd() *cobra.Command {
	var (
		in  types.ManualAlert
		due string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a manual alert",
		Long: `Create a manual alert. It is routed to notification channels like rule alerts.

Examples:
  fleportctl alerts create --title "Depot closed Monday" --priority high
  fleportctl alerts create --title "Check tyres" --entity-id VH001 --entity-type vehicle --due 2024-02-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if due != "" {
				d, err := types.ParseDate(due)
				if err != nil {
					return fmt.Errorf("invalid --due: %w", err)
				}
				t := d.Time
				in.DueDate = &t
			}

			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			var created types.Alert
			if err := client.do(context.Background(), http.MethodPost, "/api/v1/alerts", nil, in, &created); err != nil {
				return fmt.Errorf("failed to create alert: %w", err)
			}
			return outputResult(created, outputFmt)
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Alert title (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Alert description")
	cmd.Flags().StringVar((*string)(&in.Priority), "priority", "", "Priority (default medium)")
	cmd.Flags().StringVar((*string)(&in.Category), "category", "", "Category (default general)")
	cmd.Flags().StringVar(&in.EntityID, "entity-id", "", "Related entity id")
	cmd.Flags().StringVar((*string)(&in.EntityType), "entity-type", "", "Related entity type")
	cmd.Flags().StringVar(&in.EntityName, "entity-name", "", "Related entity display name")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// alertActionCmd builds ack, dismiss and read, which share the shape
// "POST /api/v1/alerts/{id}/<action>" for each id argument.
func alertActionCmd(use, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [alert-id...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			result := AlertActionResult{Action: action}
			for _, id := range util.Unique(args) {
				var a types.Alert
				path := "/api/v1/alerts/" + url.PathEscape(id) + "/" + action
				if err := client.do(ctx, http.MethodPost, path, nil, nil, &a); err != nil {
					return fmt.Errorf("failed to %s %s: %w", use, id, err)
				}
				result.Alerts = append(result.Alerts, a)
			}
			return outputResult(result, outputFmt)
		},
	}
}

func alertsReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every alert as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			var result api.ReadAllResponse
			if err := client.do(context.Background(), http.MethodPost, "/api/v1/alerts/read-all", nil, nil, &result); err != nil {
				return fmt.Errorf("failed to mark alerts read: %w", err)
			}
			return outputResult(result, outputFmt)
		},
	}
}

func alertsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show alert counts by status, priority and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			var stats types.AlertStats
			if err := client.do(context.Background(), http.MethodGet, "/api/v1/alerts/stats", nil, nil, &stats); err != nil {
				return fmt.Errorf("failed to get alert stats: %w", err)
			}
			return outputResult(stats, outputFmt)
		},
	}
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
