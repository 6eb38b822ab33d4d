package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/sonaligoyal925/FlePort/internal/api"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// EntityListResult is the result of an entities list command.
type EntityListResult struct {
	Type     types.EntityType         `json:"type"`
	Entities []map[string]interface{} `json:"entities"`
	Total    int                      `json:"total"`
}

// EntityResult is a single entity record.
type EntityResult struct {
	Type   types.EntityType       `json:"type"`
	Record map[string]interface{} `json:"record"`
}

// entityColumns are the table columns shown per entity type.
var entityColumns = map[types.EntityType][]string{
	types.EntityTypeDriver:  {"id", "name", "status", "rating", "totalTrips", "licenseExpiry"},
	types.EntityTypeVehicle: {"id", "registrationNo", "status", "nextService", "insuranceExpiry", "permitExpiry"},
	types.EntityTypeTrip:    {"id", "driver", "vehicle", "status", "fare", "date"},
	types.EntityTypePayout:  {"id", "driverName", "amount", "status", "requestDate"},
}

func entitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Browse and update fleet entities",
	}
	cmd.AddCommand(entitiesListCmd())
	cmd.AddCommand(entitiesGetCmd())
	cmd.AddCommand(entitiesSummaryCmd())
	cmd.AddCommand(entitiesPutCmd())
	return cmd
}

func entitiesListCmd() *cobra.Command {
	var (
		search    string
		filters   []string
		sortField string
		order     string
	)

	cmd := &cobra.Command{
		Use:   "list [type]",
		Short: "List drivers, vehicles, trips or payouts",
		Long: `List entities of one type with optional search, field filters and sort.

Examples:
  fleportctl entities list drivers -q kumar
  fleportctl entities list vehicles --filter status=maintenance --sort nextService`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := types.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			query := url.Values{}
			for _, f := range filters {
				key, value, ok := strings.Cut(f, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid --filter %q: expected field=value", f)
				}
				query.Set(key, value)
			}
			setIfNotEmpty(query, "q", search)
			setIfNotEmpty(query, "sort", sortField)
			setIfNotEmpty(query, "order", order)

			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			var result EntityListResult
			if err := client.do(context.Background(), http.MethodGet, "/api/v1/entities/"+string(t), query, nil, &result); err != nil {
				return fmt.Errorf("failed to list %s: %w", t, err)
			}
			return outputResult(result, outputFmt)
		},
	}

	cmd.Flags().StringVarP(&search, "query", "q", "", "Case-insensitive search")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Exact-match filter field=value (repeatable)")
	cmd.Flags().StringVar(&sortField, "sort", "", "Sort by field")
	cmd.Flags().StringVar(&order, "order", "asc", "Sort order: asc or desc")

	return cmd
}

func entitiesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [type] [id]",
		Short: "Show one entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := types.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			result := EntityResult{Type: t}
			path := "/api/v1/entities/" + string(t) + "/" + url.PathEscape(args[1])
			if err := client.do(context.Background(), http.MethodGet, path, nil, nil, &result.Record); err != nil {
				return fmt.Errorf("failed to get %s %s: %w", t, args[1], err)
			}
			return outputResult(result, outputFmt)
		},
	}
}

func entitiesSummaryCmd() *cobra.Command {
	var groupBy, sum string

	cmd := &cobra.Command{
		Use:   "summary [type]",
		Short: "Count entities per field value and total a numeric field",
		Long: `Summarize entities of one type.

Examples:
  # Payout amounts per status
  fleportctl entities summary payouts

  # Trips per driver with total fares
  fleportctl entities summary trips --group-by driver --sum fare`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := types.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			query := url.Values{}
			setIfNotEmpty(query, "groupBy", groupBy)
			setIfNotEmpty(query, "sum", sum)

			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			var result api.SummaryResponse
			if err := client.do(context.Background(), http.MethodGet, "/api/v1/entities/"+string(t)+"/summary", query, nil, &result); err != nil {
				return fmt.Errorf("failed to summarize %s: %w", t, err)
			}
			return outputResult(result, outputFmt)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Field to group by (default status)")
	cmd.Flags().StringVar(&sum, "sum", "", "Numeric field to total per group")

	return cmd
}

func entitiesPutCmd() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "put [type]",
		Short: "Upsert one entity record from a YAML or JSON file",
		Long: `Upsert a full entity snapshot. It replaces any record with the same id
and triggers rule evaluation for it.

Examples:
  fleportctl entities put vehicles -f vh001.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := types.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			body, err := yaml.YAMLToJSON(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", filename, err)
			}

			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			result := EntityResult{Type: t}
			if err := client.putRaw(context.Background(), "/api/v1/entities/"+string(t), body, &result.Record); err != nil {
				return fmt.Errorf("failed to upsert %s: %w", t, err)
			}
			return outputResult(result, outputFmt)
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "Path to the entity record")
	_ = cmd.MarkFlagRequired("filename")

	return cmd
}
