package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// settingFlags maps flag names to the patch field they set.
var settingFlags = []struct {
	name  string
	usage string
	field func(p *types.SettingsPatch) **bool
}{
	{"document-expiry", "Evaluate document expiry rules", func(p *types.SettingsPatch) **bool { return &p.DocumentExpiry }},
	{"vehicle-maintenance", "Evaluate vehicle maintenance rules", func(p *types.SettingsPatch) **bool { return &p.VehicleMaintenance }},
	{"performance-alerts", "Evaluate performance rules", func(p *types.SettingsPatch) **bool { return &p.PerformanceAlerts }},
	{"earnings-milestones", "Evaluate earnings milestone rules", func(p *types.SettingsPatch) **bool { return &p.EarningsMilestones }},
	{"system-notifications", "Route general and manual alerts", func(p *types.SettingsPatch) **bool { return &p.SystemNotifications }},
	{"email", "Email channel", func(p *types.SettingsPatch) **bool { return &p.EmailNotifications }},
	{"sms", "SMS channel", func(p *types.SettingsPatch) **bool { return &p.SMSNotifications }},
	{"push", "Push channel", func(p *types.SettingsPatch) **bool { return &p.PushNotifications }},
}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change alert settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			var s types.Settings
			if err := client.do(context.Background(), http.MethodGet, "/api/v1/settings", nil, nil, &s); err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}
			return outputResult(s, outputFmt)
		},
	})
	cmd.AddCommand(settingsSetCmd())
	return cmd
}

func settingsSetCmd() *cobra.Command {
	values := make([]bool, len(settingFlags))

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the flags given are updated",
		Long: `Change alert settings. Toggles not named on the command line keep their value.

Examples:
  fleportctl settings set --earnings-milestones=true
  fleportctl settings set --sms=false --push=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch types.SettingsPatch
			changed := 0
			for i, f := range settingFlags {
				if !cmd.Flags().Changed(f.name) {
					continue
				}
				v := values[i]
				*f.field(&patch) = &v
				changed++
			}
			if changed == 0 {
				return fmt.Errorf("no settings given; see --help")
			}

			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			var s types.Settings
			if err := client.do(context.Background(), http.MethodPut, "/api/v1/settings", nil, patch, &s); err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}
			return outputResult(s, outputFmt)
		},
	}

	for i, f := range settingFlags {
		cmd.Flags().BoolVar(&values[i], f.name, false, f.usage)
	}
	return cmd
}
