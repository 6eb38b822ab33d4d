package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/sonaligoyal925/FlePort/internal/api"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// outputResult outputs the result in the specified format.
func outputResult(result interface{}, format string) error {
	switch format {
	case "json":
		return outputJSON(result)
	case "yaml":
		return outputYAML(result)
	case "table", "":
		return outputTable(result)
	default:
		return fmt.Errorf("unknown output format %q (table, json, yaml)", format)
	}
}

func outputJSON(result interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputYAML(result interface{}) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputTable(result interface{}) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch r := result.(type) {
	case api.AlertsResponse:
		return outputAlertsTable(w, r.Alerts, r.Total)
	case types.Alert:
		return outputAlertsTable(w, []types.Alert{r}, 1)
	case AlertActionResult:
		return outputAlertsTable(w, r.Alerts, len(r.Alerts))
	case api.ReadAllResponse:
		fmt.Fprintf(w, "MARKED READ:\t%d\n", r.Updated)
		return nil
	case types.AlertStats:
		return outputStatsTable(w, r)
	case EntityListResult:
		return outputEntitiesTable(w, r)
	case EntityResult:
		return outputRecordTable(w, r)
	case api.SummaryResponse:
		return outputSummaryTable(w, r)
	case types.Settings:
		return outputSettingsTable(w, r)
	case api.CapabilitiesResponse:
		return outputStatusTable(w, r)
	default:
		// Fall back to JSON for unknown types
		return outputJSON(result)
	}
}

func outputAlertsTable(w *tabwriter.Writer, alerts []types.Alert, total int) error {
	fmt.Fprintf(w, "TOTAL\t%d\n\n", total)

	fmt.Fprintln(w, "ID\tPRIORITY\tSTATUS\tCATEGORY\tENTITY\tDUE\tREAD\tTITLE")
	for _, a := range alerts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Priority, a.Status, a.Category, dash(a.EntityName),
			formatDue(a.DueDate), yesNo(a.Read), a.Title)
	}
	return nil
}

func outputStatsTable(w *tabwriter.Writer, s types.AlertStats) error {
	fmt.Fprintf(w, "TOTAL:\t%d\n", s.Total)
	fmt.Fprintf(w, "ACTIVE:\t%d\n", s.Active)
	fmt.Fprintf(w, "ACKNOWLEDGED:\t%d\n", s.Acknowledged)
	fmt.Fprintf(w, "DISMISSED:\t%d\n", s.Dismissed)
	fmt.Fprintf(w, "UNREAD:\t%d\n\n", s.Unread)

	fmt.Fprintln(w, "PRIORITY\tCOUNT")
	for _, p := range types.Priorities() {
		fmt.Fprintf(w, "%s\t%d\n", p, s.ByPriority[p])
	}
	fmt.Fprintln(w, "\nCATEGORY\tCOUNT")
	for _, c := range types.Categories() {
		fmt.Fprintf(w, "%s\t%d\n", c, s.ByCategory[c])
	}
	return nil
}

func outputEntitiesTable(w *tabwriter.Writer, r EntityListResult) error {
	fmt.Fprintf(w, "TYPE\t%s\n", r.Type)
	fmt.Fprintf(w, "TOTAL\t%d\n\n", r.Total)

	columns := entityColumns[r.Type]
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, e := range r.Entities {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = formatValue(e[c])
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return nil
}

func outputRecordTable(w *tabwriter.Writer, r EntityResult) error {
	fmt.Fprintf(w, "TYPE:\t%s\n", r.Type)
	keys := make([]string, 0, len(r.Record))
	for k := range r.Record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:\t%s\n", k, formatValue(r.Record[k]))
	}
	return nil
}

func outputSummaryTable(w *tabwriter.Writer, r api.SummaryResponse) error {
	fmt.Fprintf(w, "TYPE\t%s\n", r.Type)
	fmt.Fprintf(w, "TOTAL\t%d\n\n", r.Total)

	groups := make([]string, 0, len(r.Counts))
	for g := range r.Counts {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	fmt.Fprintf(w, "%s\tCOUNT\tSUM(%s)\n", strings.ToUpper(r.GroupBy), r.SumOf)
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%d\t%s\n", dash(g), r.Counts[g], strconv.FormatFloat(r.Sums[g], 'f', -1, 64))
	}
	return nil
}

func outputSettingsTable(w *tabwriter.Writer, s types.Settings) error {
	fmt.Fprintln(w, "SETTING\tENABLED")
	fmt.Fprintf(w, "document-expiry\t%s\n", yesNo(s.DocumentExpiry))
	fmt.Fprintf(w, "vehicle-maintenance\t%s\n", yesNo(s.VehicleMaintenance))
	fmt.Fprintf(w, "performance-alerts\t%s\n", yesNo(s.PerformanceAlerts))
	fmt.Fprintf(w, "earnings-milestones\t%s\n", yesNo(s.EarningsMilestones))
	fmt.Fprintf(w, "system-notifications\t%s\n", yesNo(s.SystemNotifications))
	fmt.Fprintf(w, "email\t%s\n", yesNo(s.EmailNotifications))
	fmt.Fprintf(w, "sms\t%s\n", yesNo(s.SMSNotifications))
	fmt.Fprintf(w, "push\t%s\n", yesNo(s.PushNotifications))
	return nil
}

func outputStatusTable(w *tabwriter.Writer, r api.CapabilitiesResponse) error {
	fmt.Fprintf(w, "API VERSION:\t%s\n", r.Version)
	fmt.Fprintf(w, "UP SINCE:\t%s\n", dash(r.UpSince))
	fmt.Fprintf(w, "LAST EVALUATION:\t%s\n", dash(r.LastEvaluation))
	fmt.Fprintf(w, "SENDERS:\t%s\n", dash(strings.Join(r.Senders, ", ")))
	fmt.Fprintf(w, "ALERTS:\t%d (%d active, %d unread)\n\n", r.Alerts.Total, r.Alerts.Active, r.Alerts.Unread)

	fmt.Fprintln(w, "ENTITY\tCOUNT")
	for _, t := range types.EntityTypes() {
		fmt.Fprintf(w, "%s\t%d\n", t, r.Entities[t])
	}

	if len(r.Rules) > 0 {
		fmt.Fprintln(w, "\nRULE\tENTITY\tPRIORITY\tCATEGORY\tWINDOW")
		for _, rule := range r.Rules {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				rule.ID, rule.EntityType, rule.Priority, rule.Category, dash(rule.Window))
		}
	}
	return nil
}

func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(types.DayLayout)
}

// formatValue renders a decoded JSON value for a table cell.
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return dash(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return yesNo(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
