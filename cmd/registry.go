package cmd

import (
	"fmt"
	"strings"

	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/present"
	"github.com/spf13/cobra"
)

func newPlotsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plots [id]",
		Short: "List the plot registry or show one plot",
		Args:  cobra.MaximumNArgs(1),
		Example: `  landwatch plots
  landwatch plots PLT-001 -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				plot, err := client.Plot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if format == present.FormatText {
					return present.RenderPlot(cmd.OutOrStdout(), plot)
				}
				return present.Encode(cmd.OutOrStdout(), format, plot)
			}

			plots, err := client.Plots(cmd.Context())
			if err != nil {
				return err
			}
			if format == present.FormatText {
				return present.RenderPlots(cmd.OutOrStdout(), plots)
			}
			return present.Encode(cmd.OutOrStdout(), format, plots)
		},
	}
}

// parseSeverity accepts the alert filter values, "all" meaning no filter
func parseSeverity(s string) (models.Severity, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return "", nil
	case "critical":
		return models.SeverityCritical, nil
	case "high":
		return models.SeverityHigh, nil
	case "medium":
		return models.SeverityMedium, nil
	case "low":
		return models.SeverityLow, nil
	default:
		return "", fmt.Errorf("unknown severity %q (expected all, critical, high, medium or low)", s)
	}
}

func newAlertsCmd(a *app) *cobra.Command {
	var severity string

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List compliance alerts",
		Example: `  landwatch alerts
  landwatch alerts --severity critical`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			sev, err := parseSeverity(severity)
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			list, err := client.Alerts(cmd.Context())
			if err != nil {
				return err
			}
			alerts := list.Filter(sev)
			if format == present.FormatText {
				return present.RenderAlerts(cmd.OutOrStdout(), alerts, list.Summary)
			}
			return present.Encode(cmd.OutOrStdout(), format, models.AlertList{Alerts: alerts, Summary: list.Summary})
		},
	}

	cmd.Flags().StringVarP(&severity, "severity", "s", "all", "Only show alerts of this severity (all, critical, high, medium, low)")
	return cmd
}

func newAreasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List industrial areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			areas, err := client.IndustrialAreas(cmd.Context())
			if err != nil {
				return err
			}
			if format == present.FormatText {
				return present.RenderAreas(cmd.OutOrStdout(), areas)
			}
			return present.Encode(cmd.OutOrStdout(), format, areas)
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			stats, err := client.DashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			if format == present.FormatText {
				return present.RenderStats(cmd.OutOrStdout(), stats)
			}
			return present.Encode(cmd.OutOrStdout(), format, stats)
		},
	}
}

func newAnalysesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyses [result_id]",
		Short: "List past analyses or show a stored result",
		Args:  cobra.MaximumNArgs(1),
		Example: `  landwatch analyses
  landwatch analyses 3f2a9c1e -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				result, err := client.Analysis(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return present.Render(cmd.OutOrStdout(), format, result)
			}

			list, err := client.Analyses(cmd.Context())
			if err != nil {
				return err
			}
			if format == present.FormatText {
				return present.RenderAnalyses(cmd.OutOrStdout(), list)
			}
			return present.Encode(cmd.OutOrStdout(), format, list)
		},
	}
}
