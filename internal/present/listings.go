package present

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/csidc/landwatch/internal/models"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Encode writes v as JSON or YAML. Text output is handled by the
// listing-specific renderers.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "failed to encode JSON")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "failed to encode YAML")
		}
		return enc.Close()
	default:
		return eris.Errorf("format %s has no structured encoding", format)
	}
}

func listTable(headers []string, rows [][]string, colorCol int, colors []string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == colorCol && row >= 0 && row < len(colors) && colors[row] != "" {
				return cellStyle.Foreground(lipgloss.Color(colors[row]))
			}
			return cellStyle
		}).
		String()
}

func write(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return eris.Wrap(err, "failed to write output")
	}
	return nil
}

// ComplianceColor grades a 0-100 compliance score
func ComplianceColor(score float64) string {
	switch {
	case score >= 80:
		return ColorGreen
	case score >= 50:
		return ColorAmber
	default:
		return ColorRed
	}
}

// RenderPlots writes the plot registry as a table
func RenderPlots(w io.Writer, plots []models.Plot) error {
	rows := make([][]string, 0, len(plots))
	colors := make([]string, 0, len(plots))
	for _, p := range plots {
		rows = append(rows, []string{
			p.ID, p.Name, p.IndustrialArea, p.Status, p.Lessee,
			FormatCount(int64(p.AreaSqm)), fmt.Sprintf("%.0f", p.ComplianceScore),
		})
		colors = append(colors, ComplianceColor(p.ComplianceScore))
	}
	out := listTable([]string{"ID", "Name", "Area", "Status", "Lessee", "Size (m²)", "Compliance"}, rows, 6, colors)
	return write(w, out+"\n"+mutedStyle.Render(fmt.Sprintf("%d plot(s)", len(plots)))+"\n")
}

// RenderPlot writes one plot as a detail card
func RenderPlot(w io.Writer, p *models.Plot) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(p.ID))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	field("Industrial Area", p.IndustrialArea)
	field("Status", p.Status)
	field("Land Use", p.LandUse)
	field("Lessee", p.Lessee)
	field("Allotted", p.AllotmentDate)
	field("Last Inspection", p.LastInspection)
	field("Lease", fmt.Sprintf("%s (%s)", p.LeaseStatus, FormatCount(int64(p.LeaseAmount))))
	field("Dues Pending", FormatCount(int64(p.DuesPending)))
	field("Area", FormatCount(int64(p.AreaSqm))+" m²")
	field("Constructed", FormatPercent(p.ConstructedAreaPct))
	field("Coordinates", fmt.Sprintf("%.5f, %.5f", p.Coordinates[0], p.Coordinates[1]))
	b.WriteString(labelStyle.Render("Compliance"))
	b.WriteString(colored(ComplianceColor(p.ComplianceScore)).Render(fmt.Sprintf("%.0f / 100", p.ComplianceScore)))
	b.WriteString("\n")
	return write(w, b.String())
}

// RenderAlerts writes alerts with the summary counts of the full list
func RenderAlerts(w io.Writer, alerts []models.Alert, summary models.AlertSummary) error {
	rows := make([][]string, 0, len(alerts))
	colors := make([]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{a.ID, string(a.Severity), a.Type, a.PlotName, a.Status, a.Message})
		colors = append(colors, SeverityColor(a.Severity))
	}

	var b strings.Builder
	b.WriteString(listTable([]string{"ID", "Severity", "Type", "Plot", "Status", "Message"}, rows, 1, colors))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("showing %d of %d · critical %d · high %d · medium %d · open %d",
		len(alerts), summary.Total, summary.Critical, summary.High, summary.Medium, summary.Open)))
	b.WriteString("\n")
	return write(w, b.String())
}

// RenderAreas writes the industrial areas table
func RenderAreas(w io.Writer, areas []models.IndustrialArea) error {
	rows := make([][]string, 0, len(areas))
	colors := make([]string, 0, len(areas))
	for _, a := range areas {
		rows = append(rows, []string{
			a.ID, a.Name,
			fmt.Sprintf("%d", a.TotalPlots), fmt.Sprintf("%d", a.MonitoredPlots),
			fmt.Sprintf("%d", a.Compliant), fmt.Sprintf("%d", a.Violations),
			fmt.Sprintf("%.1f", a.AvgComplianceScore),
		})
		colors = append(colors, ComplianceColor(a.AvgComplianceScore))
	}
	return write(w, listTable([]string{"ID", "Name", "Plots", "Monitored", "Compliant", "Violations", "Avg Score"}, rows, 6, colors)+"\n")
}

// RenderStats writes the dashboard statistics
func RenderStats(w io.Writer, s *models.DashboardStats) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	if s.LastUpdated != "" {
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render("updated " + s.LastUpdated))
	}
	b.WriteString("\n\n")

	metric := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	metric("Total Plots", FormatCount(int64(s.TotalPlots)))
	metric("Compliant", FormatCount(int64(s.Compliant)))
	metric("Violations", FormatCount(int64(s.ViolationsDetected)))
	metric("Encroachments", FormatCount(int64(s.Encroachments)))
	metric("Vacant Plots", FormatCount(int64(s.VacantPlots)))
	metric("Boundary Dev.", FormatCount(int64(s.BoundaryDeviations)))
	metric("Unauthorized", FormatCount(int64(s.UnauthorizedConstruction)))
	metric("Non-compliant", FormatCount(int64(s.NonCompliantConstruction)))
	metric("Pending Dues", fmt.Sprintf("%d (%s)", s.PendingDues, FormatCount(int64(s.TotalDuesAmount))))
	metric("Avg Compliance", fmt.Sprintf("%.1f", s.AverageComplianceScore))
	metric("Monitored Area", FormatCount(int64(s.TotalMonitoredAreaSqm))+" m²")
	metric("Industrial Areas", fmt.Sprintf("%d", s.IndustrialAreasCount))
	metric("Active Alerts", fmt.Sprintf("%d", s.ActiveAlerts))
	metric("Analyses Run", fmt.Sprintf("%d", s.TotalAnalyses))

	cc := s.CostComparison
	if cc.AnnualDroneCost > 0 {
		b.WriteString(sectionStyle.Render("Monitoring Cost"))
		b.WriteString("\n")
		metric("Drone (annual)", FormatCount(int64(cc.AnnualDroneCost)))
		metric("Satellite", FormatCount(int64(cc.SatelliteMonitoringAnnual)))
		metric("Savings", fmt.Sprintf("%s (%s)", FormatCount(int64(cc.AnnualSavings)), FormatPercent(cc.SavingsPercentage)))
	}
	return write(w, b.String())
}

// RenderAnalyses writes the stored analyses, newest first as the service
// returns them
func RenderAnalyses(w io.Writer, list []models.AnalysisListing) error {
	rows := make([][]string, 0, len(list))
	colors := make([]string, 0, len(list))
	for _, a := range list {
		risk, deviations, change := "-", "-", "-"
		color := ""
		if a.Summary != nil {
			risk = string(a.Summary.RiskLevel)
			deviations = fmt.Sprintf("%d", a.Summary.TotalDeviations)
			change = FormatPercent(a.Summary.ChangePercentage)
			color = RiskColor(a.Summary.RiskLevel)
		}
		rows = append(rows, []string{a.ResultID, a.AnalyzedAt, risk, deviations, change, a.ReferenceFile, a.CurrentFile})
		colors = append(colors, color)
	}
	return write(w, listTable([]string{"Result", "Analyzed", "Risk", "Deviations", "Changed", "Reference", "Current"}, rows, 2, colors)+"\n")
}
