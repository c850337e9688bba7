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

// Format selects an output renderer
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an --output flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", s)
	}
}

// Report is the structured form written by the JSON and YAML renderers
type Report struct {
	Summary         Metrics              `json:"summary" yaml:"summary"`
	Deviations      []DeviationRow       `json:"deviations" yaml:"deviations"`
	Recommendations []RecommendationItem `json:"recommendations" yaml:"recommendations"`
	Metadata        *models.Metadata     `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Artifacts       []string             `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// NewReport projects r into a Report
func NewReport(r *models.AnalysisResult) Report {
	rep := Report{
		Summary:         Summarize(r),
		Deviations:      DeviationRows(r),
		Recommendations: RecommendationItems(r),
		Metadata:        r.Metadata,
	}
	for _, a := range models.Artifacts {
		if r.Image(a) != nil {
			rep.Artifacts = append(rep.Artifacts, string(a))
		}
	}
	return rep
}

// Render writes r to w in the given format
func Render(w io.Writer, format Format, r *models.AnalysisResult) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatYAML:
		return RenderYAML(w, r)
	default:
		return RenderText(w, r)
	}
}

func RenderJSON(w io.Writer, r *models.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReport(r)); err != nil {
		return eris.Wrap(err, "failed to encode JSON")
	}
	return nil
}

func RenderYAML(w io.Writer, r *models.AnalysisResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewReport(r)); err != nil {
		return eris.Wrap(err, "failed to encode YAML")
	}
	return enc.Close()
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

func colored(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Bold(true)
}

// RenderText writes a terminal report: risk banner, metrics, deviation table
// and recommended actions.
func RenderText(w io.Writer, r *models.AnalysisResult) error {
	m := Summarize(r)
	var b strings.Builder

	b.WriteString(colored(m.RiskColor).Render("Risk Level: " + string(m.RiskLevel)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.Headline()))
	b.WriteString("\n\n")

	metric := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	metric("Result", m.ResultID)
	metric("Deviations Found", fmt.Sprintf("%d", m.TotalDeviations))
	metric("Area Changed", FormatPercent(m.ChangePercentage))
	metric("Changed Pixels", FormatCount(m.ChangedAreaPixels))
	metric("Unchanged Area", fmt.Sprintf("%.1f%%", m.UnchangedPercent))

	if rows := DeviationRows(r); len(rows) > 0 {
		b.WriteString(sectionStyle.Render("Detected Deviations"))
		b.WriteString("\n")
		b.WriteString(deviationTable(rows))
		b.WriteString("\n")
	}

	if items := RecommendationItems(r); len(items) > 0 {
		b.WriteString(sectionStyle.Render("Recommended Actions"))
		b.WriteString("\n")
		for _, item := range items {
			b.WriteString(colored(item.Color).Render("[" + item.Label + "]"))
			b.WriteString(" ")
			b.WriteString(titleStyle.Render(item.Action))
			b.WriteString("\n")
			if item.Reason != "" {
				b.WriteString("  ")
				b.WriteString(mutedStyle.Render(item.Reason))
				b.WriteString("\n")
			}
		}
	}

	if md := r.Metadata; md != nil {
		b.WriteString(sectionStyle.Render("Inputs"))
		b.WriteString("\n")
		metric("Reference", strings.TrimSpace(md.ReferenceFilename+" "+md.ReferenceDimensions))
		metric("Current", strings.TrimSpace(md.CurrentFilename+" "+md.CurrentDimensions))
		if md.AnalyzedAt != "" {
			metric("Analyzed At", md.AnalyzedAt)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "failed to write report")
	}
	return nil
}

func deviationTable(rows []DeviationRow) string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{row.ID, row.Type, string(row.Severity), FormatCount(row.AreaPixels)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "Type", "Severity", "Area (px)").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(rows) {
				return cellStyle.Foreground(lipgloss.Color(rows[row].SeverityColor))
			}
			return cellStyle
		})
	return t.String()
}
