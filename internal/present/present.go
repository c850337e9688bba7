// Package present projects an analysis result into display values. Nothing
// here mutates the result.
package present

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/csidc/landwatch/internal/models"
	"github.com/dustin/go-humanize"
)

// Colors shared by every renderer.
const (
	ColorRed     = "#e53e3e"
	ColorAmber   = "#dd6b20"
	ColorPurple  = "#805ad5"
	ColorGreen   = "#38a169"
	ColorUnknown = "#999999"
)

var priorityColors = map[models.Priority]string{
	models.PriorityImmediate: ColorRed,
	models.PriorityHigh:      ColorAmber,
	models.PriorityMedium:    ColorPurple,
	models.PriorityLow:       ColorGreen,
}

var riskColors = map[models.RiskLevel]string{
	models.RiskCritical: ColorRed,
	models.RiskHigh:     ColorAmber,
	models.RiskMedium:   ColorPurple,
	models.RiskLow:      ColorGreen,
}

// PriorityColor returns the badge color of a recommendation priority
func PriorityColor(p models.Priority) string {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return ColorUnknown
}

// RiskColor returns the color of a risk level
func RiskColor(r models.RiskLevel) string {
	if c, ok := riskColors[r]; ok {
		return c
	}
	return ColorUnknown
}

// SeverityColor returns the badge color of a deviation severity. Severities
// share the risk palette.
func SeverityColor(s models.Severity) string {
	return RiskColor(models.RiskLevel(s))
}

// Metrics are the headline figures of a result
type Metrics struct {
	ResultID          string           `json:"result_id" yaml:"result_id"`
	RiskLevel         models.RiskLevel `json:"risk_level" yaml:"risk_level"`
	RiskColor         string           `json:"risk_color" yaml:"risk_color"`
	TotalDeviations   int              `json:"total_deviations" yaml:"total_deviations"`
	ChangePercentage  float64          `json:"change_percentage" yaml:"change_percentage"`
	ChangedAreaPixels int64            `json:"changed_area_pixels" yaml:"changed_area_pixels"`
	UnchangedPercent  float64          `json:"unchanged_percentage" yaml:"unchanged_percentage"`
}

// Headline is the one-line risk description shown under the risk label
func (m Metrics) Headline() string {
	return fmt.Sprintf("%d deviation(s) detected · %s%% area changed",
		m.TotalDeviations, strconv.FormatFloat(m.ChangePercentage, 'f', -1, 64))
}

// Summarize extracts the headline metrics
func Summarize(r *models.AnalysisResult) Metrics {
	s := r.Summary
	return Metrics{
		ResultID:          r.ResultID,
		RiskLevel:         s.RiskLevel,
		RiskColor:         RiskColor(s.RiskLevel),
		TotalDeviations:   s.TotalDeviations,
		ChangePercentage:  s.ChangePercentage,
		ChangedAreaPixels: s.ChangedAreaPixels,
		UnchangedPercent:  math.Round((100-s.ChangePercentage)*10) / 10,
	}
}

// DeviationRow is one line of the deviation table
type DeviationRow struct {
	ID            string          `json:"id" yaml:"id"`
	Type          string          `json:"type" yaml:"type"`
	Severity      models.Severity `json:"severity" yaml:"severity"`
	SeverityColor string          `json:"severity_color" yaml:"severity_color"`
	AreaPixels    int64           `json:"area_pixels" yaml:"area_pixels"`
}

// DeviationRows lists deviations in the order the service returned them
func DeviationRows(r *models.AnalysisResult) []DeviationRow {
	rows := make([]DeviationRow, 0, len(r.Deviations))
	for _, d := range r.Deviations {
		rows = append(rows, DeviationRow{
			ID:            d.ID,
			Type:          d.Type,
			Severity:      d.Severity,
			SeverityColor: SeverityColor(d.Severity),
			AreaPixels:    d.AreaPixels,
		})
	}
	return rows
}

// RecommendationItem is one recommended action with its priority badge
type RecommendationItem struct {
	Label  string `json:"label" yaml:"label"`
	Color  string `json:"color" yaml:"color"`
	Action string `json:"action" yaml:"action"`
	Reason string `json:"reason" yaml:"reason"`
}

// RecommendationItems lists recommendations in the order the service
// returned them
func RecommendationItems(r *models.AnalysisResult) []RecommendationItem {
	items := make([]RecommendationItem, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		items = append(items, RecommendationItem{
			Label:  strings.ToUpper(string(rec.Priority)),
			Color:  PriorityColor(rec.Priority),
			Action: rec.Action,
			Reason: rec.Reason,
		})
	}
	return items
}

// FormatCount groups digits in threes, e.g. 1234567 -> "1,234,567"
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent prints a percentage the way the service reports it, without
// trailing zeros
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}
