package present

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/csidc/landwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestComplianceColor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, ColorGreen},
		{80, ColorGreen},
		{79.9, ColorAmber},
		{50, ColorAmber},
		{12, ColorRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComplianceColor(tt.score), "score %v", tt.score)
	}
}

func TestRenderPlots(t *testing.T) {
	var buf bytes.Buffer
	plots := []models.Plot{
		{ID: "CSIDC-SLT-001", Name: "Plot A", AreaSqm: 12500, ComplianceScore: 91},
		{ID: "CSIDC-SLT-002", Name: "Plot B", ComplianceScore: 34},
	}
	require.NoError(t, RenderPlots(&buf, plots))
	out := buf.String()
	assert.Contains(t, out, "CSIDC-SLT-002")
	assert.Contains(t, out, "12,500")
	assert.Contains(t, out, "2 plot(s)")
}

func TestRenderPlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPlot(&buf, &models.Plot{ID: "P1", Name: "Plot A", Lessee: "Acme Steel", DuesPending: 125000, ComplianceScore: 64}))
	out := buf.String()
	assert.Contains(t, out, "Acme Steel")
	assert.Contains(t, out, "125,000")
	assert.Contains(t, out, "64 / 100")
}

func TestRenderAlerts(t *testing.T) {
	var buf bytes.Buffer
	alerts := []models.Alert{{ID: "ALT-1", Severity: models.SeverityCritical, Message: "Encroachment detected"}}
	require.NoError(t, RenderAlerts(&buf, alerts, models.AlertSummary{Total: 5, Critical: 1, Open: 3}))
	out := buf.String()
	assert.Contains(t, out, "Encroachment detected")
	assert.Contains(t, out, "showing 1 of 5")
}

func TestRenderStatsAndAnalyses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStats(&buf, &models.DashboardStats{
		TotalPlots:     1200,
		CostComparison: models.CostComparison{AnnualDroneCost: 4800000, AnnualSavings: 4200000, SavingsPercentage: 87.5},
	}))
	assert.Contains(t, buf.String(), "1,200")
	assert.Contains(t, buf.String(), "4,200,000")

	buf.Reset()
	require.NoError(t, RenderAnalyses(&buf, []models.AnalysisListing{
		{ResultID: "r1", Summary: &models.Summary{RiskLevel: models.RiskHigh, TotalDeviations: 2}},
		{ResultID: "r2"},
	}))
	assert.Contains(t, buf.String(), "r1")
	assert.Contains(t, buf.String(), "High")
}

func TestEncode(t *testing.T) {
	areas := []models.IndustrialArea{{ID: "IA-1", Name: "Siltara", TotalPlots: 12}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, areas))
	var fromJSON []models.IndustrialArea
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, areas, fromJSON)

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, areas))
	assert.Contains(t, buf.String(), "total_plots: 12")

	var fromYAML []models.IndustrialArea
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, "Siltara", fromYAML[0].Name)

	assert.Error(t, Encode(&buf, FormatText, areas))
}
