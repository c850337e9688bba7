package landapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/csidc/landwatch/internal/fetcher"
	"github.com/csidc/landwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"LandWatch - Land Monitoring System API","version":"2.0.0"}`))
	})
	mux.HandleFunc("GET /api/plots", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"plots":[{"id":"CSIDC-SLT-001","name":"Plot A","status":"Compliant","area_sqm":5000,"coordinates":[21.25,81.63]},{"id":"CSIDC-SLT-002","name":"Plot B","status":"Encroachment"}]}`))
	})
	mux.HandleFunc("GET /api/plots/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "CSIDC-SLT-001" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Plot not found"}`))
			return
		}
		w.Write([]byte(`{"id":"CSIDC-SLT-001","name":"Plot A","lessee":"Acme Steel","dues_pending":125000}`))
	})
	mux.HandleFunc("GET /api/alerts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alerts":[{"id":"ALT-1","severity":"Critical","plot_id":"CSIDC-SLT-002"},{"id":"ALT-2","severity":"Low"}],"summary":{"total":2,"critical":1,"high":0,"medium":0,"open":2}}`))
	})
	mux.HandleFunc("GET /api/industrial-areas", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"areas":[{"id":"IA-1","name":"Siltara","total_plots":12,"violations":3}]}`))
	})
	mux.HandleFunc("GET /api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_plots":40,"compliant":31,"active_alerts":6,"cost_comparison":{"annual_drone_cost":4800000,"annual_savings":4200000,"savings_percentage":87.5}}`))
	})
	mux.HandleFunc("GET /api/analyses", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"analyses":[{"result_id":"r1","analyzed_at":"2025-01-02T10:00:00","summary":{"risk_level":"High","total_deviations":2,"change_percentage":4.2,"changed_area_pixels":900},"reference_file":"a.png","current_file":"b.png"}]}`))
	})
	mux.HandleFunc("GET /api/analyses/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "r1" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Analysis not found"}`))
			return
		}
		img := base64.StdEncoding.EncodeToString([]byte("overlay"))
		w.Write([]byte(`{"result_id":"r1","summary":{"risk_level":"High","total_deviations":2,"change_percentage":4.2,"changed_area_pixels":900},"images":{"overlay":"` + img + `"},"deviations":[],"recommendations":[]}`))
	})
	mux.HandleFunc("GET /api/analyses/{id}/report", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 report " + r.PathValue("id")))
	})
	mux.HandleFunc("GET /api/export/{kind}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("id,name\n1," + r.PathValue("kind") + "\n"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *Client {
	srv := newBackend(t)
	f := fetcher.New(fetcher.Options{Timeout: 5 * time.Second, MaxRetries: 2, RatePerSec: 100, BackoffBase: time.Millisecond})
	return NewClient(srv.URL+"/", f)
}

func TestPlots(t *testing.T) {
	c := newTestClient(t)

	plots, err := c.Plots(context.Background())
	require.NoError(t, err)
	require.Len(t, plots, 2)
	assert.Equal(t, "CSIDC-SLT-001", plots[0].ID)
	assert.Equal(t, [2]float64{21.25, 81.63}, plots[0].Coordinates)

	plot, err := c.Plot(context.Background(), "CSIDC-SLT-001")
	require.NoError(t, err)
	assert.Equal(t, "Acme Steel", plot.Lessee)
	assert.InDelta(t, 125000, plot.DuesPending, 0.01)
}

func TestPlotNotFound(t *testing.T) {
	_, err := newTestClient(t).Plot(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "Plot not found")
}

func TestAlerts(t *testing.T) {
	list, err := newTestClient(t).Alerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Summary.Total)
	assert.Len(t, list.Filter(""), 2)
	critical := list.Filter(models.SeverityCritical)
	require.Len(t, critical, 1)
	assert.Equal(t, "ALT-1", critical[0].ID)
	assert.Empty(t, list.Filter(models.SeverityHigh))
}

func TestAreasAndStats(t *testing.T) {
	c := newTestClient(t)

	areas, err := c.IndustrialAreas(context.Background())
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "Siltara", areas[0].Name)

	stats, err := c.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, stats.TotalPlots)
	assert.InDelta(t, 87.5, stats.CostComparison.SavingsPercentage, 0.001)
}

func TestAnalyses(t *testing.T) {
	c := newTestClient(t)

	listing, err := c.Analyses(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 1)
	require.NotNil(t, listing[0].Summary)
	assert.Equal(t, models.RiskHigh, listing[0].Summary.RiskLevel)

	result, err := c.Analysis(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []byte("overlay"), result.Image(models.ArtifactOverlay))

	_, err = c.Analysis(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadReport(t *testing.T) {
	dir := t.TempDir()
	path, err := newTestClient(t).DownloadReport(context.Background(), "r1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "LandWatch_Report_r1.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 report r1", string(data))
}

func TestReportFilename(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"r1", "LandWatch_Report_r1.pdf"},
		{"3f2a9c1e", "LandWatch_Report_3f2a9c1e.pdf"},
		{"../../etc/r1", "LandWatch_Report_r1.pdf"},
		{"/abs/r2", "LandWatch_Report_r2.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			name := ReportFilename(tt.id)
			assert.Equal(t, tt.want, name)

			dir := t.TempDir()
			assert.Equal(t, dir, filepath.Dir(filepath.Join(dir, name)))
		})
	}
}

func TestDownloadExport(t *testing.T) {
	tests := []struct {
		export Export
		file   string
	}{
		{ExportPlots, "CSIDC_Plot_Registry.csv"},
		{ExportAlerts, "CSIDC_Alerts.csv"},
	}
	c := newTestClient(t)
	for _, tt := range tests {
		t.Run(string(tt.export), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "exports")
			path, err := c.DownloadExport(context.Background(), tt.export, dir)
			require.NoError(t, err)
			assert.Equal(t, tt.file, filepath.Base(path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), string(tt.export))
		})
	}
}

func TestParseExport(t *testing.T) {
	e, err := ParseExport("Alerts")
	require.NoError(t, err)
	assert.Equal(t, ExportAlerts, e)

	_, err = ParseExport("plots.csv")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	msg, err := newTestClient(t).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "LandWatch - Land Monitoring System API 2.0.0", msg)
}
