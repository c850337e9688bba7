// Package landapi reads the plot registry, alerts, statistics and stored
// analyses from the LandWatch backend, and downloads its reports and exports.
package landapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/csidc/landwatch/internal/analysis"
	"github.com/csidc/landwatch/internal/fetcher"
	"github.com/csidc/landwatch/internal/models"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when the backend has no such plot or analysis.
var ErrNotFound = errors.New("not found")

// Export names one of the CSV exports offered by the backend
type Export string

const (
	ExportPlots  Export = "plots"
	ExportAlerts Export = "alerts"
)

// Filename is the name the backend gives the download
func (e Export) Filename() string {
	switch e {
	case ExportPlots:
		return "CSIDC_Plot_Registry.csv"
	case ExportAlerts:
		return "CSIDC_Alerts.csv"
	default:
		return string(e) + ".csv"
	}
}

// ParseExport validates an export name
func ParseExport(s string) (Export, error) {
	switch e := Export(strings.ToLower(s)); e {
	case ExportPlots, ExportAlerts:
		return e, nil
	default:
		return "", fmt.Errorf("unknown export %q (expected plots or alerts)", s)
	}
}

// ReportFilename is the name of the PDF report of a result. Only the last
// element of resultID is used so the name never leaves its directory.
func ReportFilename(resultID string) string {
	return fmt.Sprintf("LandWatch_Report_%s.pdf", filepath.Base(resultID))
}

// Client is the read-side API client
type Client struct {
	BaseURL string
	fetcher *fetcher.HTTPFetcher
}

// NewClient creates a client for the backend rooted at baseURL
func NewClient(baseURL string, f *fetcher.HTTPFetcher) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		fetcher: f,
	}
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.BaseURL + "/api/" + strings.Join(escaped, "/")
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	if err := c.fetcher.GetJSON(ctx, rawURL, v); err != nil {
		return translate(err)
	}
	return nil
}

// translate maps a 404 to ErrNotFound, keeping the backend's detail message.
func translate(err error) error {
	var statusErr *fetcher.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	detail := statusErr.Body
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal([]byte(statusErr.Body), &body) == nil && body.Detail != "" {
		detail = body.Detail
	}
	if statusErr.Code == http.StatusNotFound {
		if detail == "" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	}
	return eris.Wrapf(err, "backend error: %s", detail)
}

// Plots lists the plot registry
func (c *Client) Plots(ctx context.Context) ([]models.Plot, error) {
	var resp struct {
		Plots []models.Plot `json:"plots"`
	}
	if err := c.getJSON(ctx, c.endpoint("plots"), &resp); err != nil {
		return nil, err
	}
	return resp.Plots, nil
}

// Plot fetches a single plot
func (c *Client) Plot(ctx context.Context, id string) (*models.Plot, error) {
	var plot models.Plot
	if err := c.getJSON(ctx, c.endpoint("plots", id), &plot); err != nil {
		return nil, err
	}
	return &plot, nil
}

// Alerts lists compliance alerts with their summary counts
func (c *Client) Alerts(ctx context.Context) (*models.AlertList, error) {
	var list models.AlertList
	if err := c.getJSON(ctx, c.endpoint("alerts"), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// IndustrialAreas lists the monitored industrial estates
func (c *Client) IndustrialAreas(ctx context.Context) ([]models.IndustrialArea, error) {
	var resp struct {
		Areas []models.IndustrialArea `json:"areas"`
	}
	if err := c.getJSON(ctx, c.endpoint("industrial-areas"), &resp); err != nil {
		return nil, err
	}
	return resp.Areas, nil
}

// DashboardStats fetches aggregate statistics
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.getJSON(ctx, c.endpoint("dashboard", "stats"), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Analyses lists analyses stored on the backend
func (c *Client) Analyses(ctx context.Context) ([]models.AnalysisListing, error) {
	var resp struct {
		Analyses []models.AnalysisListing `json:"analyses"`
	}
	if err := c.getJSON(ctx, c.endpoint("analyses"), &resp); err != nil {
		return nil, err
	}
	return resp.Analyses, nil
}

// Analysis fetches a stored analysis in the same shape the analyze call returns
func (c *Client) Analysis(ctx context.Context, resultID string) (*models.AnalysisResult, error) {
	body, err := c.fetcher.Download(ctx, c.endpoint("analyses", resultID))
	if err != nil {
		return nil, translate(err)
	}
	defer body.Close()
	return analysis.DecodeResult(body)
}

// DownloadReport saves the PDF report of resultID into dir and returns its path
func (c *Client) DownloadReport(ctx context.Context, resultID, dir string) (string, error) {
	path := filepath.Join(dir, ReportFilename(resultID))
	return path, c.download(ctx, c.endpoint("analyses", resultID, "report"), path)
}

// DownloadExport saves a CSV export into dir and returns its path
func (c *Client) DownloadExport(ctx context.Context, e Export, dir string) (string, error) {
	path := filepath.Join(dir, e.Filename())
	return path, c.download(ctx, c.endpoint("export", string(e)), path)
}

func (c *Client) download(ctx context.Context, rawURL, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return eris.Wrap(err, "failed to create output directory")
	}
	n, err := c.fetcher.DownloadToFile(ctx, rawURL, path)
	if err != nil {
		return translate(err)
	}
	slog.Info("Downloaded file", "path", path, "bytes", n)
	return nil
}

// Ping checks that the backend answers on its root endpoint
func (c *Client) Ping(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
		Version string `json:"version"`
	}
	if err := c.getJSON(ctx, c.BaseURL+"/", &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", resp.Message, resp.Version)), nil
}
