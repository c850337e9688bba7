// Package analysis talks to the remote change-detection service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/staging"
	"github.com/rotisserie/eris"
)

// maxResponseSize bounds the analysis payload; five base64 JPEG artifacts of a
// large survey image stay well under it.
const maxResponseSize = 256 << 20

// Client submits image pairs to the analysis service.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze sends both files in one multipart request and parses the result.
// Every error returned is a *Failure.
func (c *Client) Analyze(ctx context.Context, reference, current staging.File) (*models.AnalysisResult, error) {
	body, contentType, err := buildMultipart(reference, current)
	if err != nil {
		return nil, &Failure{Kind: TransportFailure, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/analyze", body)
	if err != nil {
		return nil, &Failure{Kind: TransportFailure, Err: eris.Wrap(err, "failed to create request")}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	slog.Info("Submitting analysis",
		"reference", reference.Name,
		"current", current.Name,
		"bytes", body.Len(),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Failure{Kind: TransportFailure, Err: eris.Wrap(err, "failed to call analysis service")}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Failure{Kind: TransportFailure, StatusCode: resp.StatusCode, Err: eris.Wrap(err, "failed to read response")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := parseDetail(payload)
		slog.Warn("Analysis service returned non-success status", "status", resp.StatusCode, "detail", detail)
		if detail == "" {
			return nil, &Failure{Kind: TransportFailure, StatusCode: resp.StatusCode}
		}
		return nil, &Failure{Kind: ServiceRejected, StatusCode: resp.StatusCode, Detail: detail}
	}

	result, err := DecodeResult(bytes.NewReader(payload))
	if err != nil {
		return nil, &Failure{Kind: TransportFailure, StatusCode: resp.StatusCode, Err: err}
	}

	slog.Info("Analysis completed",
		"result_id", result.ResultID,
		"risk_level", result.Summary.RiskLevel,
		"deviations", result.Summary.TotalDeviations,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func buildMultipart(reference, current staging.File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct {
		name string
		file staging.File
	}{
		{string(models.RoleReference), reference},
		{string(models.RoleCurrent), current},
	}
	for _, f := range fields {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.name, f.file.Name))
		h.Set("Content-Type", images.NormalizeKind(f.file.ContentType))
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", eris.Wrapf(err, "failed to create %s part", f.name)
		}
		if _, err := part.Write(f.file.Data); err != nil {
			return nil, "", eris.Wrapf(err, "failed to write %s part", f.name)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", eris.Wrap(err, "failed to close multipart body")
	}
	return &buf, w.FormDataContentType(), nil
}

// parseDetail extracts a string "detail" from an error body. Any other
// shape (validation arrays, HTML error pages) yields "".
func parseDetail(payload []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

type wireResult struct {
	ResultID        string                  `json:"result_id"`
	Summary         *models.Summary         `json:"summary"`
	Images          map[string]string       `json:"images"`
	Deviations      []models.Deviation      `json:"deviations"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Metadata        *models.Metadata        `json:"metadata"`
}

// DecodeResult parses an analysis payload, decoding the base64 artifacts.
// It is shared by the analyze call and the stored-analysis read API.
func DecodeResult(r io.Reader) (*models.AnalysisResult, error) {
	var wire wireResult
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, eris.Wrap(err, "failed to decode analysis response")
	}
	if wire.ResultID == "" || wire.Summary == nil {
		return nil, eris.New("analysis response is missing result_id or summary")
	}

	result := &models.AnalysisResult{
		ResultID:        wire.ResultID,
		Summary:         *wire.Summary,
		Images:          make(map[models.Artifact][]byte, len(wire.Images)),
		Deviations:      wire.Deviations,
		Recommendations: wire.Recommendations,
		Metadata:        wire.Metadata,
	}
	if result.Deviations == nil {
		result.Deviations = []models.Deviation{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []models.Recommendation{}
	}

	for name, encoded := range wire.Images {
		data, err := images.DecodeArtifact(encoded)
		if err != nil {
			return nil, eris.Wrapf(err, "artifact %s", name)
		}
		result.Images[models.Artifact(name)] = data
	}

	return result, nil
}
