package models

import (
	"fmt"
	"strings"
)

// Role names one of the two upload slots of an analysis session
type Role string

const (
	RoleReference Role = "reference"
	RoleCurrent   Role = "current"
)

// Roles lists the slots in the order they are staged and submitted.
var Roles = []Role{RoleReference, RoleCurrent}

// ParseRole validates a role name coming from a flag or URL
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleReference:
		return RoleReference, nil
	case RoleCurrent:
		return RoleCurrent, nil
	default:
		return "", fmt.Errorf("unknown role %q (expected reference or current)", s)
	}
}

// RiskLevel is the overall risk the analysis service assigns to a comparison
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// Severity grades a single deviation or alert
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Priority grades a recommended action
type Priority string

const (
	PriorityLow       Priority = "Low"
	PriorityMedium    Priority = "Medium"
	PriorityHigh      Priority = "High"
	PriorityImmediate Priority = "Immediate"
)

// Artifact names one of the raster images returned with a result
type Artifact string

const (
	ArtifactOverlay            Artifact = "overlay"
	ArtifactHeatmap            Artifact = "heatmap"
	ArtifactDifference         Artifact = "difference"
	ArtifactAnnotatedReference Artifact = "annotated_reference"
	ArtifactAnnotatedCurrent   Artifact = "annotated_current"
)

// Artifacts lists every artifact the analysis service produces.
var Artifacts = []Artifact{
	ArtifactOverlay,
	ArtifactHeatmap,
	ArtifactDifference,
	ArtifactAnnotatedReference,
	ArtifactAnnotatedCurrent,
}

// AnalysisResult is the immutable snapshot returned by the analysis service.
// Images hold decoded JPEG bytes keyed by artifact.
type AnalysisResult struct {
	ResultID        string              `json:"result_id" yaml:"result_id"`
	Summary         Summary             `json:"summary" yaml:"summary"`
	Images          map[Artifact][]byte `json:"-" yaml:"-"`
	Deviations      []Deviation         `json:"deviations" yaml:"deviations"`
	Recommendations []Recommendation    `json:"recommendations" yaml:"recommendations"`
	Metadata        *Metadata           `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Image returns the decoded bytes of an artifact, or nil when absent
func (r *AnalysisResult) Image(a Artifact) []byte {
	if r == nil || r.Images == nil {
		return nil
	}
	return r.Images[a]
}

// Summary holds the aggregate metrics of a comparison
type Summary struct {
	RiskLevel         RiskLevel `json:"risk_level" yaml:"risk_level"`
	TotalDeviations   int       `json:"total_deviations" yaml:"total_deviations"`
	ChangePercentage  float64   `json:"change_percentage" yaml:"change_percentage"`
	ChangedAreaPixels int64     `json:"changed_area_pixels" yaml:"changed_area_pixels"`
	TotalAreaPixels   int64     `json:"total_area_pixels,omitempty" yaml:"total_area_pixels,omitempty"`
	ImageDimensions   string    `json:"image_dimensions,omitempty" yaml:"image_dimensions,omitempty"`
}

// Deviation is one detected discrepancy region between the two images
type Deviation struct {
	ID                 string   `json:"id" yaml:"id"`
	Type               string   `json:"type" yaml:"type"`
	Severity           Severity `json:"severity" yaml:"severity"`
	AreaPixels         int64    `json:"area_pixels" yaml:"area_pixels"`
	AreaPercentage     float64  `json:"area_percentage,omitempty" yaml:"area_percentage,omitempty"`
	BBox               *BBox    `json:"bbox,omitempty" yaml:"bbox,omitempty"`
	AvgChangeIntensity float64  `json:"avg_change_intensity,omitempty" yaml:"avg_change_intensity,omitempty"`
}

// BBox is a pixel bounding box inside the analysed image
type BBox struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Recommendation is an action suggested by the service for a result
type Recommendation struct {
	Priority Priority `json:"priority" yaml:"priority"`
	Action   string   `json:"action" yaml:"action"`
	Reason   string   `json:"reason" yaml:"reason"`
}

// Metadata describes the inputs the service analysed
type Metadata struct {
	ReferenceFilename   string `json:"reference_filename,omitempty" yaml:"reference_filename,omitempty"`
	CurrentFilename     string `json:"current_filename,omitempty" yaml:"current_filename,omitempty"`
	AnalyzedAt          string `json:"analyzed_at,omitempty" yaml:"analyzed_at,omitempty"`
	ReferenceDimensions string `json:"reference_dimensions,omitempty" yaml:"reference_dimensions,omitempty"`
	CurrentDimensions   string `json:"current_dimensions,omitempty" yaml:"current_dimensions,omitempty"`
}
