// Package compare holds the comparison view state of a finished analysis:
// the selected visualization tab and the before/after reveal slider.
package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/csidc/landwatch/internal/models"
)

// Tab selects which visualization of a result is shown
type Tab string

const (
	TabOverlay    Tab = "overlay"
	TabHeatmap    Tab = "heatmap"
	TabDifference Tab = "difference"
	TabAnnotated  Tab = "annotated"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabOverlay, TabHeatmap, TabDifference, TabAnnotated}

// Label is the human-facing tab title
func (t Tab) Label() string {
	switch t {
	case TabOverlay:
		return "Change Overlay"
	case TabHeatmap:
		return "Heatmap"
	case TabDifference:
		return "Binary Diff"
	case TabAnnotated:
		return "Side by Side"
	default:
		return string(t)
	}
}

// ErrUnknownTab is returned when selecting a tab that does not exist.
var ErrUnknownTab = errors.New("unknown tab")

// ParseTab validates a tab name
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

const (
	DefaultTab      = TabOverlay
	DefaultPosition = 50.0
)

// Rect is the horizontal extent of the slider container, in whatever unit the
// host measures pointers in (CSS pixels, terminal cells).
type Rect struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// PointerKind distinguishes pointer events over the slider
type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerPress
	PointerRelease
	PointerClick
)

// PointerEvent is a pointer sample. PrimaryDown reports whether the primary
// button is held at the time of the sample.
type PointerEvent struct {
	Kind        PointerKind
	X           float64
	PrimaryDown bool
}

// Geometry is what a renderer needs to draw the reveal slider.
//
// The reference layer sits in a clip container ClipWidthPercent wide and is
// itself ReferenceWidthPercent of that container, so it always spans the full
// slider width and stays aligned with the background.
type Geometry struct {
	ClipWidthPercent      float64 `json:"clip_width_percent"`
	ReferenceWidthPercent float64 `json:"reference_width_percent"`
	ReferenceHidden       bool    `json:"reference_hidden"`
}

// State is a copy of the view state
type State struct {
	Tab      Tab     `json:"tab"`
	Position float64 `json:"position"`
}

// View is the tab + slider state machine. Its zero value is not ready; use New.
// Not safe for concurrent use.
type View struct {
	tab      Tab
	position float64
}

// New returns a view at the defaults
func New() *View {
	v := &View{}
	v.Reset()
	return v
}

// Reset returns the view to the overlay tab and a centered slider
func (v *View) Reset() {
	v.tab = DefaultTab
	v.position = DefaultPosition
}

func (v *View) Tab() Tab {
	return v.tab
}

func (v *View) Position() float64 {
	return v.position
}

func (v *View) State() State {
	return State{Tab: v.tab, Position: v.position}
}

// SetTab selects a tab. Selecting the current tab is a no-op.
func (v *View) SetTab(t Tab) error {
	if _, err := ParseTab(string(t)); err != nil {
		return err
	}
	v.tab = t
	return nil
}

// SetSliderPosition maps a horizontal pointer coordinate inside rect to a
// position in [0, 100]. A rect without width leaves the position unchanged.
func (v *View) SetSliderPosition(x float64, rect Rect) {
	if !(rect.Width > 0) {
		return
	}
	ratio := (x - rect.Left) / rect.Width
	if math.IsNaN(ratio) {
		return
	}
	v.position = clamp(ratio, 0, 1) * 100
}

// HandlePointer applies a pointer event. Moves only drag the slider while the
// primary button is down; presses and clicks jump to the pointer.
func (v *View) HandlePointer(ev PointerEvent, rect Rect) {
	switch ev.Kind {
	case PointerMove:
		if ev.PrimaryDown {
			v.SetSliderPosition(ev.X, rect)
		}
	case PointerPress, PointerClick:
		v.SetSliderPosition(ev.X, rect)
	}
}

// Nudge moves the slider by delta percentage points, for keyboard control
func (v *View) Nudge(delta float64) {
	if math.IsNaN(delta) {
		return
	}
	v.position = clamp(v.position+delta, 0, 100)
}

// Geometry derives the clip layout from the current position
func (v *View) Geometry() Geometry {
	return GeometryAt(v.position)
}

// GeometryAt derives the clip layout for position
func GeometryAt(position float64) Geometry {
	position = clamp(position, 0, 100)
	if position == 0 {
		return Geometry{ReferenceHidden: true}
	}
	return Geometry{
		ClipWidthPercent:      position,
		ReferenceWidthPercent: 100 / (position / 100),
	}
}

// Artifacts returns the images a tab renders, in display order.
func Artifacts(t Tab) []models.Artifact {
	switch t {
	case TabOverlay:
		return []models.Artifact{models.ArtifactOverlay}
	case TabHeatmap:
		return []models.Artifact{models.ArtifactHeatmap}
	case TabDifference:
		return []models.Artifact{models.ArtifactDifference}
	case TabAnnotated:
		return []models.Artifact{models.ArtifactAnnotatedReference, models.ArtifactAnnotatedCurrent}
	default:
		return nil
	}
}

// SliderLayers names the slider's background and clipped layers. The slider
// is independent of the selected tab.
func SliderLayers() (background, clipped models.Artifact) {
	return models.ArtifactAnnotatedCurrent, models.ArtifactAnnotatedReference
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
