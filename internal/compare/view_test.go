package compare

import (
	"errors"
	"math"
	"testing"

	"github.com/csidc/landwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	v := New()
	assert.Equal(t, TabOverlay, v.Tab())
	assert.Equal(t, 50.0, v.Position())
}

func TestSetSliderPosition(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		rect Rect
		want float64
	}{
		{"quarter", 100, Rect{Left: 0, Width: 400}, 25},
		{"offset container", 150, Rect{Left: 50, Width: 400}, 25},
		{"left of container", -30, Rect{Left: 0, Width: 400}, 0},
		{"right of container", 900, Rect{Left: 0, Width: 400}, 100},
		{"left edge", 10, Rect{Left: 10, Width: 200}, 0},
		{"right edge", 210, Rect{Left: 10, Width: 200}, 100},
		{"zero width keeps position", 100, Rect{Left: 0, Width: 0}, 50},
		{"negative width keeps position", 100, Rect{Left: 0, Width: -5}, 50},
		{"NaN x keeps position", math.NaN(), Rect{Left: 0, Width: 400}, 50},
		{"NaN width keeps position", 100, Rect{Left: 0, Width: math.NaN()}, 50},
		{"NaN left keeps position", 100, Rect{Left: math.NaN(), Width: 400}, 50},
		{"infinite x", math.Inf(1), Rect{Left: 0, Width: 400}, 100},
		{"infinite x and width keeps position", math.Inf(1), Rect{Left: 0, Width: math.Inf(1)}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.SetSliderPosition(tt.x, tt.rect)
			assert.InDelta(t, tt.want, v.Position(), 1e-9)
		})
	}
}

func TestSliderScenario(t *testing.T) {
	v := New()
	rect := Rect{Left: 0, Width: 400}

	v.HandlePointer(PointerEvent{Kind: PointerPress, X: 100, PrimaryDown: true}, rect)

	assert.InDelta(t, 25, v.Position(), 1e-9)
	g := v.Geometry()
	assert.InDelta(t, 25, g.ClipWidthPercent, 1e-9)
	assert.InDelta(t, 400, g.ReferenceWidthPercent, 1e-9)
	assert.False(t, g.ReferenceHidden)
}

func TestHandlePointer(t *testing.T) {
	rect := Rect{Left: 0, Width: 200}

	tests := []struct {
		name string
		ev   PointerEvent
		want float64
	}{
		{"move without button", PointerEvent{Kind: PointerMove, X: 20}, 50},
		{"move with button", PointerEvent{Kind: PointerMove, X: 20, PrimaryDown: true}, 10},
		{"press", PointerEvent{Kind: PointerPress, X: 150, PrimaryDown: true}, 75},
		{"click", PointerEvent{Kind: PointerClick, X: 200}, 100},
		{"release", PointerEvent{Kind: PointerRelease, X: 0}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.HandlePointer(tt.ev, rect)
			assert.InDelta(t, tt.want, v.Position(), 1e-9)
		})
	}
}

func TestGeometryAt(t *testing.T) {
	assert.Equal(t, Geometry{ReferenceHidden: true}, GeometryAt(0))
	assert.Equal(t, Geometry{ClipWidthPercent: 100, ReferenceWidthPercent: 100}, GeometryAt(100))
	assert.Equal(t, Geometry{ClipWidthPercent: 50, ReferenceWidthPercent: 200}, GeometryAt(50))
	assert.Equal(t, GeometryAt(100), GeometryAt(140))
}

func TestSetTab(t *testing.T) {
	v := New()

	require.NoError(t, v.SetTab(TabHeatmap))
	first := v.State()
	require.NoError(t, v.SetTab(TabHeatmap))
	assert.Equal(t, first, v.State())

	err := v.SetTab(Tab("thermal"))
	assert.True(t, errors.Is(err, ErrUnknownTab))
	assert.Equal(t, TabHeatmap, v.Tab())
}

func TestSetTabLeavesSlider(t *testing.T) {
	v := New()
	v.SetSliderPosition(30, Rect{Width: 100})
	require.NoError(t, v.SetTab(TabAnnotated))
	assert.InDelta(t, 30, v.Position(), 1e-9)
}

func TestReset(t *testing.T) {
	v := New()
	require.NoError(t, v.SetTab(TabDifference))
	v.Nudge(-45)
	v.Reset()
	assert.Equal(t, State{Tab: TabOverlay, Position: 50}, v.State())
}

func TestNudgeClamps(t *testing.T) {
	v := New()
	v.Nudge(80)
	assert.Equal(t, 100.0, v.Position())
	v.Nudge(-250)
	assert.Equal(t, 0.0, v.Position())
	v.Nudge(math.NaN())
	assert.Equal(t, 0.0, v.Position())
}

func TestArtifacts(t *testing.T) {
	assert.Equal(t, []models.Artifact{models.ArtifactOverlay}, Artifacts(TabOverlay))
	assert.Equal(t, []models.Artifact{models.ArtifactHeatmap}, Artifacts(TabHeatmap))
	assert.Equal(t, []models.Artifact{models.ArtifactDifference}, Artifacts(TabDifference))
	assert.Equal(t,
		[]models.Artifact{models.ArtifactAnnotatedReference, models.ArtifactAnnotatedCurrent},
		Artifacts(TabAnnotated))
	assert.Nil(t, Artifacts(Tab("nope")))

	bg, clipped := SliderLayers()
	assert.Equal(t, models.ArtifactAnnotatedCurrent, bg)
	assert.Equal(t, models.ArtifactAnnotatedReference, clipped)
}
