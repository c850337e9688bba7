package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/csidc/landwatch/internal/compare"
	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/session"
	"github.com/csidc/landwatch/internal/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	err error
}

func (s stubAnalyzer) Analyze(context.Context, staging.File, staging.File) (*models.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AnalysisResult{
		ResultID: "r1",
		Summary:  models.Summary{RiskLevel: models.RiskLow, TotalDeviations: 1, ChangePercentage: 2.5},
	}, nil
}

// flakyAnalyzer fails the first n calls
type flakyAnalyzer struct {
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyAnalyzer) Analyze(ctx context.Context, reference, current staging.File) (*models.AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.fails
	f.mu.Unlock()
	if fail {
		return nil, errors.New("connection refused")
	}
	return stubAnalyzer{}.Analyze(ctx, reference, current)
}

func stagedController(t *testing.T, analyzer session.Analyzer) *session.Controller {
	t.Helper()
	ctrl := session.New(analyzer, images.NewMemoryPreviews())
	t.Cleanup(func() { _ = ctrl.Close() })
	require.NoError(t, ctrl.Stage(models.RoleReference, staging.File{Name: "before.png", ContentType: "image/png", Data: []byte("a")}))
	require.NoError(t, ctrl.Stage(models.RoleCurrent, staging.File{Name: "after.png", ContentType: "image/png", Data: []byte("b")}))
	return ctrl
}

func succeededModel(t *testing.T) (Model, *session.Controller) {
	t.Helper()
	ctrl := stagedController(t, stubAnalyzer{})
	require.True(t, ctrl.Submit(context.Background()))
	require.NoError(t, ctrl.Wait(context.Background()))

	m := New(context.Background(), ctrl, false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), ctrl
}

func TestInitAutoSubmit(t *testing.T) {
	ctrl := stagedController(t, stubAnalyzer{})

	assert.Nil(t, New(context.Background(), ctrl, false).Init())

	cmd := New(context.Background(), ctrl, true).Init()
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, changeMsg{}, msg)
	require.NoError(t, ctrl.Wait(context.Background()))
	assert.Equal(t, session.Succeeded, ctrl.Phase())
}

func TestSpinnerTicksOnlyWhileSubmitting(t *testing.T) {
	ctrl := stagedController(t, stubAnalyzer{})
	m := New(context.Background(), ctrl, false)

	snap := ctrl.Snapshot()
	snap.Phase = session.Submitting
	next, cmd := m.Update(changeMsg(snap))
	assert.NotNil(t, cmd)
	assert.Contains(t, next.View(), "Analyzing")

	snap.Phase = session.Failed
	snap.Error = "Analysis failed. Please try again."
	next, _ = next.Update(changeMsg(snap))
	_, cmd = next.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "Analysis failed. Please try again.")
}

func TestKeyboardDrivesComparison(t *testing.T) {
	m, ctrl := succeededModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 55.0, ctrl.Snapshot().View.Position)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	assert.Equal(t, 45.0, ctrl.Snapshot().View.Position)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, compare.TabHeatmap, ctrl.Snapshot().View.Tab)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	assert.Equal(t, compare.TabAnnotated, ctrl.Snapshot().View.Tab)
	assert.Equal(t, 45.0, ctrl.Snapshot().View.Position)
	assert.Contains(t, next.View(), "Side by Side")
}

func TestMouseDragMovesSlider(t *testing.T) {
	m, ctrl := succeededModel(t)
	rect := m.sliderRect()
	require.Equal(t, 8.0, rect.Left)
	require.Equal(t, 84.0, rect.Width)

	// motion without a press does nothing
	next, _ := m.Update(tea.MouseMsg{X: 8, Y: sliderRow, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Equal(t, 50.0, ctrl.Snapshot().View.Position)

	// press off the slider row is ignored
	next, _ = next.Update(tea.MouseMsg{X: 8, Y: sliderRow + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 50.0, ctrl.Snapshot().View.Position)

	next, _ = next.Update(tea.MouseMsg{X: 29, Y: sliderRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.InDelta(t, 25.0, ctrl.Snapshot().View.Position, 1e-9)

	// dragging continues off the row and clamps at the edge
	next, _ = next.Update(tea.MouseMsg{X: 200, Y: sliderRow + 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	assert.Equal(t, 100.0, ctrl.Snapshot().View.Position)

	next, _ = next.Update(tea.MouseMsg{X: 50, Y: sliderRow, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	next, _ = next.Update(tea.MouseMsg{X: 8, Y: sliderRow, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Equal(t, 100.0, ctrl.Snapshot().View.Position)
	_ = next
}

func TestComparisonKeysBeforeResult(t *testing.T) {
	ctrl := stagedController(t, stubAnalyzer{err: errors.New("down")})
	m := New(context.Background(), ctrl, false)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, compare.DefaultPosition, ctrl.Snapshot().View.Position)

	// mouse events are dropped outside Succeeded
	_, _ = m.Update(tea.MouseMsg{X: 29, Y: sliderRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, compare.DefaultPosition, ctrl.Snapshot().View.Position)
}

func TestEnterSubmitsWhenStaged(t *testing.T) {
	ctrl := stagedController(t, stubAnalyzer{})
	m := New(context.Background(), ctrl, false)
	assert.Contains(t, m.View(), "enter: analyze")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	require.NoError(t, ctrl.Wait(context.Background()))
	assert.Equal(t, session.Succeeded, ctrl.Phase())
}

func TestEnterRetriesAfterFailure(t *testing.T) {
	analyzer := &flakyAnalyzer{fails: 1}
	ctrl := stagedController(t, analyzer)
	require.True(t, ctrl.Submit(context.Background()))
	require.NoError(t, ctrl.Wait(context.Background()))
	require.Equal(t, session.Failed, ctrl.Phase())

	m := New(context.Background(), ctrl, false)
	assert.Contains(t, m.View(), "enter: retry")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	require.NoError(t, ctrl.Wait(context.Background()))
	assert.Equal(t, session.Succeeded, ctrl.Phase())
	assert.Equal(t, 2, analyzer.calls)
}

func TestQuit(t *testing.T) {
	ctrl := stagedController(t, stubAnalyzer{})
	_, cmd := New(context.Background(), ctrl, false).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
