// Package tui is the terminal host for an analysis session: it shows the
// staging state, a spinner while the request is in flight, and the comparison
// view with a mouse-draggable reveal slider.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/csidc/landwatch/internal/compare"
	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/present"
	"github.com/csidc/landwatch/internal/session"
)

// Layout of the slider line. The slider is drawn on a fixed row so mouse
// events can be mapped without measuring the rendered frame.
const (
	sliderRow   = 3
	sliderLabel = "Reveal  "
	nudgeStep   = 5.0
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#2b6cb0")).Padding(0, 1)
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#a0aec0")).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color(present.ColorPurple)).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(present.ColorRed))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#718096"))
	filenameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(present.ColorGreen))
)

// changeMsg carries a snapshot published by the controller
type changeMsg session.Snapshot

// Model renders one session. The controller owns all state; the model keeps
// only the latest snapshot and terminal geometry.
type Model struct {
	ctx        context.Context
	ctrl       *session.Controller
	autoSubmit bool

	snap     session.Snapshot
	spinner  spinner.Model
	bar      progress.Model
	width    int
	dragging bool
	lastErr  error
}

// New creates a model for ctrl. With autoSubmit the analysis starts as soon
// as the program does.
func New(ctx context.Context, ctrl *session.Controller, autoSubmit bool) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(present.ColorAmber))

	return Model{
		ctx:        ctx,
		ctrl:       ctrl,
		autoSubmit: autoSubmit,
		snap:       ctrl.Snapshot(),
		spinner:    s,
		bar: progress.New(
			progress.WithGradient(present.ColorGreen, present.ColorPurple),
			progress.WithoutPercentage(),
		),
		width: 80,
	}
}

func (m Model) Init() tea.Cmd {
	if m.autoSubmit {
		return m.submit
	}
	return nil
}

func (m Model) submit() tea.Msg {
	if !m.ctrl.Submit(m.ctx) {
		m.ctrl.Retry(m.ctx)
	}
	return changeMsg(m.ctrl.Snapshot())
}

// sliderRect is the slider's horizontal extent in terminal cells
func (m Model) sliderRect() compare.Rect {
	return compare.Rect{Left: float64(len(sliderLabel)), Width: float64(m.barWidth())}
}

func (m Model) barWidth() int {
	w := m.width - 2*len(sliderLabel)
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case changeMsg:
		prev := m.snap.Phase
		m.snap = session.Snapshot(msg)
		m.lastErr = nil
		if m.snap.Phase == session.Submitting && prev != session.Submitting {
			return m, m.spinner.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if m.snap.Phase != session.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "enter", "r":
		if m.snap.Phase == session.Staged || m.snap.Phase == session.Failed {
			return m, m.submit
		}
	case "left", "h":
		m.lastErr = m.ctrl.NudgeSlider(-nudgeStep)
	case "right", "l":
		m.lastErr = m.ctrl.NudgeSlider(nudgeStep)
	case "tab":
		m.lastErr = m.ctrl.SetTab(nextTab(m.snap.View.Tab))
	case "1", "2", "3", "4":
		m.lastErr = m.ctrl.SetTab(compare.Tabs[int(msg.String()[0]-'1')])
	}
	m.snap = m.ctrl.Snapshot()
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.snap.Phase != session.Succeeded {
		return m, nil
	}

	var ev compare.PointerEvent
	ev.X = float64(msg.X)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.Y != sliderRow {
			return m, nil
		}
		m.dragging = true
		ev.Kind, ev.PrimaryDown = compare.PointerPress, true
	case tea.MouseActionMotion:
		ev.Kind, ev.PrimaryDown = compare.PointerMove, m.dragging && msg.Button == tea.MouseButtonLeft
	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		ev.Kind = compare.PointerRelease
	}

	m.lastErr = m.ctrl.HandlePointer(ev, m.sliderRect())
	m.snap = m.ctrl.Snapshot()
	return m, nil
}

func nextTab(t compare.Tab) compare.Tab {
	for i, tab := range compare.Tabs {
		if tab == t {
			return compare.Tabs[(i+1)%len(compare.Tabs)]
		}
	}
	return compare.DefaultTab
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("LandWatch"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(m.snap.Phase.String()))
	b.WriteString("\n\n")

	switch m.snap.Phase {
	case session.Succeeded:
		m.viewResult(&b)
	case session.Submitting:
		b.WriteString(m.viewSlots())
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Analyzing...\n")
	case session.Failed:
		b.WriteString(m.viewSlots())
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.snap.Error))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("enter: retry · q: quit"))
		b.WriteString("\n")
	default:
		b.WriteString(m.viewSlots())
		b.WriteString("\n")
		if m.snap.Ready() {
			b.WriteString(dimStyle.Render("enter: analyze · q: quit"))
		} else {
			b.WriteString(dimStyle.Render("both images are required"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewSlots() string {
	var b strings.Builder
	for _, slot := range m.snap.Slots {
		label := "Reference"
		if slot.Role == models.RoleCurrent {
			label = "Current  "
		}
		if slot.Empty() {
			fmt.Fprintf(&b, "%s  %s\n", label, dimStyle.Render("(empty)"))
			continue
		}
		dims := ""
		if slot.Width > 0 {
			dims = fmt.Sprintf(" %dx%d", slot.Width, slot.Height)
		}
		fmt.Fprintf(&b, "%s  %s %s\n", label, filenameStyle.Render(slot.Filename),
			dimStyle.Render(fmt.Sprintf("(%.1f KB%s)", slot.SizeKB, dims)))
	}
	return b.String()
}

// viewResult keeps the tab bar on row 2 and the slider on sliderRow
func (m Model) viewResult(b *strings.Builder) {
	var tabs []string
	for i, t := range compare.Tabs {
		style := tabStyle
		if t == m.snap.View.Tab {
			style = activeTab
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", i+1, t.Label())))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	m.bar.Width = m.barWidth()
	b.WriteString(sliderLabel)
	b.WriteString(m.bar.ViewAs(m.snap.View.Position / 100))
	fmt.Fprintf(b, " %s\n", present.FormatPercent(m.snap.View.Position))

	background, clipped := compare.SliderLayers()
	reveal := fmt.Sprintf("%s | %s", clipped, background)
	if m.snap.Geometry.ReferenceHidden {
		reveal = string(background)
	}
	var shown []string
	for _, a := range compare.Artifacts(m.snap.View.Tab) {
		shown = append(shown, string(a))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s%s · showing %s", strings.Repeat(" ", len(sliderLabel)), reveal, strings.Join(shown, ", "))))
	b.WriteString("\n\n")

	if m.snap.Result != nil {
		if err := present.RenderText(b, m.snap.Result); err != nil {
			b.WriteString(errorStyle.Render(err.Error()))
		}
	}
	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("←/→: slider · tab/1-4: view · drag the slider with the mouse · q: quit"))
	b.WriteString("\n")
}

// Run drives ctrl in a full-screen terminal program until the user quits.
func Run(ctx context.Context, ctrl *session.Controller, autoSubmit bool) (session.Snapshot, error) {
	p := tea.NewProgram(New(ctx, ctrl, autoSubmit),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	// Only phase transitions are forwarded. They come from Submit (run in a
	// command goroutine) and the request goroutine; comparison events are
	// issued by the model itself inside Update, where Send would block.
	var mu sync.Mutex
	last := ctrl.Phase()
	ctrl.OnChange(func(s session.Snapshot) {
		mu.Lock()
		changed := s.Phase != last
		last = s.Phase
		mu.Unlock()
		if changed {
			p.Send(changeMsg(s))
		}
	})

	if _, err := p.Run(); err != nil {
		return ctrl.Snapshot(), err
	}
	return ctrl.Snapshot(), nil
}
