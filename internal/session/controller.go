// Package session drives one analysis workflow: staging two images,
// submitting them, and exposing the result to the comparison view.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/csidc/landwatch/internal/analysis"
	"github.com/csidc/landwatch/internal/compare"
	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/staging"
)

var (
	// ErrBusy is returned for events that are not accepted while a request
	// is in flight.
	ErrBusy = errors.New("analysis in progress")
	// ErrNoResult is returned for comparison events outside Succeeded.
	ErrNoResult = errors.New("no analysis result")
	// ErrClosed is returned for any event after Close.
	ErrClosed = errors.New("session closed")
)

// Analyzer submits an image pair for analysis
type Analyzer interface {
	Analyze(ctx context.Context, reference, current staging.File) (*models.AnalysisResult, error)
}

// Snapshot is a consistent copy of the session state taken under the lock.
type Snapshot struct {
	Phase    Phase                  `json:"phase"`
	Slots    []staging.Slot         `json:"slots"`
	Result   *models.AnalysisResult `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
	View     compare.State          `json:"view"`
	Geometry compare.Geometry       `json:"geometry"`
}

// Ready reports whether both slots are populated
func (s Snapshot) Ready() bool {
	for _, slot := range s.Slots {
		if slot.Empty() {
			return false
		}
	}
	return len(s.Slots) == len(models.Roles)
}

// Controller is the analysis session state machine. All methods are safe for
// concurrent use.
type Controller struct {
	analyzer Analyzer

	mu        sync.Mutex
	stager    *staging.Stager
	view      *compare.View
	phase     Phase
	result    *models.AnalysisResult
	errMsg    string
	inflight  chan struct{}
	closed    bool
	observers []func(Snapshot)
}

// New creates an idle session
func New(analyzer Analyzer, previews staging.PreviewStore) *Controller {
	return &Controller{
		analyzer: analyzer,
		stager:   staging.New(previews),
		view:     compare.New(),
		phase:    Idle,
	}
}

// OnChange registers fn to be called after every state transition. Observers
// run on the goroutine that caused the transition, outside the lock.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Phase returns the current phase
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:    c.phase,
		Result:   c.result,
		Error:    c.errMsg,
		View:     c.view.State(),
		Geometry: c.view.Geometry(),
	}
	for _, role := range models.Roles {
		slot, _ := c.stager.Slot(role)
		snap.Slots = append(snap.Slots, slot)
	}
	return snap
}

// commit snapshots under the lock and returns a function that notifies
// observers; callers invoke it after unlocking.
func (c *Controller) commitLocked() func() {
	if len(c.observers) == 0 {
		return func() {}
	}
	snap := c.snapshotLocked()
	observers := append(([]func(Snapshot))(nil), c.observers...)
	return func() {
		for _, fn := range observers {
			fn(snap)
		}
	}
}

// Stage assigns file to the slot for role. A previous result or error is
// discarded and the comparison view returns to its defaults.
func (c *Controller) Stage(role models.Role, file staging.File) error {
	c.mu.Lock()
	if err := c.acceptLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.stager.Stage(role, file); err != nil {
		c.mu.Unlock()
		return err
	}

	c.result = nil
	c.errMsg = ""
	c.view.Reset()
	if c.stager.IsReady() {
		c.phase = Staged
	} else {
		c.phase = Idle
	}
	slog.Debug("Session staged file", "role", role, "file", file.Name, "phase", c.phase)

	notify := c.commitLocked()
	c.mu.Unlock()
	notify()
	return nil
}

func (c *Controller) acceptLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.phase == Submitting {
		return ErrBusy
	}
	return nil
}

// Submit starts the analysis request when the session is Staged and reports
// whether it did. In any other phase it does nothing. ctx bounds the request
// itself, so hosts should pass a context that outlives the triggering event.
func (c *Controller) Submit(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed || c.phase != Staged {
		phase := c.phase
		c.mu.Unlock()
		slog.Debug("Submit ignored", "phase", phase)
		return false
	}

	reference, _ := c.stager.File(models.RoleReference)
	current, _ := c.stager.File(models.RoleCurrent)

	c.phase = Submitting
	c.result = nil
	c.errMsg = ""
	done := make(chan struct{})
	c.inflight = done

	notify := c.commitLocked()
	c.mu.Unlock()
	notify()

	go c.run(ctx, reference, current, done)
	return true
}

// Retry returns a Failed session to Staged with the files still in its slots
// and submits again. It reports whether a request was started.
func (c *Controller) Retry(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed || c.phase != Failed || !c.stager.IsReady() {
		c.mu.Unlock()
		return false
	}
	c.phase = Staged
	c.errMsg = ""
	notify := c.commitLocked()
	c.mu.Unlock()
	notify()

	return c.Submit(ctx)
}

func (c *Controller) run(ctx context.Context, reference, current staging.File, done chan struct{}) {
	result, err := c.analyzer.Analyze(ctx, reference, current)

	c.mu.Lock()
	defer close(done)

	c.inflight = nil
	if c.closed {
		c.mu.Unlock()
		slog.Debug("Discarding analysis outcome for closed session")
		return
	}

	if err != nil {
		c.phase = Failed
		c.errMsg = analysis.UserMessage(err)
		slog.Error("Analysis failed", "error", err)
	} else {
		c.phase = Succeeded
		c.result = result
		c.view.Reset()
	}

	notify := c.commitLocked()
	c.mu.Unlock()
	notify()
}

// Done returns a channel closed once no request is in flight
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != nil {
		return c.inflight
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Wait blocks until the in-flight request, if any, has completed
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset clears both slots and any outcome, returning to Idle
func (c *Controller) Reset() error {
	c.mu.Lock()
	if err := c.acceptLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	err := c.stager.Reset()
	c.phase = Idle
	c.result = nil
	c.errMsg = ""
	c.view.Reset()

	notify := c.commitLocked()
	c.mu.Unlock()
	notify()
	return err
}

// Close releases the session's previews. A request still in flight is left
// to finish; its outcome is dropped.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.result = nil
	c.observers = nil
	return c.stager.Reset()
}

// OpenPreview returns the preview bytes of a staged file
func (c *Controller) OpenPreview(role models.Role) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	return c.stager.OpenPreview(role)
}

// Artifact returns the decoded bytes of a result artifact
func (c *Controller) Artifact(a models.Artifact) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Succeeded || c.result == nil {
		return nil, ErrNoResult
	}
	data := c.result.Image(a)
	if data == nil {
		return nil, images.ErrPreviewNotFound
	}
	return data, nil
}

// Result returns the installed result, if any
func (c *Controller) Result() (*models.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.phase == Succeeded && c.result != nil
}

// SetTab forwards to the comparison view
func (c *Controller) SetTab(tab compare.Tab) error {
	return c.withView(func(v *compare.View) error {
		return v.SetTab(tab)
	})
}

// SetSliderPosition forwards to the comparison view
func (c *Controller) SetSliderPosition(x float64, rect compare.Rect) error {
	return c.withView(func(v *compare.View) error {
		v.SetSliderPosition(x, rect)
		return nil
	})
}

// HandlePointer forwards to the comparison view
func (c *Controller) HandlePointer(ev compare.PointerEvent, rect compare.Rect) error {
	return c.withView(func(v *compare.View) error {
		v.HandlePointer(ev, rect)
		return nil
	})
}

// NudgeSlider forwards to the comparison view
func (c *Controller) NudgeSlider(delta float64) error {
	return c.withView(func(v *compare.View) error {
		v.Nudge(delta)
		return nil
	})
}

func (c *Controller) withView(fn func(*compare.View) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.phase != Succeeded {
		c.mu.Unlock()
		return ErrNoResult
	}
	before := c.view.State()
	if err := fn(c.view); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.view.State() == before {
		c.mu.Unlock()
		return nil
	}
	notify := c.commitLocked()
	c.mu.Unlock()
	notify()
	return nil
}
