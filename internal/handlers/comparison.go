package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/csidc/landwatch/internal/compare"
	"github.com/csidc/landwatch/internal/session"
	"github.com/go-chi/chi/v5"
)

var pointerKinds = map[string]compare.PointerKind{
	"move":    compare.PointerMove,
	"press":   compare.PointerPress,
	"release": compare.PointerRelease,
	"click":   compare.PointerClick,
}

type tabRequest struct {
	Tab string `json:"tab"`
}

// sliderRequest either sets the position from a pointer X (when Event is
// empty it behaves like a click) or nudges it by Delta percent.
type sliderRequest struct {
	Event       string       `json:"event,omitempty"`
	X           float64      `json:"x"`
	PrimaryDown bool         `json:"primary_down,omitempty"`
	Rect        compare.Rect `json:"rect"`
	Delta       *float64     `json:"delta,omitempty"`
}

func (h *Handler) HandleSetTab(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var req tabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	tab, err := compare.ParseTab(req.Tab)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if err := ctrl.SetTab(tab); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeView(w, r, ctrl)
}

func (h *Handler) HandleSlider(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var req sliderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch {
	case req.Delta != nil:
		err = ctrl.NudgeSlider(*req.Delta)
	case req.Event == "":
		err = ctrl.SetSliderPosition(req.X, req.Rect)
	default:
		kind, known := pointerKinds[req.Event]
		if !known {
			h.writeError(w, "Unknown pointer event "+req.Event, http.StatusBadRequest)
			return
		}
		err = ctrl.HandlePointer(compare.PointerEvent{Kind: kind, X: req.X, PrimaryDown: req.PrimaryDown}, req.Rect)
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeView(w, r, ctrl)
}

type viewResponse struct {
	SessionID string           `json:"session_id"`
	View      compare.State    `json:"view"`
	Geometry  compare.Geometry `json:"geometry"`
	Label     string           `json:"label"`
	Artifacts []string         `json:"artifacts"`
}

func (h *Handler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if ctrl.Phase() != session.Succeeded {
		h.writeErr(w, session.ErrNoResult)
		return
	}
	h.writeView(w, r, ctrl)
}

func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	snap := ctrl.Snapshot()
	var artifacts []string
	for _, a := range compare.Artifacts(snap.View.Tab) {
		artifacts = append(artifacts, string(a))
	}
	h.writeJSON(w, viewResponse{
		SessionID: chi.URLParam(r, "sessionID"),
		View:      snap.View,
		Geometry:  snap.Geometry,
		Label:     snap.View.Tab.Label(),
		Artifacts: artifacts,
	})
}
