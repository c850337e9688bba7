package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/csidc/landwatch/internal/present"
	"github.com/csidc/landwatch/internal/session"
	"github.com/go-chi/chi/v5"
)

type sessionResponse struct {
	SessionID string           `json:"session_id"`
	Snapshot  session.Snapshot `json:"session"`
}

type sessionSummary struct {
	SessionID string        `json:"session_id"`
	Phase     session.Phase `json:"phase"`
	Ready     bool          `json:"ready"`
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctrl := session.New(h.analyzer, h.previews)
	sessionID := h.sessionStore.Add(ctrl)
	slog.Info("Session created", "session_id", sessionID)

	h.writeJSONStatus(w, http.StatusCreated, sessionResponse{SessionID: sessionID, Snapshot: ctrl.Snapshot()})
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := h.sessionStore.IDs()
	list := make([]sessionSummary, 0, len(ids))
	for _, id := range ids {
		ctrl, ok := h.sessionStore.Get(id)
		if !ok {
			continue
		}
		snap := ctrl.Snapshot()
		list = append(list, sessionSummary{SessionID: id, Phase: snap.Phase, Ready: snap.Ready()})
	}
	h.writeJSON(w, list)
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, sessionResponse{SessionID: chi.URLParam(r, "sessionID"), Snapshot: ctrl.Snapshot()})
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.sessionStore.Delete(sessionID) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	slog.Info("Session deleted", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit starts the analysis. With ?wait=true it answers once the
// request has completed.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	// the request outlives this handler
	if !ctrl.Submit(context.WithoutCancel(r.Context())) {
		h.writeError(w, "Session is not ready to submit (phase "+ctrl.Phase().String()+")", http.StatusConflict)
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()
		if err := ctrl.Wait(ctx); err != nil {
			h.writeError(w, "Timed out waiting for analysis", http.StatusGatewayTimeout)
			return
		}
		h.writeJSON(w, sessionResponse{SessionID: chi.URLParam(r, "sessionID"), Snapshot: ctrl.Snapshot()})
		return
	}

	h.writeJSONStatus(w, http.StatusAccepted, sessionResponse{SessionID: chi.URLParam(r, "sessionID"), Snapshot: ctrl.Snapshot()})
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if err := ctrl.Reset(); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, sessionResponse{SessionID: chi.URLParam(r, "sessionID"), Snapshot: ctrl.Snapshot()})
}

// HandleSummary returns the presenter's projection of the result
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	result, ok := ctrl.Result()
	if !ok {
		h.writeErr(w, session.ErrNoResult)
		return
	}
	h.writeJSON(w, present.NewReport(result))
}
