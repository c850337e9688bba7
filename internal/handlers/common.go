package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/csidc/landwatch/internal/compare"
	"github.com/csidc/landwatch/internal/fetcher"
	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/session"
	"github.com/csidc/landwatch/internal/staging"
	"github.com/csidc/landwatch/internal/storage"
	"github.com/go-chi/chi/v5"
)

// maxUploadSize caps a single staged file
const maxUploadSize = 10 * 1024 * 1024

type Handler struct {
	sessionStore *storage.SessionStore
	analyzer     session.Analyzer
	previews     staging.PreviewStore
	fetcher      *fetcher.HTTPFetcher
}

// New creates the HTTP host. f is used to stage files by URL and may be nil.
func New(analyzer session.Analyzer, previews staging.PreviewStore, f *fetcher.HTTPFetcher) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		analyzer:     analyzer,
		previews:     previews,
		fetcher:      f,
	}
}

// Sessions exposes the session store, e.g. for shutdown
func (h *Handler) Sessions() *storage.SessionStore {
	return h.sessionStore
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSONStatus(w, code, map[string]string{"detail": message})
}

// writeErr maps workflow errors onto status codes
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, staging.ErrUnsupportedMediaType):
		h.writeError(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNoResult):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, session.ErrClosed):
		h.writeError(w, err.Error(), http.StatusGone)
	case errors.Is(err, compare.ErrUnknownTab):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, images.ErrPreviewNotFound):
		h.writeError(w, "Not found", http.StatusNotFound)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	ctrl, exists := h.sessionStore.Get(chi.URLParam(r, "sessionID"))
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return ctrl, true
}
