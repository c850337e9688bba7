package handlers

import (
	"net/http"
	"strconv"

	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/go-chi/chi/v5"
)

// HandlePreview serves the preview of a staged file
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	role, err := models.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := ctrl.OpenPreview(role)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	kind := images.KindUnknown
	for _, slot := range ctrl.Snapshot().Slots {
		if slot.Role == role && slot.ContentType != "" {
			kind = slot.ContentType
		}
	}
	h.writeImage(w, kind, data)
}

// HandleArtifact serves one decoded artifact of the installed result
func (h *Handler) HandleArtifact(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	data, err := ctrl.Artifact(models.Artifact(chi.URLParam(r, "artifact")))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeImage(w, images.KindJPEG, data)
}

func (h *Handler) writeImage(w http.ResponseWriter, kind string, data []byte) {
	w.Header().Set("Content-Type", kind)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
