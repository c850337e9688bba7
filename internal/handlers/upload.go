package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/staging"
	"github.com/go-chi/chi/v5"
)

// HandleStage places a file in the slot named by the {role} path parameter.
// The file comes either as multipart field "file" or, for JSON bodies, from
// the URL in "image_url".
func (h *Handler) HandleStage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	role, err := models.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var file staging.File
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		file, ok = h.readURLUpload(w, r)
	} else {
		file, ok = h.readFileUpload(w, r)
	}
	if !ok {
		return
	}

	if err := ctrl.Stage(role, file); err != nil {
		h.writeErr(w, err)
		return
	}

	h.writeJSON(w, sessionResponse{SessionID: chi.URLParam(r, "sessionID"), Snapshot: ctrl.Snapshot()})
}

func (h *Handler) readFileUpload(w http.ResponseWriter, r *http.Request) (staging.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return staging.File{}, false
	}
	defer file.Close()

	// Limit file size to 10MB
	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
		return staging.File{}, false
	}
	if len(fileData) >= maxUploadSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusRequestEntityTooLarge)
		return staging.File{}, false
	}

	kind := header.Header.Get("Content-Type")
	if kind == "" || kind == images.KindUnknown {
		kind = images.DeclaredKind(header.Filename, fileData)
	}

	return staging.File{Name: header.Filename, ContentType: images.NormalizeKind(kind), Data: fileData}, true
}

func (h *Handler) readURLUpload(w http.ResponseWriter, r *http.Request) (staging.File, bool) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return staging.File{}, false
	}
	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return staging.File{}, false
	}
	if h.fetcher == nil {
		h.writeError(w, "Staging by URL is not enabled", http.StatusNotImplemented)
		return staging.File{}, false
	}

	u, err := url.Parse(request.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		h.writeError(w, "image_url must be an http(s) URL", http.StatusBadRequest)
		return staging.File{}, false
	}

	body, err := h.fetcher.Download(r.Context(), request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to download image: "+err.Error(), http.StatusBadGateway)
		return staging.File{}, false
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxUploadSize))
	if err != nil {
		h.writeError(w, "Failed to read image: "+err.Error(), http.StatusBadGateway)
		return staging.File{}, false
	}
	if len(data) >= maxUploadSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusRequestEntityTooLarge)
		return staging.File{}, false
	}

	filename := path.Base(u.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "image.jpg"
	}
	return staging.File{Name: filename, ContentType: images.DeclaredKind(filename, data), Data: data}, true
}
