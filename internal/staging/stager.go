// Package staging holds the two candidate images of an analysis session
// before they are submitted.
package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/rotisserie/eris"
)

// ErrUnsupportedMediaType is returned when a file's declared kind is not one
// of the accepted raster formats. The slot is left untouched.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// MediaTypeError carries the rejected kind and matches ErrUnsupportedMediaType
type MediaTypeError struct {
	Filename string
	Kind     string
}

func (e *MediaTypeError) Error() string {
	return fmt.Sprintf("%s: %s is %s (accepted: JPG or PNG)", ErrUnsupportedMediaType, e.Filename, e.Kind)
}

func (e *MediaTypeError) Is(target error) bool {
	return target == ErrUnsupportedMediaType
}

// PreviewStore creates and releases local preview handles
type PreviewStore interface {
	Create(filename string, data []byte) (images.Preview, error)
	Open(p images.Preview) ([]byte, error)
	Release(p images.Preview) error
}

// File is a user-selected file with its declared media kind.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileFromPath reads a file from disk and declares its kind from the extension
func FileFromPath(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, eris.Wrapf(err, "failed to read %s", path)
	}
	name := filepath.Base(path)
	return File{
		Name:        name,
		ContentType: images.DeclaredKind(name, data),
		Data:        data,
	}, nil
}

// Slot is a read-only snapshot of one upload slot
type Slot struct {
	Role        models.Role    `json:"role"`
	Filename    string         `json:"filename,omitempty"`
	ContentType string         `json:"content_type,omitempty"`
	Size        int            `json:"size"`
	SizeKB      float64        `json:"size_kb"`
	Width       int            `json:"width,omitempty"`
	Height      int            `json:"height,omitempty"`
	Preview     images.Preview `json:"preview"`
}

// Empty reports whether no file occupies the slot
func (s Slot) Empty() bool {
	return s.Filename == "" && s.Size == 0
}

type slot struct {
	file    *File
	preview images.Preview
	width   int
	height  int
}

// Stager owns the reference and current slots. It is not safe for concurrent
// use; the session controller serializes access.
type Stager struct {
	previews PreviewStore
	slots    map[models.Role]*slot
}

// New creates a stager with both slots empty
func New(previews PreviewStore) *Stager {
	return &Stager{
		previews: previews,
		slots: map[models.Role]*slot{
			models.RoleReference: {},
			models.RoleCurrent:   {},
		},
	}
}

func (s *Stager) slot(role models.Role) (*slot, error) {
	sl, ok := s.slots[role]
	if !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return sl, nil
}

// Stage places file in the slot for role, replacing and releasing whatever
// was there before.
func (s *Stager) Stage(role models.Role, file File) error {
	sl, err := s.slot(role)
	if err != nil {
		return err
	}
	if !images.Accepted(file.ContentType) {
		return &MediaTypeError{Filename: file.Name, Kind: file.ContentType}
	}

	preview, err := s.previews.Create(file.Name, file.Data)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s preview", role)
	}

	width, height, err := images.Dimensions(file.Data)
	if err != nil {
		slog.Warn("Failed to get image dimensions", "role", role, "file", file.Name, "error", err)
	}

	old := sl.preview
	owned := file
	sl.file = &owned
	sl.preview = preview
	sl.width, sl.height = width, height

	if err := s.previews.Release(old); err != nil {
		slog.Warn("Failed to release superseded preview", "role", role, "error", err)
	}

	slog.Debug("File staged", "role", role, "file", file.Name, "kind", file.ContentType, "size", len(file.Data))
	return nil
}

// IsReady reports whether both slots hold a file
func (s *Stager) IsReady() bool {
	for _, role := range models.Roles {
		if s.slots[role].file == nil {
			return false
		}
	}
	return true
}

// File returns the staged file for role, if any
func (s *Stager) File(role models.Role) (File, bool) {
	sl, ok := s.slots[role]
	if !ok || sl.file == nil {
		return File{}, false
	}
	return *sl.file, true
}

// Slot returns a snapshot of the slot for role
func (s *Stager) Slot(role models.Role) (Slot, error) {
	sl, err := s.slot(role)
	if err != nil {
		return Slot{}, err
	}
	out := Slot{Role: role, Preview: sl.preview, Width: sl.width, Height: sl.height}
	if sl.file != nil {
		out.Filename = sl.file.Name
		out.ContentType = sl.file.ContentType
		out.Size = len(sl.file.Data)
		out.SizeKB = images.SizeKB(out.Size)
	}
	return out, nil
}

// OpenPreview returns the preview bytes of the slot for role
func (s *Stager) OpenPreview(role models.Role) ([]byte, error) {
	sl, err := s.slot(role)
	if err != nil {
		return nil, err
	}
	if sl.preview.IsZero() {
		return nil, images.ErrPreviewNotFound
	}
	return s.previews.Open(sl.preview)
}

// Reset empties both slots and releases their previews
func (s *Stager) Reset() error {
	var errs []error
	for _, role := range models.Roles {
		sl := s.slots[role]
		if err := s.previews.Release(sl.preview); err != nil {
			errs = append(errs, eris.Wrapf(err, "failed to release %s preview", role))
		}
		*sl = slot{}
	}
	return errors.Join(errs...)
}
