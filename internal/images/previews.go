package images

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Preview is a disposable local handle onto a staged file.
type Preview struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// IsZero reports whether p refers to nothing
func (p Preview) IsZero() bool {
	return p.ID == ""
}

// ErrPreviewNotFound is returned when opening a released or unknown preview.
var ErrPreviewNotFound = eris.New("preview not found")

// DiskPreviews writes previews into a directory, named by content hash.
// Identical content staged twice shares one file; it is removed when the
// last handle is released.
type DiskPreviews struct {
	dir  string
	mu   sync.Mutex
	refs map[string]int
}

// NewDiskPreviews creates the preview directory if needed
func NewDiskPreviews(dir string) (*DiskPreviews, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, eris.Wrapf(err, "failed to create preview directory %s", dir)
	}
	return &DiskPreviews{dir: dir, refs: make(map[string]int)}, nil
}

func (d *DiskPreviews) Create(filename string, data []byte) (Preview, error) {
	name := ContentName(data, filepath.Ext(filename))
	path := filepath.Join(d.dir, name)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.refs[name] == 0 {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return Preview{}, eris.Wrap(err, "failed to write preview")
		}
	}
	d.refs[name]++
	return Preview{ID: name, Path: path}, nil
}

func (d *DiskPreviews) Open(p Preview) ([]byte, error) {
	d.mu.Lock()
	live := d.refs[p.ID] > 0
	d.mu.Unlock()
	if !live {
		return nil, ErrPreviewNotFound
	}
	data, err := os.ReadFile(filepath.Join(d.dir, p.ID))
	if err != nil {
		return nil, eris.Wrap(err, "failed to read preview")
	}
	return data, nil
}

func (d *DiskPreviews) Release(p Preview) error {
	if p.IsZero() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.refs[p.ID]
	switch {
	case n == 0:
		return nil
	case n > 1:
		d.refs[p.ID] = n - 1
		return nil
	}
	delete(d.refs, p.ID)
	if err := os.Remove(filepath.Join(d.dir, p.ID)); err != nil && !os.IsNotExist(err) {
		return eris.Wrap(err, "failed to remove preview")
	}
	return nil
}

// Live returns the number of distinct preview files currently held
func (d *DiskPreviews) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.refs)
}

// MemoryPreviews keeps previews in memory. Used by the HTTP host and tests.
type MemoryPreviews struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{items: make(map[string][]byte)}
}

func (m *MemoryPreviews) Create(filename string, data []byte) (Preview, error) {
	id := uuid.NewString() + filepath.Ext(filename)
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = buf
	return Preview{ID: id}, nil
}

func (m *MemoryPreviews) Open(p Preview) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[p.ID]
	if !ok {
		return nil, ErrPreviewNotFound
	}
	return data, nil
}

func (m *MemoryPreviews) Release(p Preview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, p.ID)
	return nil
}

// Live returns the number of previews currently held
func (m *MemoryPreviews) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
