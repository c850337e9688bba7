package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestAccepted(t *testing.T) {
	tests := []struct {
		kind string
		want bool
	}{
		{"image/jpeg", true},
		{"image/jpg", true},
		{"image/png", true},
		{"IMAGE/PNG", true},
		{"image/png; charset=binary", true},
		{"image/gif", false},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepted(tt.kind))
		})
	}
}

func TestDeclaredKind(t *testing.T) {
	assert.Equal(t, KindJPEG, DeclaredKind("site.JPG", nil))
	assert.Equal(t, KindJPEG, DeclaredKind("site.jpeg", nil))
	assert.Equal(t, KindPNG, DeclaredKind("site.png", nil))
	assert.Equal(t, "image/gif", DeclaredKind("site.gif", nil))
	assert.Equal(t, KindUnknown, DeclaredKind("blob", nil))
	assert.Equal(t, KindPNG, DeclaredKind("blob", pngBytes(t, 2, 2)))
}

func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(pngBytes(t, 64, 48))
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	_, _, err = Dimensions([]byte("not an image"))
	assert.Error(t, err)
}

func TestDecodeArtifact(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("jpeg"))

	data, err := DecodeArtifact(encoded)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	data, err = DecodeArtifact("data:image/jpeg;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	_, err = DecodeArtifact("%%%")
	assert.Error(t, err)
}

func TestSizeKB(t *testing.T) {
	assert.Equal(t, 0.0, SizeKB(0))
	assert.Equal(t, 1.0, SizeKB(1024))
	assert.Equal(t, 1.5, SizeKB(1536))
	assert.Equal(t, 2048.0, SizeKB(2*1024*1024))
}

func TestDiskPreviewsShareContent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskPreviews(dir)
	require.NoError(t, err)

	a, err := store.Create("a.png", []byte("same"))
	require.NoError(t, err)
	b, err := store.Create("b.png", []byte("same"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 1, store.Live())

	require.NoError(t, store.Release(a))
	data, err := store.Open(b)
	require.NoError(t, err)
	assert.Equal(t, "same", string(data))

	require.NoError(t, store.Release(b))
	assert.Equal(t, 0, store.Live())
	_, err = os.Stat(filepath.Join(dir, b.ID))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Open(b)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
	assert.NoError(t, store.Release(Preview{}))
}

func TestMemoryPreviews(t *testing.T) {
	store := NewMemoryPreviews()
	src := []byte("bytes")
	p, err := store.Create("x.jpg", src)
	require.NoError(t, err)
	src[0] = 'X'

	data, err := store.Open(p)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))

	require.NoError(t, store.Release(p))
	_, err = store.Open(p)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
	assert.Equal(t, 0, store.Live())
}
