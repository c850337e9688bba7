package storage

import (
	"context"
	"testing"

	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/session"
	"github.com/csidc/landwatch/internal/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopAnalyzer struct{}

func (nopAnalyzer) Analyze(context.Context, staging.File, staging.File) (*models.AnalysisResult, error) {
	return &models.AnalysisResult{ResultID: "r"}, nil
}

func TestSessionStore(t *testing.T) {
	store := New()
	previews := images.NewMemoryPreviews()

	ctrl := session.New(nopAnalyzer{}, previews)
	id := store.Add(ctrl)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, store.Len())

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, ctrl, got)

	_, ok = store.Get("missing")
	assert.False(t, ok)

	require.NoError(t, ctrl.Stage(models.RoleReference, staging.File{Name: "a.png", ContentType: "image/png", Data: []byte("a")}))
	assert.Equal(t, 1, previews.Live())

	assert.True(t, store.Delete(id))
	assert.False(t, store.Delete(id))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, previews.Live())
	assert.ErrorIs(t, ctrl.Stage(models.RoleCurrent, staging.File{Name: "b.png", ContentType: "image/png"}), session.ErrClosed)
}

func TestSessionStoreIDsAndCloseAll(t *testing.T) {
	store := New()
	store.Set("b", session.New(nopAnalyzer{}, images.NewMemoryPreviews()))
	store.Set("a", session.New(nopAnalyzer{}, images.NewMemoryPreviews()))

	assert.Equal(t, []string{"a", "b"}, store.IDs())

	store.CloseAll()
	assert.Empty(t, store.IDs())
}
