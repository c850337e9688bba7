package archive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/csidc/landwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func (m *memorySink) Put(_ context.Context, name string, data []byte, contentType string) (string, error) {
	if name == m.failOn {
		return "", errors.New("disk full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.objects[name] = data
	m.types[name] = contentType
	return "mem://" + name, nil
}

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		ResultID: "r1",
		Summary:  models.Summary{RiskLevel: models.RiskLow},
		Images: map[models.Artifact][]byte{
			models.ArtifactOverlay:          []byte("overlay"),
			models.ArtifactAnnotatedCurrent: []byte("current"),
		},
	}
}

func TestSaveResult(t *testing.T) {
	sink := &memorySink{}
	locations, err := SaveResult(context.Background(), sink, sampleResult())
	require.NoError(t, err)

	assert.Equal(t, []string{"mem://r1_overlay.jpg", "mem://r1_annotated_current.jpg", "mem://r1_summary.json"}, locations)
	assert.Equal(t, []byte("overlay"), sink.objects["r1_overlay.jpg"])
	assert.Equal(t, "image/jpeg", sink.types["r1_overlay.jpg"])
	assert.Equal(t, "application/json", sink.types["r1_summary.json"])

	var summary map[string]any
	require.NoError(t, json.Unmarshal(sink.objects["r1_summary.json"], &summary))
	assert.Contains(t, summary, "summary")
}

func TestSaveResultStopsOnError(t *testing.T) {
	sink := &memorySink{failOn: "r1_annotated_current.jpg"}
	locations, err := SaveResult(context.Background(), sink, sampleResult())
	require.Error(t, err)
	assert.Equal(t, []string{"mem://r1_overlay.jpg"}, locations)
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	sink, err := NewDirSink(dir)
	require.NoError(t, err)

	locations, err := SaveResult(context.Background(), sink, sampleResult())
	require.NoError(t, err)
	require.Len(t, locations, 3)

	data, err := os.ReadFile(filepath.Join(dir, "r1_overlay.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "overlay", string(data))
}

func TestDirSinkIgnoresPathsInNames(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir)
	require.NoError(t, err)

	loc, err := sink.Put(context.Background(), "../escape.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.jpg"), loc)
}

func TestMinioKey(t *testing.T) {
	assert.Equal(t, "analyses/r1_overlay.jpg", (&MinioSink{prefix: "analyses"}).Key("r1_overlay.jpg"))
	assert.Equal(t, "r1_overlay.jpg", (&MinioSink{}).Key("r1_overlay.jpg"))
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "abc_heatmap.jpg", ArtifactName("abc", models.ArtifactHeatmap))
	assert.Equal(t, "abc_summary.json", SummaryName("abc"))
}
