package helpers

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursework-roadmap/internal/models"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevNoColor := Out, color.NoColor
	Out, color.NoColor = &buf, true
	t.Cleanup(func() { Out, color.NoColor = prevOut, prevNoColor })
	return &buf
}

func TestPrinters(t *testing.T) {
	buf := captureOutput(t)

	PrintSuccess("saved %s", "cw-1")
	PrintWarning("retrying")
	PrintProgress(2, 5, "uploading")

	out := buf.String()
	assert.Contains(t, out, "✅ saved cw-1\n")
	assert.Contains(t, out, "⚠️  retrying\n")
	assert.Contains(t, out, "📊 [2/5] uploading\n")
}

func TestStatusBadge(t *testing.T) {
	captureOutput(t)
	assert.Equal(t, "[done]", StatusBadge(models.StatusDone))
	assert.Equal(t, "[in progress]", StatusBadge(models.StatusInProgress))
	assert.Equal(t, "[todo]", StatusBadge("weird"))
}

func TestMustDoMarker(t *testing.T) {
	captureOutput(t)
	assert.Contains(t, MustDoMarker(models.Task{Priority: models.IntPtr(0)}), "must do")
	assert.Empty(t, MustDoMarker(models.Task{Priority: models.IntPtr(2)}))
	assert.Empty(t, MustDoMarker(models.Task{}))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[░░░░]   0%", ProgressBar(0, 4))
	assert.Equal(t, "[██░░]  50%", ProgressBar(0.5, 4))
	assert.Equal(t, "[████] 100%", ProgressBar(1.7, 4))
}

func TestJSONFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "roadmap.json")
	doc := models.DecompositionResponse{CourseName: models.StringPtr("Networks"), Tasks: []models.Task{{ID: "t1"}}}

	require.NoError(t, SaveJSON(doc, path))
	assert.True(t, FileExists(path))

	var loaded models.DecompositionResponse
	require.NoError(t, LoadJSON(path, &loaded))
	assert.Equal(t, "Networks", loaded.Name())

	assert.Error(t, LoadJSON(filepath.Join(t.TempDir(), "missing.json"), &loaded))
}

func TestGenerateOutputFilename(t *testing.T) {
	name := GenerateOutputFilename("Distributed Systems (CW2)", "json")
	assert.True(t, strings.HasPrefix(name, "distributed-systems-cw2-"), name)
	assert.True(t, strings.HasSuffix(name, ".json"))

	assert.True(t, strings.HasPrefix(GenerateOutputFilename("!!!", "json"), "roadmap-"))
}
