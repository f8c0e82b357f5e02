package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/fakeapi"
	"coursework-roadmap/internal/repositories"
	"coursework-roadmap/internal/session"
)

func TestImageRef(t *testing.T) {
	tests := []struct {
		path     string
		doc      string
		filename string
		ok       bool
	}{
		{"/srv/app/image_cache/doc-1/page1_img0.png", "doc-1", "page1_img0.png", true},
		{`C:\server\image_cache\doc-2\page3_img1.jpg`, "doc-2", "page3_img1.jpg", true},
		{"doc-3/fig.png", "doc-3", "fig.png", true},
		{"fig.png", "", "", false},
		{"", "", "", false},
		{"doc/..", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc, filename, ok := ImageRef(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.doc, doc)
			assert.Equal(t, tt.filename, filename)
		})
	}
}

func newImageFixture(t *testing.T) (*fakeapi.Server, string, *ImageService) {
	t.Helper()
	fake, srv := fakeapi.Start(t)
	client := repositories.NewClient(srv.URL, 5*time.Second, session.New(nil))
	return fake, srv.URL, NewImageService(repositories.NewImageRepository(client), nil)
}

func TestImageService_URL(t *testing.T) {
	_, base, svc := newImageFixture(t)

	assert.Equal(t, base+"/api/images/doc-1/page1_img0.png", svc.URL("/cache/doc-1/page1_img0.png"))
	assert.Equal(t, base+"/api/images/doc-1/page%201.png", svc.URL("/cache/doc-1/page 1.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", svc.URL("https://cdn.example.com/a.png"))
	assert.Equal(t, "fig.png", svc.URL("fig.png"))
}

func TestImageService_SaveAll(t *testing.T) {
	fake, _, svc := newImageFixture(t)
	fake.SetImage("doc-1", "page1_img0.png", []byte("png-bytes"))
	fake.SetImage("doc-1", "page2_img0.jpg", []byte("jpg-bytes"))
	dir := filepath.Join(t.TempDir(), "images")

	saved, err := svc.SaveAll(context.Background(), []string{
		"/cache/doc-1/page1_img0.png",
		"/cache/doc-1/missing.png",
		"/cache/doc-1/page2_img0.jpg",
	}, dir)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "missing.png")
	require.Equal(t, []string{
		filepath.Join(dir, "page1_img0.png"),
		filepath.Join(dir, "page2_img0.jpg"),
	}, saved)

	data, err := os.ReadFile(saved[0])
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, 1, fake.Calls(http.MethodGet, "/api/images/doc-1/missing.png"))
}

func TestImageService_SaveAllNothingCited(t *testing.T) {
	_, _, svc := newImageFixture(t)
	dir := filepath.Join(t.TempDir(), "images")

	saved, err := svc.SaveAll(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.NoDirExists(t, dir)
}
