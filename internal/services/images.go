package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/models"
)

// ImageFetcher is the remote image API
type ImageFetcher interface {
	Fetch(ctx context.Context, documentID, filename string) (*models.Image, error)
	URL(documentID, filename string) string
}

// ImageRef splits a cited image path into the document id and filename the
// image is served under. The service cites images by their location in its
// cache, <cache>/<document id>/<filename>.
func ImageRef(path string) (documentID, filename string, ok bool) {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) < 2 {
		return "", "", false
	}
	documentID, filename = parts[len(parts)-2], parts[len(parts)-1]
	if documentID == ".." || filename == ".." {
		return "", "", false
	}
	return documentID, filename, true
}

// ImageService resolves and downloads images cited in chat answers
type ImageService struct {
	client ImageFetcher
	logger *slog.Logger
}

// NewImageService creates an image service
func NewImageService(client ImageFetcher, logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ImageService{client: client, logger: logger}
}

// URL returns the address the service serves a cited image at. Paths that
// are already URLs or cannot be resolved are returned unchanged.
func (s *ImageService) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	documentID, filename, ok := ImageRef(path)
	if !ok {
		return path
	}
	return s.client.URL(documentID, filename)
}

// SaveAll downloads the cited images into dir and returns the files written.
// A failed image does not stop the others; all failures are returned joined.
func (s *ImageService) SaveAll(ctx context.Context, paths []string, dir string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if err := helpers.EnsureDir(dir); err != nil {
		return nil, err
	}

	var saved []string
	var errs []error
	for _, path := range paths {
		documentID, filename, ok := ImageRef(path)
		if !ok {
			errs = append(errs, fmt.Errorf("cannot resolve image path %q", path))
			continue
		}
		img, err := s.client.Fetch(ctx, documentID, filename)
		if err != nil {
			s.logger.Warn("image download failed", "document_id", documentID, "filename", filename, "error", err)
			errs = append(errs, fmt.Errorf("failed to download %s: %w", filename, err))
			continue
		}

		target := filepath.Join(dir, filepath.Base(img.Filename))
		if err := os.WriteFile(target, img.Data, 0644); err != nil {
			errs = append(errs, fmt.Errorf("failed to write %s: %w", target, err))
			continue
		}
		s.logger.Debug("image saved", "path", target, "bytes", len(img.Data))
		saved = append(saved, target)
	}
	return saved, errors.Join(errs...)
}
