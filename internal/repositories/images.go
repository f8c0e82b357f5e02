package repositories

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
)

// MaxImageSize bounds a downloaded image
const MaxImageSize = 20 * 1024 * 1024

// ImageRepository downloads images extracted from decomposed documents
type ImageRepository struct {
	client *Client
}

// NewImageRepository creates a new image repository
func NewImageRepository(client *Client) *ImageRepository {
	return &ImageRepository{client: client}
}

func imagePath(documentID, filename string) string {
	return "/api/images/" + url.PathEscape(documentID) + "/" + url.PathEscape(filename)
}

// URL returns the absolute address of an image
func (r *ImageRepository) URL(documentID, filename string) string {
	return r.client.baseURL + imagePath(documentID, filename)
}

// Fetch downloads one image
func (r *ImageRepository) Fetch(ctx context.Context, documentID, filename string) (*models.Image, error) {
	if documentID == "" || filename == "" {
		return nil, apperrors.Validation("image reference needs a document id and a filename")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(documentID, filename), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.send(req, authOptional)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return nil, apperrors.Transient(resp.StatusCode, "failed to read image", err)
	}
	if len(data) > MaxImageSize {
		return nil, apperrors.Validation("image %s exceeds %dMB", filename, MaxImageSize/(1024*1024))
	}

	return &models.Image{
		DocumentID:  documentID,
		Filename:    filename,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
