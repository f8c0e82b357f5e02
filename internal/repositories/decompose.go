package repositories

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"coursework-roadmap/internal/models"
)

// DecomposeRepository uploads specification documents for decomposition
type DecomposeRepository struct {
	client *Client
}

// NewDecomposeRepository creates a new decompose repository
func NewDecomposeRepository(client *Client) *DecomposeRepository {
	return &DecomposeRepository{client: client}
}

// Decompose uploads a PDF and returns the producer's decomposition.
// courseURL is optional context and omitted when empty.
func (r *DecomposeRepository) Decompose(ctx context.Context, filename string, content io.Reader, courseURL string) (*models.DecompositionResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if courseURL != "" {
		if err := writer.WriteField("course_url", courseURL); err != nil {
			return nil, fmt.Errorf("failed to write course url: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.client.baseURL+"/api/decompose", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.send(req, authOptional)
	if err != nil {
		return nil, err
	}

	var doc models.DecompositionResponse
	if err := parseResponse(resp, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
