package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/roadmap"
)

// MaxUploadSize is the largest document the service accepts
const MaxUploadSize = 20 * 1024 * 1024

// Decomposer uploads a document to the decomposition service
type Decomposer interface {
	Decompose(ctx context.Context, filename string, content io.Reader, courseURL string) (*models.DecompositionResponse, error)
}

// DecomposeService turns specification PDFs into roadmaps
type DecomposeService struct {
	client Decomposer
	retry  RetryPolicy
	logger *slog.Logger
}

// NewDecomposeService creates a decompose service
func NewDecomposeService(client Decomposer, retry RetryPolicy, logger *slog.Logger) *DecomposeService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DecomposeService{client: client, retry: retry, logger: logger}
}

// DecomposeFile uploads the PDF at path and returns the normalized roadmap
func (s *DecomposeService) DecomposeFile(ctx context.Context, path, courseURL string) (*models.DecompositionResponse, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, apperrors.Validation("only PDF files are accepted, got %s", filepath.Base(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if info.Size() > MaxUploadSize {
		return nil, apperrors.Validation("file too large: %d bytes, maximum is %dMB", info.Size(), MaxUploadSize/(1024*1024))
	}

	helpers.PrintInfo("Uploading %s (%d bytes) for decomposition...", filepath.Base(path), info.Size())

	doc, err := withRetry(ctx, s.retry, s.logger, "decompose", func(ctx context.Context) (*models.DecompositionResponse, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		return s.client.Decompose(ctx, filepath.Base(path), f, courseURL)
	})
	if err != nil {
		return nil, fmt.Errorf("decomposition failed: %w", err)
	}

	for _, issue := range roadmap.Normalize(doc) {
		s.logger.Warn("roadmap normalized", "issue", issue)
	}
	s.logger.Info("document decomposed", "tasks", len(doc.Tasks), "milestones", len(doc.Milestones), "chat", doc.ChatEnabled())
	return doc, nil
}
