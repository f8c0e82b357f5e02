package services

import (
	"fmt"

	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/roadmap"
)

// ImportFile reads a decomposition saved as JSON and normalizes it. The
// returned issues describe what normalization changed.
func ImportFile(path string) (*models.DecompositionResponse, []string, error) {
	var doc models.DecompositionResponse
	if err := helpers.LoadJSON(path, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	issues := roadmap.Normalize(&doc)
	return &doc, issues, nil
}

// ExportFile writes doc as indented JSON
func ExportFile(path string, doc *models.DecompositionResponse) error {
	if err := helpers.SaveJSON(doc, path); err != nil {
		return fmt.Errorf("failed to export to %s: %w", path, err)
	}
	return nil
}
