package repositories

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
)

// CourseworkRepository handles saved roadmaps on the persistence service
type CourseworkRepository struct {
	client *Client
}

// NewCourseworkRepository creates a new coursework repository
func NewCourseworkRepository(client *Client) *CourseworkRepository {
	return &CourseworkRepository{client: client}
}

func courseworkPath(id string) string {
	return "/api/courseworks/" + url.PathEscape(id)
}

// List returns the signed-in user's roadmaps, most recently updated first
func (r *CourseworkRepository) List(ctx context.Context) ([]models.CourseworkSummary, error) {
	var summaries []models.CourseworkSummary
	if err := r.client.doJSON(ctx, http.MethodGet, "/api/courseworks", authRequired, nil, &summaries); err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.CourseworkSummary{}
	}
	return summaries, nil
}

// Get loads one roadmap with its full decomposition
func (r *CourseworkRepository) Get(ctx context.Context, id string) (*models.CourseworkDetail, error) {
	var detail models.CourseworkDetail
	if err := r.client.doJSON(ctx, http.MethodGet, courseworkPath(id), authRequired, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create saves a new roadmap
func (r *CourseworkRepository) Create(ctx context.Context, data models.CourseworkCreate) (*models.CourseworkDetail, error) {
	var detail models.CourseworkDetail
	if err := r.client.doJSON(ctx, http.MethodPost, "/api/courseworks", authRequired, data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Update replaces the fields set in data. Sending the same payload twice
// leaves the server in the same state.
func (r *CourseworkRepository) Update(ctx context.Context, id string, data models.CourseworkUpdate) (*models.CourseworkDetail, error) {
	if data.CourseName == nil && data.RoadmapData == nil {
		return nil, apperrors.Validation("update for coursework %s has no fields set", id)
	}
	var detail models.CourseworkDetail
	if err := r.client.doJSON(ctx, http.MethodPut, courseworkPath(id), authRequired, data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Delete removes a roadmap. Deleting one that is already gone succeeds.
func (r *CourseworkRepository) Delete(ctx context.Context, id string) error {
	err := r.client.doJSON(ctx, http.MethodDelete, courseworkPath(id), authRequired, nil, nil)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}
