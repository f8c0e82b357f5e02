package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/roadmap"
)

// CreateDraft stores doc as a new local roadmap and returns its id
func (db *DB) CreateDraft(ctx context.Context, doc *models.DecompositionResponse) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode roadmap: %w", err)
	}

	id := uuid.NewString()
	now := db.timestamp()
	_, err = db.ExecContext(ctx, `
		INSERT INTO drafts (id, course_name, deadline, deadline_note, roadmap_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, doc.Name(), optional(doc.Deadline), optional(doc.DeadlineNote), string(data), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	return id, nil
}

// GetDraft loads a local roadmap
func (db *DB) GetDraft(ctx context.Context, id string) (*models.CourseworkDetail, error) {
	var (
		detail           models.CourseworkDetail
		deadline, note   sql.NullString
		data             string
		created, updated string
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, course_name, deadline, deadline_note, roadmap_data, created_at, updated_at
		FROM drafts WHERE id = ?`, id).
		Scan(&detail.ID, &detail.CourseName, &deadline, &note, &data, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("draft %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &detail.RoadmapData); err != nil {
		return nil, fmt.Errorf("failed to decode draft %s: %w", id, err)
	}
	detail.Deadline = nullable(deadline)
	detail.DeadlineNote = nullable(note)
	detail.CreatedAt = parseTime(created)
	detail.UpdatedAt = parseTime(updated)
	return &detail, nil
}

// ListDrafts returns local roadmaps, most recently updated first
func (db *DB) ListDrafts(ctx context.Context) ([]models.CourseworkSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, course_name, deadline, deadline_note, roadmap_data, created_at, updated_at
		FROM drafts ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	summaries := []models.CourseworkSummary{}
	for rows.Next() {
		var (
			s                models.CourseworkSummary
			deadline, note   sql.NullString
			data             string
			created, updated string
		)
		if err := rows.Scan(&s.ID, &s.CourseName, &deadline, &note, &data, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		var doc models.DecompositionResponse
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode draft %s: %w", s.ID, err)
		}
		s.Deadline = nullable(deadline)
		s.DeadlineNote = nullable(note)
		s.CreatedAt = parseTime(created)
		s.UpdatedAt = parseTime(updated)
		stats := roadmap.Summarize(doc.Tasks)
		s.TotalTasks = stats.Total
		s.CompletedTasks = stats.Completed
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return summaries, nil
}

// SaveDraft replaces the roadmap data of a local roadmap
func (db *DB) SaveDraft(ctx context.Context, id string, doc *models.DecompositionResponse) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode roadmap: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE drafts SET roadmap_data = ?, deadline = ?, deadline_note = ?, updated_at = ?
		WHERE id = ?`,
		string(data), optional(doc.Deadline), optional(doc.DeadlineNote), db.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("draft %s not found", id)
	}
	return nil
}

// RenameDraft changes the course name of a local roadmap
func (db *DB) RenameDraft(ctx context.Context, id, name string) error {
	res, err := db.ExecContext(ctx, `UPDATE drafts SET course_name = ?, updated_at = ? WHERE id = ?`,
		name, db.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to rename draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("draft %s not found", id)
	}
	return nil
}

// DeleteDraft removes a local roadmap. Deleting a missing draft succeeds.
func (db *DB) DeleteDraft(ctx context.Context, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
