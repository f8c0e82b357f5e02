package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/autosave"
	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/roadmap"
)

// RoadmapConfig configures a RoadmapService
type RoadmapConfig struct {
	// Window is the autosave debounce window
	Window time.Duration
	// Clock overrides the autosave timer source
	Clock  autosave.Clock
	Logger *slog.Logger
}

// RoadmapService opens saved roadmaps for viewing and editing
type RoadmapService struct {
	backend Backend
	window  time.Duration
	clock   autosave.Clock
	logger  *slog.Logger
}

// NewRoadmapService creates a roadmap service over backend
func NewRoadmapService(backend Backend, cfg RoadmapConfig) *RoadmapService {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &RoadmapService{
		backend: backend,
		window:  cfg.Window,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}
}

// List returns saved roadmaps, most recently updated first
func (s *RoadmapService) List(ctx context.Context) ([]models.CourseworkSummary, error) {
	list, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}
	return list, nil
}

// Create saves a new roadmap and returns its id
func (s *RoadmapService) Create(ctx context.Context, doc *models.DecompositionResponse) (string, error) {
	if doc == nil {
		return "", apperrors.Validation("no roadmap to save")
	}
	for _, issue := range roadmap.Normalize(doc) {
		s.logger.Warn("roadmap normalized", "issue", issue)
	}
	id, err := s.backend.Create(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to save roadmap: %w", err)
	}
	s.logger.Info("roadmap created", "coursework_id", id, "tasks", len(doc.Tasks))
	return id, nil
}

// Rename changes the course name of a saved roadmap
func (s *RoadmapService) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validation("course name cannot be empty")
	}
	if err := s.backend.Rename(ctx, id, name); err != nil {
		return fmt.Errorf("failed to rename roadmap %s: %w", id, err)
	}
	return nil
}

// Delete removes a saved roadmap
func (s *RoadmapService) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete roadmap %s: %w", id, err)
	}
	s.logger.Info("roadmap deleted", "coursework_id", id)
	return nil
}

// Open loads a roadmap and starts an edit session whose status changes are
// saved back automatically
func (s *RoadmapService) Open(ctx context.Context, id string) (*EditSession, error) {
	detail, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roadmap %s: %w", id, err)
	}

	logger := s.logger.With("coursework_id", id)
	doc := detail.RoadmapData
	engine := roadmap.NewEngine(&doc, roadmap.WithLogger(logger))

	saver := autosave.SaverFunc(func(ctx context.Context, doc *models.DecompositionResponse) error {
		return s.backend.Save(ctx, id, doc)
	})
	sync := autosave.New(saver, engine.Snapshot, autosave.Config{
		Window: s.window,
		Clock:  s.clock,
		Logger: logger,
	})

	engine.OnChange(func(c roadmap.Change) {
		logger.Debug("task status changed", "task_id", c.TaskID, "from", c.From, "to", c.To)
		sync.MarkDirty()
	})

	return &EditSession{
		ID:         id,
		CourseName: detail.CourseName,
		Engine:     engine,
		Sync:       sync,
	}, nil
}

// EditSession is one open roadmap: the engine holding its state and the
// synchronizer saving it
type EditSession struct {
	ID         string
	CourseName string
	Engine     *roadmap.Engine
	Sync       *autosave.Synchronizer
}

// Document returns a copy of the current roadmap
func (e *EditSession) Document() *models.DecompositionResponse {
	return e.Engine.Snapshot()
}

// Flush saves pending changes now and waits until the store has them
func (e *EditSession) Flush(ctx context.Context) error {
	for {
		if err := e.Sync.Wait(ctx); err != nil {
			return err
		}
		if !e.Sync.Dirty() {
			return nil
		}
		if err := e.Sync.SaveNow(ctx); err != nil {
			return fmt.Errorf("failed to save roadmap %s: %w", e.ID, err)
		}
	}
}

// Close flushes pending changes and stops autosaving. The session is closed
// even when the final save fails.
func (e *EditSession) Close(ctx context.Context) error {
	err := e.Flush(ctx)
	e.Sync.Close()
	return err
}
