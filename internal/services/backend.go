package services

import (
	"context"
	"errors"
	"log/slog"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
)

// Backend is where roadmaps are kept: the remote service for signed-in
// users, or the local cache.
type Backend interface {
	List(ctx context.Context) ([]models.CourseworkSummary, error)
	Get(ctx context.Context, id string) (*models.CourseworkDetail, error)
	Create(ctx context.Context, doc *models.DecompositionResponse) (string, error)
	// Save replaces the stored roadmap data with doc
	Save(ctx context.Context, id string, doc *models.DecompositionResponse) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// CourseworkClient is the remote coursework API
type CourseworkClient interface {
	List(ctx context.Context) ([]models.CourseworkSummary, error)
	Get(ctx context.Context, id string) (*models.CourseworkDetail, error)
	Create(ctx context.Context, data models.CourseworkCreate) (*models.CourseworkDetail, error)
	Update(ctx context.Context, id string, data models.CourseworkUpdate) (*models.CourseworkDetail, error)
	Delete(ctx context.Context, id string) error
}

// SignOuter forgets credentials the server rejected
type SignOuter interface {
	SignOut(ctx context.Context) error
}

// RemoteBackend keeps roadmaps on the coursework service. Transient failures
// are retried; an auth failure signs the user out locally.
type RemoteBackend struct {
	client  CourseworkClient
	session SignOuter
	retry   RetryPolicy
	logger  *slog.Logger
}

// NewRemoteBackend creates a remote backend. session may be nil.
func NewRemoteBackend(client CourseworkClient, session SignOuter, retry RetryPolicy, logger *slog.Logger) *RemoteBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RemoteBackend{client: client, session: session, retry: retry, logger: logger}
}

func (b *RemoteBackend) List(ctx context.Context) ([]models.CourseworkSummary, error) {
	list, err := withRetry(ctx, b.retry, b.logger, "list courseworks", b.client.List)
	return list, b.check(ctx, err)
}

func (b *RemoteBackend) Get(ctx context.Context, id string) (*models.CourseworkDetail, error) {
	detail, err := withRetry(ctx, b.retry, b.logger, "load coursework", func(ctx context.Context) (*models.CourseworkDetail, error) {
		return b.client.Get(ctx, id)
	})
	return detail, b.check(ctx, err)
}

// Create is not retried: a lost response would otherwise store a duplicate
func (b *RemoteBackend) Create(ctx context.Context, doc *models.DecompositionResponse) (string, error) {
	detail, err := b.client.Create(ctx, models.NewCourseworkCreate(doc))
	if err := b.check(ctx, err); err != nil {
		return "", err
	}
	return detail.ID, nil
}

func (b *RemoteBackend) Save(ctx context.Context, id string, doc *models.DecompositionResponse) error {
	_, err := withRetry(ctx, b.retry, b.logger, "save coursework", func(ctx context.Context) (*models.CourseworkDetail, error) {
		return b.client.Update(ctx, id, models.CourseworkUpdate{RoadmapData: doc})
	})
	return b.check(ctx, err)
}

func (b *RemoteBackend) Rename(ctx context.Context, id, name string) error {
	_, err := withRetry(ctx, b.retry, b.logger, "rename coursework", func(ctx context.Context) (*models.CourseworkDetail, error) {
		return b.client.Update(ctx, id, models.CourseworkUpdate{CourseName: &name})
	})
	return b.check(ctx, err)
}

func (b *RemoteBackend) Delete(ctx context.Context, id string) error {
	_, err := withRetry(ctx, b.retry, b.logger, "delete coursework", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, b.client.Delete(ctx, id)
	})
	return b.check(ctx, err)
}

// check signs out on auth failures and passes err through
func (b *RemoteBackend) check(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, apperrors.ErrAuth) || b.session == nil {
		return err
	}
	b.logger.Warn("server rejected credentials, signing out", "error", err)
	if signOutErr := b.session.SignOut(ctx); signOutErr != nil {
		b.logger.Error("sign out failed", "error", signOutErr)
	}
	return err
}

// DraftStore is the local roadmap cache
type DraftStore interface {
	ListDrafts(ctx context.Context) ([]models.CourseworkSummary, error)
	GetDraft(ctx context.Context, id string) (*models.CourseworkDetail, error)
	CreateDraft(ctx context.Context, doc *models.DecompositionResponse) (string, error)
	SaveDraft(ctx context.Context, id string, doc *models.DecompositionResponse) error
	RenameDraft(ctx context.Context, id, name string) error
	DeleteDraft(ctx context.Context, id string) error
}

// LocalBackend keeps roadmaps in the local cache, for use without an account
type LocalBackend struct {
	drafts DraftStore
}

// NewLocalBackend creates a local backend
func NewLocalBackend(drafts DraftStore) *LocalBackend {
	return &LocalBackend{drafts: drafts}
}

func (b *LocalBackend) List(ctx context.Context) ([]models.CourseworkSummary, error) {
	return b.drafts.ListDrafts(ctx)
}

func (b *LocalBackend) Get(ctx context.Context, id string) (*models.CourseworkDetail, error) {
	return b.drafts.GetDraft(ctx, id)
}

func (b *LocalBackend) Create(ctx context.Context, doc *models.DecompositionResponse) (string, error) {
	return b.drafts.CreateDraft(ctx, doc)
}

func (b *LocalBackend) Save(ctx context.Context, id string, doc *models.DecompositionResponse) error {
	return b.drafts.SaveDraft(ctx, id, doc)
}

func (b *LocalBackend) Rename(ctx context.Context, id, name string) error {
	return b.drafts.RenameDraft(ctx, id, name)
}

func (b *LocalBackend) Delete(ctx context.Context, id string) error {
	return b.drafts.DeleteDraft(ctx, id)
}
