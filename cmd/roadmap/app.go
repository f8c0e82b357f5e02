package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"coursework-roadmap/internal/config"
	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/logging"
	"coursework-roadmap/internal/repositories"
	"coursework-roadmap/internal/services"
	"coursework-roadmap/internal/session"
	"coursework-roadmap/internal/store"

	"github.com/spf13/cobra"
)

// app holds everything a command needs, built from the configuration
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *store.DB
	session *session.Session
	client  *repositories.Client
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(config.ExpandHome(configFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.Logging, os.Stderr)

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}

	sess := session.New(db, session.WithLogger(logger))
	if err := sess.Load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("configuration loaded", "server", cfg.Server.BaseURL, "store", cfg.Store.Path)
	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		session: sess,
		client:  repositories.NewClient(cfg.Server.BaseURL, cfg.Timeout(), sess),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close local store", "error", err)
	}
}

func (a *app) retryPolicy() services.RetryPolicy {
	return services.RetryPolicy{Attempts: a.cfg.Sync.RetryCount, Delay: a.cfg.RetryDelay()}
}

// backend picks where roadmaps live: the service when signed in, the local
// cache otherwise or when --local is set
func (a *app) backend() services.Backend {
	if useLocal {
		return services.NewLocalBackend(a.db)
	}
	if !a.session.Authenticated() {
		helpers.PrintWarning("Not signed in, using local drafts (run 'roadmap login' to sync)")
		return services.NewLocalBackend(a.db)
	}
	courseworks := repositories.NewCourseworkRepository(a.client)
	return services.NewRemoteBackend(courseworks, a.session, a.retryPolicy(), a.logger)
}

func (a *app) roadmaps() *services.RoadmapService {
	return services.NewRoadmapService(a.backend(), services.RoadmapConfig{
		Window: a.cfg.DebounceWindow(),
		Logger: a.logger,
	})
}

func (a *app) auth() *services.AuthService {
	return services.NewAuthService(repositories.NewAuthRepository(a.client), a.session, a.logger)
}

func (a *app) chat() *services.ChatService {
	return services.NewChatService(repositories.NewChatRepository(a.client), a.logger)
}

func (a *app) images() *services.ImageService {
	return services.NewImageService(repositories.NewImageRepository(a.client), a.logger)
}

func (a *app) decomposer() *services.DecomposeService {
	return services.NewDecomposeService(repositories.NewDecomposeRepository(a.client), a.retryPolicy(), a.logger)
}

// withApp builds the app for a command and closes it afterwards
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd.Context(), a, args)
	}
}

// withRoadmap opens roadmap args[0] for the duration of run and saves any
// changes before returning
func withRoadmap(run func(ctx context.Context, a *app, edit *services.EditSession, args []string) error) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, a *app, args []string) (err error) {
		edit, err := a.roadmaps().Open(ctx, args[0])
		if err != nil {
			return err
		}
		warnIssues(edit)
		defer func() {
			if closeErr := closeEdit(ctx, edit, a.cfg.Timeout()); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return run(ctx, a, edit, args[1:])
	})
}

// warnIssues reports what was repaired on load. Dropped tasks are gone from
// the stored roadmap once the session saves.
func warnIssues(edit *services.EditSession) {
	for _, issue := range edit.Engine.Issues() {
		helpers.PrintWarning("%s", issue)
	}
}

// closeEdit saves pending changes and closes edit. The final save outlives a
// cancelled ctx, e.g. after Ctrl-C, and is bounded by timeout instead.
func closeEdit(ctx context.Context, edit *services.EditSession, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return edit.Close(ctx)
}
