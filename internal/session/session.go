// Package session holds the bearer token of the signed-in user and its
// lifecycle: loaded on start, replaced on sign-in, cleared on sign-out.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
)

// TokenStore persists the token between runs
type TokenStore interface {
	// LoadToken returns "" when no token is stored
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Session is the explicit auth context passed to everything that calls the
// service. It satisfies repositories.TokenSource.
type Session struct {
	store  TokenStore
	now    func() time.Time
	logger *slog.Logger

	mu        sync.RWMutex
	token     string
	subject   string
	expiresAt time.Time
	user      *models.User
}

// Option configures a Session
type Option func(*Session)

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates an unauthenticated session backed by store. store may be nil
// for a session that lives only in memory.
func New(store TokenStore, opts ...Option) *Session {
	s := &Session{
		store:  store,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores a persisted token. An expired token is cleared and the
// session stays unauthenticated.
func (s *Session) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	token, err := s.store.LoadToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	subject, expiresAt := readClaims(token)
	if !expiresAt.IsZero() && !s.now().Before(expiresAt) {
		s.logger.Info("stored token expired, signing out", "expired_at", expiresAt)
		return s.store.ClearToken(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.subject, s.expiresAt = token, subject, expiresAt
	return nil
}

// Token returns the bearer token, or an auth error when signed out or expired
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", apperrors.Auth(http.StatusUnauthorized, "not signed in")
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		return "", apperrors.Auth(http.StatusUnauthorized, "session expired, sign in again")
	}
	return s.token, nil
}

// SignIn adopts the token of a login or registration and persists it
func (s *Session) SignIn(ctx context.Context, resp *models.TokenResponse) error {
	if resp == nil || strings.TrimSpace(resp.AccessToken) == "" {
		return apperrors.Validation("sign-in response carries no access token")
	}
	token := strings.TrimSpace(resp.AccessToken)
	if s.store != nil {
		if err := s.store.SaveToken(ctx, token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
	}

	subject, expiresAt := readClaims(token)
	if subject == "" {
		subject = resp.User.ID
	}
	user := resp.User

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.subject, s.expiresAt = token, subject, expiresAt
	s.user = &user
	return nil
}

// SignOut forgets the token locally and in the store
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.subject, s.expiresAt, s.user = "", "", time.Time{}, nil
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.ClearToken(ctx); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// SetUser records the account the token belongs to
func (s *Session) SetUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// Authenticated reports whether a usable token is held
func (s *Session) Authenticated() bool {
	_, err := s.Token()
	return err == nil
}

// User returns the signed-in account if known
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Subject returns the user id named by the token, if any
func (s *Session) Subject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subject
}

// ExpiresAt returns the token expiry. The zero time means the token carries
// none that can be read locally.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// readClaims reads sub and exp without verifying the signature; the server
// remains the authority. Opaque tokens yield zero values.
func readClaims(token string) (string, time.Time) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", time.Time{}
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return claims.Subject, expiresAt
}
