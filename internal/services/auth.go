package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
)

// MinPasswordLength matches the service's registration rule
const MinPasswordLength = 8

// AuthClient is the remote account API
type AuthClient interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error)
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

// Credentials is the local side of the auth session
type Credentials interface {
	SignIn(ctx context.Context, resp *models.TokenResponse) error
	SignOut(ctx context.Context) error
	SetUser(user models.User)
	Authenticated() bool
}

// AuthService signs users in and out
type AuthService struct {
	client  AuthClient
	session Credentials
	logger  *slog.Logger
}

// NewAuthService creates an auth service
func NewAuthService(client AuthClient, session Credentials, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{client: client, session: session, logger: logger}
}

// Login signs in with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	resp, err := s.client.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.adopt(ctx, resp)
}

// Register creates an account and signs it in
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.Validation("invalid email address %q", email)
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.Validation("password must be at least %d characters", MinPasswordLength)
	}

	resp, err := s.client.Register(ctx, models.RegisterRequest{Email: email, Password: password, Name: strings.TrimSpace(name)})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return s.adopt(ctx, resp)
}

func (s *AuthService) adopt(ctx context.Context, resp *models.TokenResponse) (*models.User, error) {
	if err := s.session.SignIn(ctx, resp); err != nil {
		return nil, err
	}
	s.logger.Info("signed in", "user_id", resp.User.ID)
	user := resp.User
	return &user, nil
}

// Logout revokes the token on the server when possible and always forgets
// it locally
func (s *AuthService) Logout(ctx context.Context) error {
	if s.session.Authenticated() {
		if err := s.client.Logout(ctx); err != nil {
			s.logger.Warn("server logout failed, signing out locally", "error", err)
		}
	}
	return s.session.SignOut(ctx)
}

// WhoAmI returns the signed-in account. A rejected token signs out.
func (s *AuthService) WhoAmI(ctx context.Context) (*models.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuth) {
			if signOutErr := s.session.SignOut(ctx); signOutErr != nil {
				s.logger.Error("sign out failed", "error", signOutErr)
			}
		}
		return nil, err
	}
	s.session.SetUser(*user)
	return user, nil
}
