package repositories

import (
	"context"
	"net/http"

	"coursework-roadmap/internal/models"
)

// AuthRepository handles account endpoints
type AuthRepository struct {
	client *Client
}

// NewAuthRepository creates a new auth repository
func NewAuthRepository(client *Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Login exchanges credentials for a token
func (r *AuthRepository) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	var resp models.TokenResponse
	if err := r.client.doJSON(ctx, http.MethodPost, "/api/auth/login", authNone, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and signs it in
func (r *AuthRepository) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error) {
	var resp models.TokenResponse
	if err := r.client.doJSON(ctx, http.MethodPost, "/api/auth/register", authNone, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the account the current token belongs to
func (r *AuthRepository) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.client.doJSON(ctx, http.MethodGet, "/api/auth/me", authRequired, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the current token on the server
func (r *AuthRepository) Logout(ctx context.Context) error {
	return r.client.doJSON(ctx, http.MethodPost, "/api/auth/logout", authRequired, nil, nil)
}
