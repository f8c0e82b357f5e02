package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LoadToken returns the persisted bearer token, or "" if none
func (db *DB) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := db.QueryRowContext(ctx, `SELECT token FROM auth_token WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// SaveToken replaces the persisted token
func (db *DB) SaveToken(ctx context.Context, token string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO auth_token (id, token, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, saved_at = excluded.saved_at`,
		token, db.timestamp())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// ClearToken removes the persisted token
func (db *DB) ClearToken(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM auth_token`); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
