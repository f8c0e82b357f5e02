package repositories

import (
	"context"
	"net/http"
	"net/url"

	"coursework-roadmap/internal/models"
)

// ChatRepository handles follow-up questions about a decomposed document
type ChatRepository struct {
	client *Client
}

// NewChatRepository creates a new chat repository
func NewChatRepository(client *Client) *ChatRepository {
	return &ChatRepository{client: client}
}

// Ask sends one question and returns the answer as received
func (r *ChatRepository) Ask(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	var resp models.ChatResponse
	if err := r.client.doJSON(ctx, http.MethodPost, "/api/chat/", authOptional, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearHistory drops the server-side conversation memory of a session
func (r *ChatRepository) ClearHistory(ctx context.Context, sessionID string) error {
	return r.client.doJSON(ctx, http.MethodDelete, "/api/chat/"+url.PathEscape(sessionID), authOptional, nil, nil)
}
