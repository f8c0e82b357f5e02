package models

import "time"

// Source types attached to chat answers
const (
	SourceTypeText  = "text"
	SourceTypeImage = "image"
)

// ChatRequest is a single question about a decomposed document
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// ChatSource is a citation preview returned with an answer
type ChatSource struct {
	ChunkID    string  `json:"chunk_id"`
	ChunkIndex int     `json:"chunk_index"`
	Preview    string  `json:"preview"`
	SourceType string  `json:"source_type"`
	ImagePath  *string `json:"image_path,omitempty"`
}

// ChatResponse is the assistant's answer to a ChatRequest
type ChatResponse struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources"`
	Images  []string     `json:"images"`
}

// ChatRole identifies who produced a chat log entry
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleError     ChatRole = "error"
)

// ChatMessage is one entry of a conversation log
type ChatMessage struct {
	ID        string       `json:"id"`
	Role      ChatRole     `json:"role"`
	Text      string       `json:"text"`
	Sources   []ChatSource `json:"sources"`
	Images    []string     `json:"images"`
	CreatedAt time.Time    `json:"created_at"`
}
