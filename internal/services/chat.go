package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
)

// ChatClient is the remote chat API
type ChatClient interface {
	Ask(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// Conversation is the local log of one chat about a decomposed document
type Conversation struct {
	SessionID string

	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewConversation starts an empty log for sessionID
func NewConversation(sessionID string) *Conversation {
	return &Conversation{SessionID: sessionID}
}

// ConversationFor starts a conversation about doc. It fails when doc has no
// chat session.
func ConversationFor(doc *models.DecompositionResponse) (*Conversation, error) {
	if !doc.ChatEnabled() {
		return nil, apperrors.Validation("this roadmap has no chat session; decompose the document again to ask questions")
	}
	return NewConversation(*doc.SessionID), nil
}

// Messages returns a copy of the log
func (c *Conversation) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

func (c *Conversation) append(msg models.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *Conversation) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// ChatService asks questions about a decomposed document
type ChatService struct {
	client ChatClient
	logger *slog.Logger
	now    func() time.Time
}

// NewChatService creates a chat service
func NewChatService(client ChatClient, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChatService{client: client, logger: logger, now: time.Now}
}

// Ask appends the question and the reply to conv and returns the reply.
// Invalid input is rejected with an error and appends nothing. Any failure
// after that is recorded in the log as an error entry, which is returned
// with a nil error; earlier entries are never touched.
func (s *ChatService) Ask(ctx context.Context, conv *Conversation, question string) (models.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.ChatMessage{}, apperrors.Validation("question cannot be empty")
	}
	if conv == nil || conv.SessionID == "" {
		return models.ChatMessage{}, apperrors.Validation("chat is not available without a session")
	}

	conv.append(s.message(models.RoleUser, question))

	resp, err := s.client.Ask(ctx, models.ChatRequest{Question: question, SessionID: conv.SessionID})
	if err != nil {
		s.logger.Error("chat failed", "session_id", conv.SessionID, "error", err)
		reply := s.message(models.RoleError, "Sorry, I couldn't answer that: "+apperrors.Message(err))
		conv.append(reply)
		return reply, nil
	}

	reply := s.message(models.RoleAssistant, resp.Answer)
	reply.Sources = resp.Sources
	if reply.Sources == nil {
		reply.Sources = []models.ChatSource{}
	}
	reply.Images = mergeImages(resp.Images, reply.Sources)
	conv.append(reply)
	return reply, nil
}

// ClearHistory drops the server-side memory of conv and empties the log
func (s *ChatService) ClearHistory(ctx context.Context, conv *Conversation) error {
	if conv == nil || conv.SessionID == "" {
		return apperrors.Validation("chat is not available without a session")
	}
	if err := s.client.ClearHistory(ctx, conv.SessionID); err != nil {
		return err
	}
	conv.reset()
	return nil
}

func (s *ChatService) message(role models.ChatRole, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Sources:   []models.ChatSource{},
		Images:    []string{},
		CreatedAt: s.now(),
	}
}

// mergeImages returns images followed by any image paths cited by sources,
// without duplicates and in first-seen order
func mergeImages(images []string, sources []models.ChatSource) []string {
	out := make([]string, 0, len(images))
	seen := make(map[string]struct{}, len(images))
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	for _, img := range images {
		add(img)
	}
	for _, src := range sources {
		if src.SourceType == models.SourceTypeImage && src.ImagePath != nil {
			add(*src.ImagePath)
		}
	}
	return out
}
