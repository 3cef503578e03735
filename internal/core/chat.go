package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/logging"
)

// MaxChatHistory is how many turns are kept and sent with each question.
// The backend keeps the same window per session.
const MaxChatHistory = 20

// ChatSession is one assistant conversation.
type ChatSession struct {
	svc       *Service
	id        string
	requestID *int

	mu      sync.Mutex
	history []api.ChatTurn
}

// NewChatSession starts a conversation with a fresh session id.
func (s *Service) NewChatSession() *ChatSession {
	return &ChatSession{svc: s, id: uuid.NewString()}
}

// ResumeChatSession continues a conversation whose id and history the
// caller kept, as the gateway does between requests.
func (s *Service) ResumeChatSession(id string, history []api.ChatTurn) *ChatSession {
	if id == "" {
		id = uuid.NewString()
	}
	c := &ChatSession{svc: s, id: id}
	c.history = trimHistory(append([]api.ChatTurn(nil), history...))
	return c
}

// ID returns the session id sent to the backend.
func (c *ChatSession) ID() string {
	return c.id
}

// ScopeToList attaches a list request id to later questions.
func (c *ChatSession) ScopeToList(requestID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if requestID <= 0 {
		c.requestID = nil
		return
	}
	c.requestID = &requestID
}

// History returns a copy of the kept turns, oldest first.
func (c *ChatSession) History() []api.ChatTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.ChatTurn(nil), c.history...)
}

// Ask sends question with the kept history and records both sides.
func (c *ChatSession) Ask(ctx context.Context, question string) (api.ChatResponse, error) {
	question = strings.TrimSpace(question)

	c.mu.Lock()
	req := api.ChatRequest{
		Question:    question,
		ChatHistory: append([]api.ChatTurn{}, c.history...),
		RequestID:   c.requestID,
		SessionID:   c.id,
	}
	c.mu.Unlock()

	if err := c.svc.validate.Struct(req); err != nil {
		return api.ChatResponse{}, fmt.Errorf("validation failed: %w", err)
	}

	resp, err := c.svc.backend.ChatQuery(ctx, req)
	if err != nil {
		return api.ChatResponse{}, fmt.Errorf("ask assistant: %w", err)
	}
	logging.WithFields(ctx, "session_id", c.id).Debug("assistant answered",
		"query_type", resp.QueryType,
		"row_count", resp.RowCount,
	)

	c.mu.Lock()
	c.history = trimHistory(append(c.history,
		api.ChatTurn{Role: "user", Content: question},
		api.ChatTurn{Role: "assistant", Content: resp.Answer},
	))
	c.mu.Unlock()
	return resp, nil
}

// Clear forgets the conversation locally and on the backend.
func (c *ChatSession) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()

	if err := c.svc.backend.ChatClear(ctx, c.id); err != nil {
		return fmt.Errorf("clear assistant session: %w", err)
	}
	return nil
}

func trimHistory(h []api.ChatTurn) []api.ChatTurn {
	if len(h) <= MaxChatHistory {
		return h
	}
	return append([]api.ChatTurn(nil), h[len(h)-MaxChatHistory:]...)
}
