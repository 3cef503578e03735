package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// ChatQuery forwards a question to the assistant.
func (c *Client) ChatQuery(ctx context.Context, in ChatRequest) (ChatResponse, error) {
	if in.ChatHistory == nil {
		in.ChatHistory = []ChatTurn{}
	}
	var out ChatResponse
	if err := c.doJSON(ctx, "chat_query", http.MethodPost, "/api/chatbot/query", nil, in, &out); err != nil {
		return ChatResponse{}, err
	}
	return out, nil
}

// ChatClear drops the backend's history for a session.
func (c *Client) ChatClear(ctx context.Context, sessionID string) error {
	var q url.Values
	if sessionID != "" {
		q = url.Values{"session_id": {sessionID}}
	}
	return c.doJSON(ctx, "chat_clear", http.MethodPost, "/api/chatbot/clear-session", q, nil, nil)
}

// Ingest uploads a document for extraction.
func (c *Client) Ingest(ctx context.Context, uploader, filename string, r io.Reader) (IngestResult, error) {
	var out IngestResult
	fields := map[string]string{"uploader_name": uploader}
	if err := c.doMultipart(ctx, "ingest", "/api/injection/upload", fields, "file", filename, r, &out); err != nil {
		return IngestResult{}, err
	}
	return out, nil
}
