package web

import (
	"net/http"

	"github.com/JonMunkholm/pharmadb/internal/api"
)

// The gateway is stateless between requests; the browser carries the
// session id and history back on every question.
type chatRequest struct {
	Question  string         `json:"question"`
	SessionID string         `json:"session_id"`
	History   []api.ChatTurn `json:"history"`
	RequestID int            `json:"request_id"`
}

type chatResponse struct {
	api.ChatResponse
	SessionID string         `json:"session_id"`
	History   []api.ChatTurn `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	chat := s.service.ResumeChatSession(req.SessionID, req.History)
	chat.ScopeToList(req.RequestID)

	resp, err := chat.Ask(r.Context(), req.Question)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		ChatResponse: resp,
		SessionID:    chat.ID(),
		History:      chat.History(),
	})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
		return
	}
	if err := s.service.ResumeChatSession(req.SessionID, nil).Clear(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": req.SessionID})
}
