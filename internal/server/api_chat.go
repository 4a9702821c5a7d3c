// ABOUTME: HTTP handlers for chat sessions and messages
// ABOUTME: Session rollups are read-only; appends go through the atomic store mutation

package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hmdre39/mission-control-dashboard/internal/store"
)

// ChatSessionResponse is the JSON shape for one session rollup.
type ChatSessionResponse struct {
	ID              string `json:"id"`
	SessionKey      string `json:"sessionId"`
	Channel         string `json:"channel"`
	LastMessage     string `json:"lastMessage,omitempty"`
	LastMessageTime *int64 `json:"lastMessageTime,omitempty"`
	MessageCount    int    `json:"messageCount"`
	CreatedAt       int64  `json:"createdAt"`
}

// ChatMessageResponse is the JSON shape for one chat message.
type ChatMessageResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Channel   string `json:"channel"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	ThreadID  string `json:"threadId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// AppendChatMessageRequest is the body for POST /api/chat/messages.
type AppendChatMessageRequest struct {
	SessionID string `json:"sessionId"`
	Channel   string `json:"channel"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	ThreadID  string `json:"threadId,omitempty"`
}

func chatSessionResponse(c *store.ChatSession) ChatSessionResponse {
	return ChatSessionResponse{
		ID:              c.ID,
		SessionKey:      c.SessionKey,
		Channel:         c.Channel,
		LastMessage:     c.LastMessage,
		LastMessageTime: epochMillisPtr(c.LastMessageTime),
		MessageCount:    c.MessageCount,
		CreatedAt:       epochMillis(c.CreatedAt),
	}
}

func chatMessageResponse(m *store.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Channel:   string(m.Channel),
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: epochMillis(m.Timestamp),
		ThreadID:  m.ThreadID,
		CreatedAt: epochMillis(m.CreatedAt),
	}
}

// handleChatSessions handles GET /api/chat/sessions.
func (s *Server) handleChatSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sessions, err := s.store.ListChatSessions(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]ChatSessionResponse, 0, len(sessions))
	for _, c := range sessions {
		response = append(response, chatSessionResponse(c))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleChatMessages handles GET and POST /api/chat/messages.
func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListChatMessages(w, r)
	case http.MethodPost:
		s.handleAppendChatMessage(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListChatMessages handles GET /api/chat/messages?session_id=X&limit=N.
// Returns the latest N messages of the session in chronological order.
func (s *Server) handleListChatMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			s.sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	messages, err := s.store.ListChatMessages(r.Context(), sessionID, limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, chatMessageResponse(m))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleAppendChatMessage handles POST /api/chat/messages. The store
// writes the message and updates the session rollup atomically.
func (s *Server) handleAppendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req AppendChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg := &store.ChatMessage{
		SessionID: req.SessionID,
		Channel:   store.ChatChannel(req.Channel),
		Role:      store.ChatRole(req.Role),
		Content:   req.Content,
		ThreadID:  req.ThreadID,
	}

	if _, err := s.store.AppendChatMessage(r.Context(), msg); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, chatMessageResponse(msg))
}
