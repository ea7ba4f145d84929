package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/zenberry/zenchat/internal/api"
	"github.com/zenberry/zenchat/internal/domain"
	"github.com/zenberry/zenchat/internal/transport"
)

// ChatService answers questions in batch or streaming mode.
type ChatService interface {
	Ask(ctx context.Context, question string, history []domain.ConversationTurn, category string) (string, error)
	Stream(ctx context.Context, question string, history []domain.ConversationTurn, category string) (<-chan string, error)
}

// ChatHandler serves the chat endpoints.
type ChatHandler struct {
	svc ChatService
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ChatResponse is the batch-mode response body.
type ChatResponse struct {
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// Ask handles POST /chat.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question, req.History, req.Category)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Answer:    answer,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Stream handles POST /chat/stream. Frames are NDJSON envelopes: zero or more
// {"chunk":...}, then {"done":true} exactly once. A validation failure is the
// single exception: it produces one {"error":...} frame and nothing else.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writer, err := transport.NewStreamWriter(w)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	chunks, err := h.svc.Stream(r.Context(), req.Question, req.History, req.Category)
	if err != nil {
		if writeErr := writer.WriteError(err.Error()); writeErr != nil {
			log.Printf("chat: failed to write stream error frame: %v", writeErr)
		}
		return
	}

	writer.Relay(r.Context(), chunks)
}
