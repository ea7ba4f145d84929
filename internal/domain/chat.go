package domain

import "time"

// Conversation roles accepted in chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationTurn is a single entry in a caller-supplied chat history.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewConversationTurn creates a new ConversationTurn instance
func NewConversationTurn(role, content string) ConversationTurn {
	return ConversationTurn{Role: role, Content: content}
}

// IsValidRole returns true if role is one the chat endpoint accepts in history.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// ChatRequest carries one chat invocation. It lives for a single call: decoded,
// validated, answered, discarded. No server-side conversation state exists.
type ChatRequest struct {
	Question string             `json:"question"`
	History  []ConversationTurn `json:"history"`
	Category string             `json:"category,omitempty"`
}

// ChatAnswer is the batch-mode chat result.
type ChatAnswer struct {
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryWindow is the maximum number of history turns forwarded to the
// completion engine regardless of how many the caller stores.
const HistoryWindow = 6

// TrimHistory returns the most recent HistoryWindow turns in original order.
func TrimHistory(history []ConversationTurn) []ConversationTurn {
	if len(history) <= HistoryWindow {
		return history
	}
	return history[len(history)-HistoryWindow:]
}
