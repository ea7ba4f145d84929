package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleUser))
	assert.True(t, IsValidRole(RoleAssistant))
	assert.False(t, IsValidRole(RoleSystem))
	assert.False(t, IsValidRole("moderator"))
	assert.False(t, IsValidRole(""))
}

func TestTrimHistory(t *testing.T) {
	t.Run("keeps short history intact", func(t *testing.T) {
		history := makeHistory(4)
		assert.Equal(t, history, TrimHistory(history))
	})

	t.Run("keeps exactly the window", func(t *testing.T) {
		history := makeHistory(HistoryWindow)
		assert.Equal(t, history, TrimHistory(history))
	})

	t.Run("keeps the most recent turns in order", func(t *testing.T) {
		history := makeHistory(10)
		trimmed := TrimHistory(history)
		assert.Len(t, trimmed, HistoryWindow)
		assert.Equal(t, "turn 4", trimmed[0].Content)
		assert.Equal(t, "turn 9", trimmed[HistoryWindow-1].Content)
	})

	t.Run("handles nil history", func(t *testing.T) {
		assert.Empty(t, TrimHistory(nil))
	})
}

func makeHistory(n int) []ConversationTurn {
	history := make([]ConversationTurn, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, NewConversationTurn(role, fmt.Sprintf("turn %d", i)))
	}
	return history
}
