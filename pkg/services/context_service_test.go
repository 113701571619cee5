package services

import (
	"testing"

	"sales-chat-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSessionGeneratesID(t *testing.T) {
	cs := NewContextService()

	id := cs.EnsureSession("")
	assert.NotEmpty(t, id)

	// A provided ID is kept as-is.
	assert.Equal(t, "abc", cs.EnsureSession("abc"))
}

func TestContextReplaceOnSuccess(t *testing.T) {
	cs := NewContextService()
	id := cs.EnsureSession("")

	assert.Equal(t, models.ConversationContext{}, cs.Context(id))

	ctx := models.ConversationContext{LastTopic: "customers", LastDataType: GroupCustomer, LastCount: 3}
	cs.SetContext(id, ctx)
	assert.Equal(t, ctx, cs.Context(id))

	next := models.ConversationContext{LastTopic: "regions", LastDataType: GroupRegion, LastCount: 3}
	cs.SetContext(id, next)
	assert.Equal(t, next, cs.Context(id), "the single slot holds only the latest context")
}

func TestHistoryWindowTrimmed(t *testing.T) {
	cs := NewContextService()
	id := cs.EnsureSession("")

	for i := 0; i < historyWindow+5; i++ {
		cs.AppendHistory(id, "user", "q")
		cs.AppendHistory(id, "assistant", "a")
	}
	history := cs.History(id)
	require.Len(t, history, historyWindow)
	// Window keeps the most recent turns, ending on an assistant entry.
	assert.Equal(t, "assistant", history[len(history)-1].Role)
}

func TestBeginTurnSerializesSession(t *testing.T) {
	cs := NewContextService()
	id := cs.EnsureSession("")

	require.True(t, cs.BeginTurn(id))
	assert.False(t, cs.BeginTurn(id), "a second call while one is outstanding is rejected")

	cs.EndTurn(id)
	assert.True(t, cs.BeginTurn(id))
}

func TestBeginTurnUnknownSession(t *testing.T) {
	cs := NewContextService()
	assert.False(t, cs.BeginTurn("missing"))
}
