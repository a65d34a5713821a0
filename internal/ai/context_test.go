package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/model"
)

func turn(i int) (model.ChatMessage, model.ChatMessage) {
	return model.ChatMessage{ID: fmt.Sprintf("q%d", i), Role: model.ChatRoleUser},
		model.ChatMessage{ID: fmt.Sprintf("a%d", i), Role: model.ChatRoleAI}
}

func TestHistory_DropsOldestTurns(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 13; i++ {
		q, a := turn(i)
		require.True(t, h.AddTurn(0, q, a))
	}

	msgs := h.Messages()
	require.Len(t, msgs, 20)
	assert.Equal(t, 10, h.Turns())
	assert.Equal(t, "q3", msgs[0].ID)
	assert.Equal(t, "a3", msgs[1].ID)
	assert.Equal(t, "a12", msgs[19].ID)

	msgs[0].Content = "changed"
	assert.Empty(t, h.Messages()[0].Content, "Messages returns a copy")

	h.Reset()
	assert.Equal(t, 0, h.Turns())
	assert.Empty(t, h.Messages())
}

func TestHistory_RefusesTurnsFromBeforeReset(t *testing.T) {
	h := NewHistory()
	_, epoch := h.Begin()

	h.Reset()
	q, a := turn(1)
	assert.False(t, h.AddTurn(epoch, q, a))
	assert.Equal(t, 0, h.Turns())

	_, epoch = h.Begin()
	assert.True(t, h.AddTurn(epoch, q, a))
	assert.Equal(t, 1, h.Turns())
}
