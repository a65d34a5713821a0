package flashcards

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
)

func TestFlashcards_FlipNextAndMaster(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetCards([]model.Flashcard{
		{ID: "1", Front: "Goroutine", Back: "A lightweight thread"},
		{ID: "2", Front: "Channel", Back: "A typed conduit"},
	})

	assert.Contains(t, m.View(), "Goroutine")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.Contains(t, m.View(), "A lightweight thread")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Contains(t, m.View(), "1 left to master")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	view := m.View()
	assert.Contains(t, view, "Channel")
	assert.Contains(t, view, "Card 2 of 2")
}

func TestFlashcards_Empty(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	assert.Contains(t, m.View(), "No flashcards yet")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, CloseMsg{}, cmd())
}
