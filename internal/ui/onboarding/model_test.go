package onboarding

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/keys"
)

func TestSlides_AdvanceThenComplete(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	assert.Contains(t, m.View(), "Smart Organization")

	right := tea.KeyMsg{Type: tea.KeyRight}
	m, cmd := m.Update(right)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Test Your Knowledge")

	m, _ = m.Update(right)
	assert.Contains(t, m.View(), "Secure & Synced")

	_, cmd = m.Update(right)
	require.NotNil(t, cmd)
	assert.Equal(t, CompleteMsg{}, cmd())
}

func TestSlides_BackStopsAtFirstAndSkip(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.Index())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)
	assert.Equal(t, CompleteMsg{}, cmd())
}
