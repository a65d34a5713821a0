package dashboard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ids(notes []model.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func fixture() []model.Note {
	return []model.Note{
		{ID: "a", Title: "Groceries", Content: "milk"},
		{ID: "b", Title: "Go notes", Content: "channels", IsPinned: true},
		{ID: "c", Title: "Trip", Content: "pack the GO bag"},
	}
}

func TestSetNotes_PinnedFirstOrderPreserved(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetNotes(fixture(), []model.Folder{{ID: "f", Name: "Work"}}, "f")

	assert.Equal(t, []string{"b", "a", "c"}, ids(m.Shown()))
	assert.Contains(t, m.View(), "Work")
}

func TestSearch_FiltersLiveAndClearsOnEsc(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetNotes(fixture(), nil, "")

	m, _ = m.Update(runes("/"))
	require.True(t, m.Searching())
	m, _ = m.Update(runes("go"))
	assert.Equal(t, []string{"b", "c"}, ids(m.Shown()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Searching())
	assert.Equal(t, "go", m.Query())

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.Query())
	assert.Len(t, m.Shown(), 3)
}

func TestKeys_EmitIntents(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetNotes(fixture(), nil, "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, OpenNoteMsg{NoteID: "b"}, cmd())

	_, cmd = m.Update(runes("p"))
	assert.Equal(t, TogglePinMsg{NoteID: "b"}, cmd())

	_, cmd = m.Update(runes("d"))
	assert.Equal(t, DeleteNoteMsg{NoteID: "b"}, cmd())

	_, cmd = m.Update(runes("n"))
	assert.Equal(t, NewNoteMsg{}, cmd())
}

func TestEmptyState(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetNotes(nil, nil, "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Press n to create your first note.")
}

func TestPreviewAndRelativeTime(t *testing.T) {
	assert.Equal(t, "Title line", preview("\n# Title line\nbody"))
	assert.Equal(t, "Empty note", preview("  \n"))

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", relativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", relativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3d ago", relativeTime(now.Add(-72*time.Hour), now))
	assert.Equal(t, "Dec 01, 2024", relativeTime(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), now))
}
