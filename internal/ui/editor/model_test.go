package editor

import (
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
)

// newEditor uses static cursors so key handling never returns blink
// commands that wait on a timer.
func newEditor() Model {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.title.Cursor.SetMode(cursor.CursorStatic)
	m.content.Cursor.SetMode(cursor.CursorStatic)
	m.attachInput.Cursor.SetMode(cursor.CursorStatic)
	return m
}

func typeText(m Model, s string) (Model, []tea.Msg) {
	var msgs []tea.Msg
	for _, r := range s {
		var cmd tea.Cmd
		m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		msgs = append(msgs, collect(cmd)...)
	}
	return m, msgs
}

// collect runs cmd and flattens one level of batching.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			if c == nil {
				continue
			}
			out = append(out, c())
		}
		return out
	}
	return []tea.Msg{msg}
}

func changed(msgs []tea.Msg) []ChangedMsg {
	var out []ChangedMsg
	for _, m := range msgs {
		if c, ok := m.(ChangedMsg); ok {
			out = append(out, c)
		}
	}
	return out
}

func TestBlank_TypingEmitsChange(t *testing.T) {
	m := newEditor()
	m.Blank()

	m, msgs := typeText(m, "Plan")
	assert.Equal(t, "Plan", m.Title())
	got := changed(msgs)
	require.Len(t, got, 4)
	assert.Equal(t, ChangedMsg{NoteID: ""}, got[0])
}

func TestLoad_EditsCarryNoteID(t *testing.T) {
	m := newEditor()
	m.Load(model.Note{ID: "n1", Title: "T", Content: "body", Tags: []string{"go"}})

	m, msgs := typeText(m, "!")
	assert.Equal(t, "body!", m.Content())
	assert.Equal(t, []ChangedMsg{{NoteID: "n1"}}, changed(msgs))

	d := m.Draft()
	assert.Equal(t, "T", d.Title)
	assert.Equal(t, []string{"go"}, d.Tags)
}

func TestKeys_SaveAndClose(t *testing.T) {
	m := newEditor()
	m.Blank()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, SaveMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, CloseMsg{}, cmd())
}

func TestAIMenu_RequiresContent(t *testing.T) {
	m := newEditor()
	m.Blank()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, modeEdit, m.mode)
	assert.Contains(t, m.View(), "Write something first.")

	m.SetContent("some text")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, modeAIMenu, m.mode)
}

func TestBusy_BlocksInput(t *testing.T) {
	m := newEditor()
	m.Load(model.Note{ID: "n1", Content: "x"})
	m.SetBusy("Summarizing...")

	m, msgs := typeText(m, "abc")
	assert.Equal(t, "x", m.Content())
	assert.Empty(t, msgs)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, CloseMsg{}, cmd())
}

func TestAppendContent(t *testing.T) {
	m := newEditor()
	m.Blank()

	m.AppendContent("first")
	assert.Equal(t, "first", m.Content())

	m.AppendContent("### ✨ AI Summary (Short Paragraph)\nshort")
	assert.Equal(t, "first\n\n### ✨ AI Summary (Short Paragraph)\nshort", m.Content())
}

func TestAttach_EmitsPath(t *testing.T) {
	m := newEditor()
	m.Blank()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, modeAttach, m.mode)
	m, _ = typeText(m, "/tmp/a.png")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, collect(cmd), tea.Msg(AttachMsg{Path: "/tmp/a.png"}))
}
