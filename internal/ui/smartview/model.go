// Package smartview shows the AI organizer's table of contents: topics
// with the notes grouped under them.
package smartview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/theme"
)

// OpenNoteMsg asks the app to open a note in the editor.
type OpenNoteMsg struct {
	NoteID string
}

// CloseMsg returns to the dashboard.
type CloseMsg struct{}

// Topic is a table of contents entry with its notes resolved.
type Topic struct {
	Title       string
	Description string
	Notes       []model.Note
}

// Model is the smart view screen.
type Model struct {
	keys   *keys.KeyMap
	topics []Topic
	cursor int
	width  int
	height int
}

// New creates an empty smart view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetTOC resolves each topic's note ids against notes. Ids of notes that
// no longer exist are dropped, and topics left empty are hidden.
func (m *Model) SetTOC(items []model.TocItem, notes []model.Note) {
	m.topics = m.topics[:0]
	for _, it := range items {
		resolved := notebook.ResolveNotes(notes, it.NoteIDs)
		if len(resolved) == 0 {
			continue
		}
		m.topics = append(m.topics, Topic{Title: it.Topic, Description: it.Description, Notes: resolved})
	}
	m.cursor = 0
}

// Topics returns the visible topics.
func (m Model) Topics() []Topic {
	return m.topics
}

func (m Model) entries() []model.Note {
	var out []model.Note
	for _, t := range m.topics {
		out = append(out, t.Notes...)
	}
	return out
}

// Update handles messages for the smart view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(m.entries())
	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(km, m.keys.Down):
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case key.Matches(km, m.keys.Up):
		if n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
	case key.Matches(km, m.keys.Select):
		if n > 0 {
			id := m.entries()[m.cursor].ID
			return m, func() tea.Msg { return OpenNoteMsg{NoteID: id} }
		}
	}
	return m, nil
}

// View renders the smart view.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("🧠 Smart View"))
	b.WriteString("\n")

	if len(m.topics) == 0 {
		b.WriteString(theme.HelpStyle.Render("No topics yet. Run the organizer from the dashboard with o."))
		return b.String()
	}

	idx := 0
	for _, t := range m.topics {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorIndigo).Render(
			fmt.Sprintf("%s (%d)", t.Title, len(t.Notes))))
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).PaddingLeft(2).Render(t.Description))
			b.WriteString("\n")
		}
		for _, n := range t.Notes {
			title := n.Title
			if title == "" {
				title = notebook.DefaultTitle
			}
			if idx == m.cursor {
				b.WriteString(theme.SelectedItemStyle.Render("  " + title))
			} else {
				b.WriteString(theme.ListItemStyle.Render("  " + title))
			}
			b.WriteString("\n")
			idx++
		}
		b.WriteString("\n")
	}
	b.WriteString(theme.HelpStyle.Render("enter open | esc back"))
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
