package recyclebin

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/theme"
)

// RestoreMsg moves a note back to the dashboard.
type RestoreMsg struct {
	NoteID string
}

// PurgeMsg deletes a note forever.
type PurgeMsg struct {
	NoteID string
}

// CloseMsg returns to the dashboard.
type CloseMsg struct{}

type formBindings struct {
	confirm bool
}

// Model lists soft-deleted notes.
type Model struct {
	keys        *keys.KeyMap
	notes       []model.Note
	selectedIdx int
	confirming  bool
	confirmForm *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates the recycle bin view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, fb: &formBindings{}, width: width, height: height}
}

// SetNotes replaces the deleted notes shown.
func (m *Model) SetNotes(notes []model.Note) {
	m.notes = notes
	m.confirming = false
	if m.selectedIdx >= len(m.notes) {
		m.selectedIdx = max(len(m.notes)-1, 0)
	}
}

// Update handles messages for the recycle bin.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirming {
		return m.updateConfirm(msg)
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(km, m.keys.Down):
		if len(m.notes) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.notes)
		}

	case key.Matches(km, m.keys.Up):
		if len(m.notes) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.notes)) % len(m.notes)
		}

	case key.Matches(km, m.keys.Restore):
		if len(m.notes) > 0 {
			id := m.notes[m.selectedIdx].ID
			return m, func() tea.Msg { return RestoreMsg{NoteID: id} }
		}

	case key.Matches(km, m.keys.Purge), key.Matches(km, m.keys.Delete):
		if len(m.notes) > 0 {
			m.fb.confirm = false
			m.confirmForm = m.buildConfirmForm()
			m.confirming = true
			return m, m.confirmForm.Init()
		}
	}
	return m, nil
}

func (m Model) buildConfirmForm() *huh.Form {
	title := m.notes[m.selectedIdx].Title
	if title == "" {
		title = notebook.DefaultTitle
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q forever?", title)).
				Description("This cannot be undone.").
				Affirmative("Delete forever").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(min(max(m.width-8, 40), 100))
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.confirming = false
		if m.fb.confirm {
			id := m.notes[m.selectedIdx].ID
			return m, func() tea.Msg { return PurgeMsg{NoteID: id} }
		}
		return m, nil
	case huh.StateAborted:
		m.confirming = false
		return m, nil
	}
	return m, cmd
}

// View renders the recycle bin.
func (m Model) View() string {
	if m.confirming {
		return m.confirmForm.View()
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("🗑  Recycle Bin"))
	b.WriteString("\n")

	if len(m.notes) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width).
			Height(max(m.height-4, 3)).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Recycle Bin is Empty\n\nDeleted notes show up here.")
		b.WriteString(empty)
		return b.String()
	}

	for i, n := range m.notes {
		title := n.Title
		if title == "" {
			title = notebook.DefaultTitle
		}
		line := fmt.Sprintf("%s  %s", title,
			lipgloss.NewStyle().Foreground(theme.ColorGray).Render("deleted "+n.UpdatedAt.Format("Jan 02 15:04")))
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("r restore | X delete forever | esc back"))
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
