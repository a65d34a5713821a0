// Package dashboard renders the note list: pinned notes first, a live
// search box and the AI insight line.
package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
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

// NewNoteMsg asks the app to open an empty editor.
type NewNoteMsg struct{}

// DeleteNoteMsg moves a note to the recycle bin.
type DeleteNoteMsg struct {
	NoteID string
}

// TogglePinMsg pins or unpins a note.
type TogglePinMsg struct {
	NoteID string
}

// headerLines is the space taken by the title block above the list.
const headerLines = 4

// Model is the dashboard view component.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	notes       []model.Note
	folders     map[string]model.Folder
	folderName  string
	query       string
	searchMode  bool
	searchInput textinput.Model
	insight     string
	openTasks   int
	width       int
	height      int
}

// New creates a new dashboard model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, NoteDelegate{}, width, height-headerLines)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search your notes..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		folders:     map[string]model.Folder{},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetNotes replaces the notes shown, which the caller has already limited
// to the live notes of the active folder.
func (m *Model) SetNotes(notes []model.Note, folders []model.Folder, activeFolder string) tea.Cmd {
	m.notes = notes
	m.folders = make(map[string]model.Folder, len(folders))
	for _, f := range folders {
		m.folders[f.ID] = f
	}
	m.folderName = ""
	if f, ok := m.folders[activeFolder]; ok {
		m.folderName = f.Name
	}
	return m.refresh()
}

// SetInsight shows the AI insight line.
func (m *Model) SetInsight(text string) {
	m.insight = text
}

// SetOpenTasks shows the number of open tasks in the header.
func (m *Model) SetOpenTasks(n int) {
	m.openTasks = n
}

// Searching reports whether the search box has focus, in which case the
// app must not treat letters as shortcuts.
func (m Model) Searching() bool {
	return m.searchMode
}

// Query is the active search text.
func (m Model) Query() string {
	return m.query
}

// Shown returns the notes currently listed, pinned first.
func (m Model) Shown() []model.Note {
	items := m.list.Items()
	out := make([]model.Note, 0, len(items))
	for _, it := range items {
		out = append(out, it.(NoteItem).Note)
	}
	return out
}

// Selected returns the note under the cursor.
func (m Model) Selected() (model.Note, bool) {
	ni, ok := m.list.SelectedItem().(NoteItem)
	if !ok {
		return model.Note{}, false
	}
	return ni.Note, true
}

func (m *Model) refresh() tea.Cmd {
	pinned, others := notebook.SplitPinned(notebook.SearchNotes(m.notes, m.query))
	items := make([]list.Item, 0, len(pinned)+len(others))
	for _, group := range [][]model.Note{pinned, others} {
		for _, n := range group {
			item := NoteItem{Note: n}
			if f, ok := m.folders[n.FolderID]; ok {
				item.Folder = &f
			}
			items = append(items, item)
		}
	}
	return m.list.SetItems(items)
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys filters as the user types; enter keeps the filter and
// esc clears it.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.query = ""
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if q := m.searchInput.Value(); q != m.query {
		m.query = q
		return m, tea.Batch(cmd, m.refresh())
	}
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if n, ok := m.Selected(); ok {
			return m, func() tea.Msg { return OpenNoteMsg{NoteID: n.ID} }
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return NewNoteMsg{} }

	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteNoteMsg{NoteID: n.ID} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Pin):
		if n, ok := m.Selected(); ok {
			return m, func() tea.Msg { return TogglePinMsg{NoteID: n.ID} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		return m, m.searchInput.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	heading := "My Notes"
	if m.folderName != "" {
		heading = m.folderName
	}
	summary := fmt.Sprintf("You have %d notes", len(m.notes))
	if m.openTasks > 0 {
		summary += fmt.Sprintf(" · %d open tasks", m.openTasks)
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(heading)+"  "+
			lipgloss.NewStyle().Foreground(theme.ColorGray).Render(summary),
		m.renderInsight(),
		m.renderSearch(),
		"",
	)

	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderEmptyState())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

func (m Model) renderInsight() string {
	if m.insight == "" {
		return theme.HelpStyle.Render("press i for an AI insight about your notes")
	}
	return lipgloss.NewStyle().Foreground(theme.ColorPurple).Render("✨ " + m.insight)
}

func (m Model) renderSearch() string {
	if m.searchMode {
		return m.searchInput.View()
	}
	if m.query != "" {
		return theme.NoticeStyle.Render(fmt.Sprintf("filter: %q (/ to edit, esc in search to clear)", m.query))
	}
	return ""
}

// renderEmptyState shows guidance text when no notes match.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-headerLines, 3)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No notes found.\nTry a different search.")
	}
	return style.Render("No notes found.\n\nPress n to create your first note.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-headerLines, 1))
	m.searchInput.Width = width - 4
}
