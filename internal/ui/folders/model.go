package folders

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/theme"
)

// CloseMsg signals the parent to close the folder overlay.
type CloseMsg struct{}

// SelectMsg applies a folder filter. An empty FolderID shows all notes.
type SelectMsg struct {
	FolderID string
}

// CreateMsg asks the app to create a folder.
type CreateMsg struct {
	Name string
}

// DeleteMsg asks the app to delete a folder. Its notes move to no folder.
type DeleteMsg struct {
	FolderID string
}

type folderMode int

const (
	modeList folderMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	confirm bool
}

// Model is the Bubble Tea model for the folder overlay. Row 0 is the
// "All notes" entry; folder i is row i+1.
type Model struct {
	mode        folderMode
	keys        *keys.KeyMap
	folders     []model.Folder
	counts      map[string]int
	active      string
	selectedIdx int
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates a new folder overlay model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   modeList,
		keys:   k,
		counts: map[string]int{},
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetFolders refreshes the list. notes are the live notes, used for the
// per-folder counts.
func (m *Model) SetFolders(folders []model.Folder, notes []model.Note, active string) {
	m.folders = folders
	m.active = active
	m.counts = make(map[string]int, len(folders))
	for _, n := range notes {
		m.counts[n.FolderID]++
	}
	if m.selectedIdx > len(m.folders) {
		m.selectedIdx = len(m.folders)
	}
	m.mode = modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.mode {
		case modeList:
			return m.handleListKey(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) rows() int {
	return len(m.folders) + 1
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Folders):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % m.rows()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx--
		if m.selectedIdx < 0 {
			m.selectedIdx = m.rows() - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		id := ""
		if m.selectedIdx > 0 {
			id = m.folders[m.selectedIdx-1].ID
		}
		return m, func() tea.Msg { return SelectMsg{FolderID: id} }

	case key.Matches(msg, m.keys.New):
		m.fb.name = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if m.selectedIdx == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Folder name").
				Placeholder("e.g. Work").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	f := m.folders[m.selectedIdx-1]
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete folder %q?", f.Name)).
				Description("Notes in this folder are kept and lose their folder.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeList
		name := strings.TrimSpace(m.fb.name)
		return m, func() tea.Msg { return CreateMsg{Name: name} }
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		m.mode = modeList
		if m.fb.confirm {
			id := m.folders[m.selectedIdx-1].ID
			m.selectedIdx--
			return m, func() tea.Msg { return DeleteMsg{FolderID: id} }
		}
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the folder overlay.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.form.View()
	case modeConfirmDelete:
		return m.confirmForm.View()
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Folders"))
	b.WriteString("\n\n")

	total := 0
	for _, c := range m.counts {
		total += c
	}
	b.WriteString(m.renderRow(0, "🗂  All notes", total, m.active == ""))
	for i, f := range m.folders {
		icon := f.Icon
		if icon == "" {
			icon = "📁"
		}
		label := theme.FolderStyle(f.Color).Render(fmt.Sprintf("%s  %s", icon, f.Name))
		b.WriteString(m.renderRow(i+1, label, m.counts[f.ID], m.active == f.ID))
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("enter filter | n new | d delete | esc close"))
	return b.String()
}

func (m Model) renderRow(idx int, label string, count int, active bool) string {
	marker := "  "
	if active {
		marker = "● "
	}
	line := fmt.Sprintf("%s%s %s", marker, label,
		lipgloss.NewStyle().Foreground(theme.ColorGray).Render(fmt.Sprintf("(%d)", count)))
	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line) + "\n"
	}
	return theme.ListItemStyle.Render(line) + "\n"
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-8, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-8, 10)
}
