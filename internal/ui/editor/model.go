// Package editor is the note editor: a title line, a markdown body with a
// rendered preview, the AI action menu and file attachments.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/theme"
)

// ChangedMsg reports an edit, used to schedule an autosave. NoteID is
// empty while the note has never been saved.
type ChangedMsg struct {
	NoteID string
}

// SaveMsg asks the app to save the note now.
type SaveMsg struct{}

// CloseMsg asks the app to save and leave the editor.
type CloseMsg struct{}

// AttachMsg asks the app to read a file and attach it to the note.
type AttachMsg struct {
	Path string
}

// Action names an AI operation on the open note.
type Action string

const (
	ActionSummary   Action = "summary"
	ActionRewrite   Action = "rewrite"
	ActionTranslate Action = "translate"
	ActionTasks     Action = "tasks"
	ActionTitle     Action = "title"
	ActionTags      Action = "tags"
	ActionFormat    Action = "format"
)

// AIRequestMsg asks the app to run an AI action. Option carries the summary
// type, rewrite mode or target language.
type AIRequestMsg struct {
	Action Action
	Option string
}

type editorMode int

const (
	modeEdit editorMode = iota
	modePreview
	modeAIMenu
	modeAttach
)

type focusField int

const (
	focusTitle focusField = iota
	focusContent
)

// formBindings holds AI menu values on the heap so huh's pointers survive
// model copies.
type formBindings struct {
	action   string
	summary  string
	rewrite  string
	language string
}

// chromeLines is the space used around the text area: title, tags,
// attachments, a gap and the footer.
const chromeLines = 6

// Model is the editor view.
type Model struct {
	mode        editorMode
	focus       focusField
	keys        *keys.KeyMap
	noteID      string
	tags        []string
	attachments []model.Attachment
	title       textinput.Model
	content     textarea.Model
	preview     viewport.Model
	attachInput textinput.Model
	aiForm      *huh.Form
	fb          *formBindings
	spinner     spinner.Model
	busy        string
	notice      string
	width       int
	height      int
}

// New creates an empty editor.
func New(k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.Prompt = ""
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Start typing... use #hashtags to tag the note"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	ai := textinput.New()
	ai.Placeholder = "/path/to/file.png"
	ai.Prompt = "📎 "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorPurple)

	m := Model{
		keys:        k,
		title:       ti,
		content:     ta,
		preview:     viewport.New(width, height),
		attachInput: ai,
		fb:          &formBindings{},
		spinner:     sp,
	}
	m.SetSize(width, height)
	return m
}

// Load opens an existing note for editing.
func (m *Model) Load(n model.Note) tea.Cmd {
	m.reset()
	m.noteID = n.ID
	m.tags = append([]string(nil), n.Tags...)
	m.attachments = append([]model.Attachment(nil), n.Attachments...)
	m.title.SetValue(n.Title)
	m.content.SetValue(n.Content)
	m.focus = focusContent
	return m.applyFocus()
}

// Blank opens the editor for a new note.
func (m *Model) Blank() tea.Cmd {
	m.reset()
	m.focus = focusTitle
	return m.applyFocus()
}

func (m *Model) reset() {
	m.mode = modeEdit
	m.noteID = ""
	m.tags = nil
	m.attachments = nil
	m.title.Reset()
	m.content.Reset()
	m.busy = ""
	m.notice = ""
}

// NoteID is the id of the note being edited, empty until first saved.
func (m Model) NoteID() string {
	return m.noteID
}

// SetNoteID records the id given to a new note by its first save.
func (m *Model) SetNoteID(id string) {
	m.noteID = id
}

// Title returns the current title text.
func (m Model) Title() string {
	return m.title.Value()
}

// Content returns the current body text.
func (m Model) Content() string {
	return m.content.Value()
}

// Empty reports whether there is nothing worth saving.
func (m Model) Empty() bool {
	return strings.TrimSpace(m.title.Value()) == "" && strings.TrimSpace(m.content.Value()) == ""
}

// Draft returns the editable fields for saving.
func (m Model) Draft() notebook.NoteDraft {
	return notebook.NoteDraft{
		Title:       m.title.Value(),
		Content:     m.content.Value(),
		Tags:        append([]string(nil), m.tags...),
		Attachments: append([]model.Attachment(nil), m.attachments...),
	}
}

// Sync adopts the saved note's tags, which may have gained hashtags.
func (m *Model) Sync(n model.Note) {
	m.noteID = n.ID
	m.tags = append([]string(nil), n.Tags...)
}

// SetTitle replaces the title.
func (m *Model) SetTitle(s string) {
	m.title.SetValue(s)
}

// SetContent replaces the body.
func (m *Model) SetContent(s string) {
	m.content.SetValue(s)
}

// AppendContent adds a section after the body, separated by a blank line.
func (m *Model) AppendContent(section string) {
	body := strings.TrimRight(m.content.Value(), "\n")
	if body == "" {
		m.content.SetValue(section)
		return
	}
	m.content.SetValue(body + "\n\n" + section)
}

// SetTags replaces the note's tags.
func (m *Model) SetTags(tags []string) {
	m.tags = append([]string(nil), tags...)
}

// Tags returns the note's tags.
func (m Model) Tags() []string {
	return m.tags
}

// AddAttachment appends a file to the note.
func (m *Model) AddAttachment(a model.Attachment) {
	m.attachments = append(m.attachments, a)
}

// SetBusy shows a spinner with label while an AI call runs. Keys other
// than esc are ignored until ClearBusy.
func (m *Model) SetBusy(label string) tea.Cmd {
	m.busy = label
	m.notice = ""
	return m.spinner.Tick
}

// ClearBusy hides the spinner.
func (m *Model) ClearBusy() {
	m.busy = ""
}

// Busy reports whether an AI call is running.
func (m Model) Busy() bool {
	return m.busy != ""
}

// SetNotice shows a one-line message under the editor.
func (m *Model) SetNotice(s string) {
	m.notice = s
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.busy != "" && !key.Matches(msg, m.keys.Back) {
			return m, nil
		}
		switch m.mode {
		case modePreview:
			return m.handlePreviewKey(msg)
		case modeAIMenu:
			return m.updateAIMenu(msg)
		case modeAttach:
			return m.handleAttachKey(msg)
		}
		return m.handleEditKey(msg)
	}

	switch m.mode {
	case modeAIMenu:
		return m.updateAIMenu(msg)
	case modeEdit:
		return m.forward(msg)
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Save):
		return m, func() tea.Msg { return SaveMsg{} }

	case key.Matches(msg, m.keys.NextPane):
		if m.focus == focusTitle {
			m.focus = focusContent
		} else {
			m.focus = focusTitle
		}
		return m, m.applyFocus()

	case key.Matches(msg, m.keys.Preview):
		m.mode = modePreview
		m.preview.SetContent(m.renderMarkdown())
		m.preview.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.AIMenu):
		if strings.TrimSpace(m.content.Value()) == "" {
			m.notice = "Write something first."
			return m, nil
		}
		m.fb.action = string(ActionSummary)
		m.aiForm = m.buildAIMenu()
		m.mode = modeAIMenu
		return m, m.aiForm.Init()

	case key.Matches(msg, m.keys.Attach):
		m.attachInput.Reset()
		m.mode = modeAttach
		return m, m.attachInput.Focus()
	}

	return m.forward(msg)
}

// forward passes input to the focused field and reports a change when
// the text moved.
func (m Model) forward(msg tea.Msg) (Model, tea.Cmd) {
	beforeTitle, beforeContent := m.title.Value(), m.content.Value()

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.content, cmd = m.content.Update(msg)
	}

	changed := m.title.Value() != beforeTitle || m.content.Value() != beforeContent
	if !changed || m.Empty() {
		return m, cmd
	}
	m.notice = ""
	id := m.noteID
	return m, tea.Batch(cmd, func() tea.Msg { return ChangedMsg{NoteID: id} })
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Preview) || key.Matches(msg, m.keys.Back) {
		m.mode = modeEdit
		return m, m.applyFocus()
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m Model) handleAttachKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeEdit
		m.attachInput.Blur()
		return m, m.applyFocus()
	case "enter":
		path := strings.TrimSpace(m.attachInput.Value())
		m.mode = modeEdit
		m.attachInput.Blur()
		if path == "" {
			return m, m.applyFocus()
		}
		return m, tea.Batch(m.applyFocus(), func() tea.Msg { return AttachMsg{Path: path} })
	}
	var cmd tea.Cmd
	m.attachInput, cmd = m.attachInput.Update(msg)
	return m, cmd
}

func (m Model) buildAIMenu() *huh.Form {
	summaries := make([]huh.Option[string], 0, len(model.SummaryTypes))
	for _, s := range model.SummaryTypes {
		summaries = append(summaries, huh.NewOption(string(s), string(s)))
	}
	rewrites := make([]huh.Option[string], 0, len(model.RewriteModes))
	for _, r := range model.RewriteModes {
		rewrites = append(rewrites, huh.NewOption(string(r), string(r)))
	}
	m.fb.summary = string(model.SummaryShort)
	m.fb.rewrite = string(model.RewriteProfessional)
	m.fb.language = model.TranslateLanguages[0]

	fb := m.fb
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("✨ AI Tools").
				Options(
					huh.NewOption("Summarize", string(ActionSummary)),
					huh.NewOption("Rewrite", string(ActionRewrite)),
					huh.NewOption("Translate", string(ActionTranslate)),
					huh.NewOption("Extract tasks", string(ActionTasks)),
					huh.NewOption("Generate title", string(ActionTitle)),
					huh.NewOption("Suggest tags", string(ActionTags)),
					huh.NewOption("Auto-format", string(ActionFormat)),
				).
				Value(&fb.action),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Summary type").Options(summaries...).Value(&fb.summary),
		).WithHideFunc(func() bool { return fb.action != string(ActionSummary) }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Tone").Options(rewrites...).Value(&fb.rewrite),
		).WithHideFunc(func() bool { return fb.action != string(ActionRewrite) }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Language").Options(huh.NewOptions(model.TranslateLanguages...)...).Value(&fb.language),
		).WithHideFunc(func() bool { return fb.action != string(ActionTranslate) }),
	).WithWidth(min(max(m.width-8, 40), 100)).WithHeight(max(m.height-6, 10))
}

func (m Model) updateAIMenu(msg tea.Msg) (Model, tea.Cmd) {
	if m.aiForm == nil {
		return m, nil
	}
	mdl, cmd := m.aiForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.aiForm = f
	}
	if m.aiForm.State == huh.StateCompleted {
		m.mode = modeEdit
		req := AIRequestMsg{Action: Action(m.fb.action)}
		switch req.Action {
		case ActionSummary:
			req.Option = m.fb.summary
		case ActionRewrite:
			req.Option = m.fb.rewrite
		case ActionTranslate:
			req.Option = m.fb.language
		}
		return m, tea.Batch(m.applyFocus(), func() tea.Msg { return req })
	}
	if m.aiForm.State == huh.StateAborted {
		m.mode = modeEdit
		return m, m.applyFocus()
	}
	return m, cmd
}

func (m *Model) applyFocus() tea.Cmd {
	if m.focus == focusTitle {
		m.content.Blur()
		return m.title.Focus()
	}
	m.title.Blur()
	return m.content.Focus()
}

func (m Model) renderMarkdown() string {
	title := strings.TrimSpace(m.title.Value())
	if title == "" {
		title = notebook.DefaultTitle
	}
	doc := "# " + title + "\n\n" + m.content.Value()

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle()),
		glamour.WithWordWrap(max(m.width-4, 20)),
	)
	if err != nil {
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return out
}

// View renders the editor.
func (m Model) View() string {
	switch m.mode {
	case modePreview:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.preview.View(),
			theme.HelpStyle.Render("ctrl+p edit · ↑/↓ scroll"),
		)
	case modeAIMenu:
		return m.aiForm.View()
	}

	titleLine := lipgloss.NewStyle().Bold(true).Render(m.title.View())
	body := []string{titleLine, m.renderTags(), m.renderAttachments(), "", m.content.View()}
	if m.mode == modeAttach {
		body = append(body, m.attachInput.View())
	} else {
		body = append(body, m.renderFooter())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}

func (m Model) renderTags() string {
	if len(m.tags) == 0 {
		return theme.HelpStyle.Render("no tags")
	}
	parts := make([]string, len(m.tags))
	for i, t := range m.tags {
		parts[i] = theme.TagStyle.Render("#" + t)
	}
	return strings.Join(parts, " ")
}

func (m Model) renderAttachments() string {
	if len(m.attachments) == 0 {
		return ""
	}
	parts := make([]string, len(m.attachments))
	for i, a := range m.attachments {
		name := a.FileName
		if name == "" {
			name = string(a.Kind)
		}
		parts[i] = fmt.Sprintf("📎 %s", name)
	}
	return lipgloss.NewStyle().Foreground(theme.ColorGray).Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter() string {
	if m.busy != "" {
		return m.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.ColorPurple).Render(m.busy)
	}
	if m.notice != "" {
		return theme.NoticeStyle.Render(m.notice)
	}
	return ""
}

// SetSize updates the editor dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.title.Width = max(width-2, 10)
	m.content.SetWidth(max(width, 10))
	m.content.SetHeight(max(height-chromeLines, 3))
	m.preview.Width = width
	m.preview.Height = max(height-1, 3)
	m.attachInput.Width = max(width-4, 10)
}
