package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/theme"
)

// CloseMsg signals the parent to close the chat screen.
type CloseMsg struct{}

// SendMsg asks the app to answer a question from the notes.
type SendMsg struct {
	Query string
}

// ResetMsg asks the app to forget the conversation.
type ResetMsg struct{}

// displayMessage represents a message rendered in the conversation viewport.
type displayMessage struct {
	Role    string
	Content string
	Failed  bool
}

// Model is the chat screen: ask questions answered from your notes.
type Model struct {
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	messages []displayMessage
	waiting  bool
	keys     *keys.KeyMap
	width    int
	height   int
	noAPIKey bool
}

// New creates the chat screen.
func New(k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything about your notes..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		input:    ta,
		viewport: viewport.New(width, 4),
		spinner:  sp,
		keys:     k,
	}
	m.SetSize(width, height)
	m.refreshViewport()
	return m
}

// SetAvailable switches between the conversation and the setup hint.
func (m *Model) SetAvailable(ok bool) {
	m.noAPIKey = !ok
}

// Waiting reports whether a question is being answered.
func (m Model) Waiting() bool {
	return m.waiting
}

// Answer appends the AI's reply. failed marks a fallback answer.
func (m *Model) Answer(text string, failed bool) {
	m.waiting = false
	m.messages = append(m.messages, displayMessage{Role: "AI", Content: text, Failed: failed})
	m.refreshViewport()
}

// Clear forgets the conversation on screen.
func (m *Model) Clear() {
	m.messages = m.messages[:0]
	m.waiting = false
	m.input.Reset()
	m.refreshViewport()
}

// Update handles messages for the chat screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, func() tea.Msg { return CloseMsg{} }

	case "ctrl+l":
		if m.waiting {
			return m, nil
		}
		m.messages = m.messages[:0]
		m.input.Reset()
		m.refreshViewport()
		return m, func() tea.Msg { return ResetMsg{} }

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.noAPIKey || m.waiting {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.messages = append(m.messages, displayMessage{Role: "You", Content: text})
		m.waiting = true
		m.refreshViewport()
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return SendMsg{Query: text} })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshViewport re-renders the conversation content and scrolls to bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	if len(m.messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("Ask me about your notes. I answer from what you've written, " +
				"so try \"what did I decide about the launch?\"")
	}

	roleStyle := lipgloss.NewStyle().Bold(true)
	userStyle := roleStyle.Foreground(theme.ColorBlue)
	aiStyle := roleStyle.Foreground(theme.ColorPurple)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle()),
		glamour.WithWordWrap(max(m.width-6, 20)),
	)

	var sections []string
	for _, msg := range m.messages {
		if msg.Role == "You" {
			sections = append(sections, userStyle.Render("You:"), msg.Content, "")
			continue
		}
		sections = append(sections, aiStyle.Render("✨ AI:"))
		body := msg.Content
		switch {
		case msg.Failed:
			body = theme.ErrorStyle.Render(body)
		case err == nil:
			if out, rerr := r.Render(body); rerr == nil {
				body = strings.TrimRight(out, "\n")
			}
		}
		sections = append(sections, body, "")
	}

	if m.waiting {
		sections = append(sections, m.spinner.View()+" "+theme.HelpStyle.Render("Thinking..."))
	}
	return strings.Join(sections, "\n")
}

// View renders the chat screen.
func (m Model) View() string {
	if m.noAPIKey {
		return m.renderNoAPIKey()
	}

	separator := lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(
		strings.Repeat("─", max(min(m.width-2, 80), 0)),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render("💬 Chat with your notes"),
		m.viewport.View(),
		separator,
		m.input.View(),
		theme.HelpStyle.Render("enter send | ctrl+l new conversation | pgup/pgdown scroll | esc back"),
	)
}

// renderNoAPIKey shows a message when no AI provider is configured.
func (m Model) renderNoAPIKey() string {
	style := lipgloss.NewStyle().
		Width(max(m.width-4, 20)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	msg := "Chat needs an AI provider.\n\n" +
		"Open Settings (,) and enter an API key for Gemini, OpenAI or Anthropic,\n" +
		"or export GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY.\n\n" +
		"Press Esc to go back."

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Height(max(m.height-4, 5)).
		Render(style.Render(msg))
}

// SetSize updates the chat dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(width-2, 10))
	m.viewport.Width = width
	m.viewport.Height = max(height-8, 4)
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
