package onboarding

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/theme"
)

// CompleteMsg is emitted when the user finishes or skips the slides.
type CompleteMsg struct{}

type slide struct {
	icon  string
	title string
	body  string
}

var slides = []slide{
	{
		icon:  "🧠",
		title: "Smart Organization",
		body:  "Let AI group your notes into topics, tag them and surface insights.",
	},
	{
		icon:  "🎓",
		title: "Test Your Knowledge",
		body:  "Turn any note into a quiz, flashcards or a mind map in seconds.",
	},
	{
		icon:  "🔒",
		title: "Secure & Synced",
		body:  "Your notes stay on this machine, with export and cloud backup when you want it.",
	},
}

// Model is the onboarding slideshow.
type Model struct {
	keys   *keys.KeyMap
	index  int
	width  int
	height int
}

// New creates the slideshow on its first slide.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Index is the visible slide.
func (m Model) Index() int {
	return m.index
}

// Update handles messages for the slideshow.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Right), key.Matches(km, m.keys.Select):
		if m.index == len(slides)-1 {
			return m, func() tea.Msg { return CompleteMsg{} }
		}
		m.index++
	case key.Matches(km, m.keys.Left):
		if m.index > 0 {
			m.index--
		}
	case km.String() == "s", key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CompleteMsg{} }
	}
	return m, nil
}

// View renders the current slide.
func (m Model) View() string {
	s := slides[m.index]

	dots := make([]string, len(slides))
	for i := range slides {
		if i == m.index {
			dots[i] = lipgloss.NewStyle().Foreground(theme.ColorIndigo).Render("●")
		} else {
			dots[i] = lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render("○")
		}
	}

	next := "→ next"
	if m.index == len(slides)-1 {
		next = "enter get started"
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Render(s.icon),
		"",
		theme.TitleStyle.Foreground(theme.ColorIndigo).Render(s.title),
		lipgloss.NewStyle().Width(min(m.width-8, 60)).Align(lipgloss.Center).Foreground(theme.ColorGray).Render(s.body),
		"",
		strings.Join(dots, " "),
		"",
		theme.HelpStyle.Render(next+" · ← back · s skip"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
