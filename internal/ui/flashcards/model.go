package flashcards

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/study"
	"github.com/nhle/smartnote/internal/theme"
)

// CloseMsg returns to the previous study screen.
type CloseMsg struct{}

// Model is the flashcard study screen.
type Model struct {
	keys   *keys.KeyMap
	deck   *study.Deck
	width  int
	height int
}

// New creates an empty flashcard screen.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, deck: study.NewDeck(nil), width: width, height: height}
}

// SetCards replaces the deck.
func (m *Model) SetCards(cards []model.Flashcard) {
	m.deck = study.NewDeck(cards)
}

// Update handles messages for the flashcard screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(km, m.keys.Flip), key.Matches(km, m.keys.Select):
		m.deck.Flip()
	case key.Matches(km, m.keys.Right), key.Matches(km, m.keys.Down):
		m.deck.Next()
	case key.Matches(km, m.keys.Left), key.Matches(km, m.keys.Up):
		m.deck.Prev()
	case key.Matches(km, m.keys.Done):
		if c, ok := m.deck.Current(); ok {
			m.deck.SetMastered(!c.Mastered)
		}
	}
	return m, nil
}

// View renders the top card.
func (m Model) View() string {
	title := theme.TitleStyle.Render("🃏 Flashcards")
	card, ok := m.deck.Current()
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			theme.HelpStyle.Render("No flashcards yet. Generate a quiz from the dashboard to create some."),
			"", theme.HelpStyle.Render("esc back"))
	}

	side, text, color := "FRONT", card.Front, theme.ColorIndigo
	if m.deck.Flipped() {
		side, text, color = "BACK", card.Back, theme.ColorGreen
	}
	status := ""
	if card.Mastered {
		status = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("  ✓ mastered")
	}

	cardWidth := min(max(m.width-8, 30), 70)
	face := theme.PanelStyle.
		BorderForeground(color).
		Width(cardWidth).
		Height(max(min(m.height-10, 10), 5)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Foreground(color).Bold(true).Render(side),
			"",
			text,
		))

	counter := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		fmt.Sprintf("Card %d of %d · %d left to master", m.deck.Index()+1, m.deck.Len(), m.deck.Remaining()))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		counter+status,
		"",
		face,
		"",
		theme.HelpStyle.Render("space flip | ←/→ previous/next | x mastered | esc back"),
	)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
