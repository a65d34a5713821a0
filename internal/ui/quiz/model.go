package quiz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/study"
	"github.com/nhle/smartnote/internal/theme"
)

// CloseMsg returns to the dashboard.
type CloseMsg struct{}

// OpenFlashcardsMsg switches to the flashcards generated with the quiz.
type OpenFlashcardsMsg struct{}

// OpenMindMapMsg switches to the mind map generated with the quiz.
type OpenMindMapMsg struct{}

// Model is the quiz screen.
type Model struct {
	keys      *keys.KeyMap
	session   *study.QuizSession
	questions []model.QuizQuestion
	source    string
	cursor    int
	feedback  string
	bar       progress.Model
	width     int
	height    int
}

// New creates an empty quiz screen.
func New(k *keys.KeyMap, width, height int) Model {
	bar := progress.New(progress.WithSolidFill(theme.ColorIndigo.Dark), progress.WithoutPercentage())
	bar.Width = min(max(width-8, 20), 60)
	return Model{
		keys:    k,
		session: study.NewQuiz(nil),
		bar:     bar,
		width:   width,
		height:  height,
	}
}

// Start begins a session over questions generated from the note titled
// source.
func (m *Model) Start(questions []model.QuizQuestion, source string) {
	m.questions = questions
	m.source = source
	m.session = study.NewQuiz(questions)
	m.cursor = 0
	m.feedback = ""
}

// Update handles messages for the quiz screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(km, m.keys.Study):
		return m, func() tea.Msg { return OpenFlashcardsMsg{} }
	case km.String() == "m":
		return m, func() tea.Msg { return OpenMindMapMsg{} }
	}

	if m.session.Finished() {
		if key.Matches(km, m.keys.Reset) || km.String() == "r" {
			m.Start(m.questions, m.source)
		}
		return m, nil
	}

	cur, _ := m.session.Current()
	switch {
	case key.Matches(km, m.keys.Down):
		if !m.session.Answered() && len(cur.Options) > 0 {
			m.cursor = (m.cursor + 1) % len(cur.Options)
		}
	case key.Matches(km, m.keys.Up):
		if !m.session.Answered() && len(cur.Options) > 0 {
			m.cursor = (m.cursor - 1 + len(cur.Options)) % len(cur.Options)
		}
	case len(km.Runes) == 1 && km.Runes[0] >= '1' && km.Runes[0] <= '9':
		if i := int(km.Runes[0] - '1'); !m.session.Answered() && i < len(cur.Options) {
			m.cursor = i
		}
	case key.Matches(km, m.keys.Select):
		m.advance(cur)
	}
	return m, nil
}

// advance submits the highlighted option, or moves on once the question
// has been answered.
func (m *Model) advance(cur model.QuizQuestion) {
	if !m.session.Answered() {
		m.session.Select(m.cursor)
		correct, err := m.session.Submit()
		if err != nil {
			return
		}
		if correct {
			m.feedback = "✅ Correct!"
		} else {
			answer := ""
			if i := cur.CorrectAnswerIndex; i >= 0 && i < len(cur.Options) {
				answer = cur.Options[i]
			}
			m.feedback = "❌ Incorrect. The answer is: " + answer
		}
		return
	}
	if err := m.session.Next(); err == nil {
		m.cursor = 0
		m.feedback = ""
	}
}

// View renders the quiz screen.
func (m Model) View() string {
	header := theme.TitleStyle.Render("🎓 Quiz")
	if m.source != "" {
		header += lipgloss.NewStyle().Foreground(theme.ColorGray).Render("  from " + m.source)
	}

	if m.session.Len() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			theme.HelpStyle.Render("No questions could be generated for this note."),
			"", theme.HelpStyle.Render("s flashcards | m mind map | esc back"))
	}
	if m.session.Finished() {
		return m.renderResult(header)
	}

	cur, _ := m.session.Current()
	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(m.bar.ViewAs(m.session.Progress()))
	b.WriteString(fmt.Sprintf("  %d/%d\n\n", m.session.Index()+1, m.session.Len()))
	b.WriteString(lipgloss.NewStyle().Bold(true).Width(max(m.width-4, 20)).Render(cur.Question))
	b.WriteString("\n\n")

	for i, opt := range cur.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		switch {
		case m.session.Answered() && i == cur.CorrectAnswerIndex:
			line = lipgloss.NewStyle().Foreground(theme.ColorGreen).Bold(true).Render(line)
		case m.session.Answered() && i == m.session.Selected():
			line = lipgloss.NewStyle().Foreground(theme.ColorRed).Render(line)
		}
		if i == m.cursor && !m.session.Answered() {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.feedback != "" {
		b.WriteString("\n" + theme.NoticeStyle.Render(m.feedback) + "\n")
		if cur.Explanation != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Width(max(m.width-4, 20)).Render(cur.Explanation) + "\n")
		}
	}

	hint := "enter submit"
	if m.session.Answered() {
		hint = "enter next"
		if m.session.IsLast() {
			hint = "enter see results"
		}
	}
	b.WriteString("\n" + theme.HelpStyle.Render(hint+" | 1-4 choose | s flashcards | m mind map | esc back"))
	return b.String()
}

func (m Model) renderResult(header string) string {
	pct := m.session.Percent()
	verdict := "Keep studying!"
	switch {
	case pct == 100:
		verdict = "Perfect score! 🏆"
	case pct >= 70:
		verdict = "Great job!"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorIndigo).Render(
			fmt.Sprintf("You scored %d/%d (%d%%)", m.session.Score(), m.session.Len(), pct)),
		verdict,
		"",
		theme.HelpStyle.Render("r retake | s flashcards | m mind map | esc back"),
	)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.bar.Width = min(max(width-8, 20), 60)
}
