// Package admin is the admin console: notebook and account statistics.
package admin

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/theme"
)

// CloseMsg returns to the dashboard.
type CloseMsg struct{}

// Model is the admin console.
type Model struct {
	keys     *keys.KeyMap
	stats    notebook.Stats
	accounts []model.Account
	width    int
	height   int
}

// New creates the admin console.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetData refreshes the figures shown.
func (m *Model) SetData(stats notebook.Stats, accounts []model.Account) {
	m.stats = stats
	m.accounts = accounts
}

// Update handles messages for the admin console.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, nil
}

// premium counts accounts on the paid tier.
func (m Model) premium() int {
	n := 0
	for _, a := range m.accounts {
		if a.Tier == model.TierPremium {
			n++
		}
	}
	return n
}

func card(value, label string, color lipgloss.TerminalColor) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Padding(0, 2).
		Width(20).
		Render(lipgloss.NewStyle().Bold(true).Foreground(color).Render(value) + "\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).Render(label))
}

// View renders the admin console.
func (m Model) View() string {
	s := m.stats
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("📊 Admin Console"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("Overview of this notebook."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprint(len(m.accounts)), "Accounts", theme.ColorBlue),
		card(fmt.Sprint(s.Notes), "Notes", theme.ColorPurple),
		card(humanize.Bytes(uint64(s.AttachmentBytes)), "Attachment storage", theme.ColorYellow),
		card(fmt.Sprintf("%d/%d", s.OpenTasks, s.Tasks), "Open tasks", theme.ColorMagenta),
	))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Pinned notes", fmt.Sprint(s.Pinned)},
		{"In recycle bin", fmt.Sprint(s.Deleted)},
		{"Folders", fmt.Sprint(s.Folders)},
		{"Distinct tags", fmt.Sprint(s.Tags)},
		{"Attachments", humanize.Comma(int64(s.Attachments))},
		{"Pro accounts", fmt.Sprint(m.premium())},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-18s %s\n", r[0], lipgloss.NewStyle().Bold(true).Render(r[1])))
	}
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("esc back"))
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
