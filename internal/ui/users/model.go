// Package users lists the accounts registered on this device.
package users

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/theme"
)

// CloseMsg returns to the dashboard.
type CloseMsg struct{}

// Model is the users screen.
type Model struct {
	keys   *keys.KeyMap
	table  table.Model
	count  int
	width  int
	height int
}

// New creates an empty users screen.
func New(k *keys.KeyMap, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(theme.ColorIndigo)
	s.Selected = s.Selected.Foreground(theme.ColorWhite).Background(theme.ColorIndigo)
	t.SetStyles(s)

	m := Model{keys: k, table: t}
	m.SetSize(width, height)
	return m
}

func columns(width int) []table.Column {
	user := max(width-58, 16)
	return []table.Column{
		{Title: "User", Width: user},
		{Title: "Email", Width: 26},
		{Title: "Plan", Width: 8},
		{Title: "Status", Width: 8},
		{Title: "Joined", Width: 12},
	}
}

// SetAccounts fills the table. The signed-in user is marked active.
func (m *Model) SetAccounts(accounts []model.Account, current model.User, now time.Time) {
	rows := make([]table.Row, 0, len(accounts))
	for _, a := range accounts {
		tier := a.Tier
		if tier == "" {
			tier = model.TierFree
		}
		status := "Offline"
		if strings.EqualFold(a.Email, current.Email) {
			status = "Active"
		}
		rows = append(rows, table.Row{a.Username, a.Email, string(tier), status, joined(a.CreatedAt, now)})
	}
	m.count = len(rows)
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// joined formats an account's age.
func joined(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Update handles messages for the users screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		return m, func() tea.Msg { return CloseMsg{} }
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the users screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("👥 Users"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("Accounts registered on this device."))
	b.WriteString("\n\n")
	if m.count == 0 {
		b.WriteString(theme.HelpStyle.Render("No accounts yet."))
	} else {
		b.WriteString(theme.BorderStyle.Render(m.table.View()))
	}
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("↑/↓ move | esc back"))
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-8, 3))
}
