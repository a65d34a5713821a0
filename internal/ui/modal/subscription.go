package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/theme"
)

// UpgradeMsg asks the app to move the user to the Pro tier.
type UpgradeMsg struct{}

// SubscriptionClosedMsg dismisses the plan picker.
type SubscriptionClosedMsg struct{}

// UpgradedNotice is shown once the upgrade succeeds.
const UpgradedNotice = "Welcome to Premium! 🌟"

var (
	freeFeatures = []feature{
		{true, "50 Notes"},
		{true, "Basic AI Summary"},
		{false, "No Chat Interface"},
		{false, "Local Only"},
	}
	proFeatures = []feature{
		{true, "Unlimited Notes"},
		{true, "Chat with Notes (RAG)"},
		{true, "Cloud Sync & Backup"},
		{true, "Voice Transcription"},
	}
)

type feature struct {
	included bool
	label    string
}

// Subscription is the plan picker.
type Subscription struct {
	premium bool
	width   int
}

// NewSubscription creates the plan picker. premium marks the Pro plan as
// the current one.
func NewSubscription(premium bool, width int) Subscription {
	return Subscription{premium: premium, width: width}
}

// Update handles the picker's keys: u upgrades, esc closes.
func (s Subscription) Update(msg tea.Msg) (Subscription, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch km.String() {
	case "u", "enter":
		if s.premium {
			return s, func() tea.Msg { return SubscriptionClosedMsg{} }
		}
		return s, func() tea.Msg { return UpgradeMsg{} }
	case "esc", "q":
		return s, func() tea.Msg { return SubscriptionClosedMsg{} }
	}
	return s, nil
}

func plan(name, price, note string, features []feature, current bool, accent lipgloss.TerminalColor) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accent).Render(name))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(price))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(note))
	b.WriteString("\n\n")
	for _, f := range features {
		if f.included {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("✓ "))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render("✗ "))
		}
		b.WriteString(f.label)
		b.WriteString("\n")
	}
	if current {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render("Current plan"))
	}
	border := theme.ColorBorder
	if current {
		border = theme.ColorIndigo
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 2).
		Width(28).
		Render(b.String())
}

// View renders both plans side by side.
func (s Subscription) View() string {
	plans := lipgloss.JoinHorizontal(lipgloss.Top,
		plan("Free", "$0", "Forever free", freeFeatures, !s.premium, theme.ColorGray),
		" ",
		plan("Pro", "$9/mo", "Billed monthly", proFeatures, s.premium, theme.ColorIndigo),
	)

	hint := "u upgrade now | esc close"
	if s.premium {
		hint = "esc close"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Unlock Your Second Brain."),
		theme.HelpStyle.Render("Choose your plan. Cancel anytime."),
		"",
		plans,
		"",
		theme.HelpStyle.Render(hint),
	)
	return body
}

// SetWidth updates the available width.
func (s *Subscription) SetWidth(w int) {
	s.width = w
}
