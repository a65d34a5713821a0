package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/theme"
)

// Layout manages the terminal frame: a one-line header, the active screen
// and a one-line status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// RenderHeader renders the top bar with the screen title on the left and
// the session summary on the right.
func (l Layout) RenderHeader(title, session string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	sessionRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(session)

	gap := max(l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(sessionRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, filler, sessionRendered)
}

// RenderStatusBar renders the bottom bar. An alert replaces the key hints
// when present.
func (l Layout) RenderStatusBar(hints, alert string) string {
	style := theme.StatusBarStyle
	text := hints
	if alert != "" {
		style = style.Foreground(theme.ColorYellow).Bold(true)
		text = alert
	}
	rendered := style.Render(text)

	gap := max(l.Width-lipgloss.Width(rendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar. Content is padded to fill the
// space between them.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	body := lipgloss.NewStyle().
		Width(l.ContentWidth()).
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

// RenderModal centers a bordered box in the content area, used for the
// tutorial, upgrade and folder overlays.
func (l Layout) RenderModal(content string) string {
	box := theme.PanelStyle.
		BorderForeground(theme.ColorIndigo).
		Width(min(l.ContentWidth()-4, 72)).
		Render(content)

	return lipgloss.Place(l.ContentWidth(), l.ContentHeight(), lipgloss.Center, lipgloss.Center, box)
}
