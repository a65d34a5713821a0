package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/router"
)

// handleKey routes a key press: overlays and modals first, then global
// shortcuts, then the active screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
			m.overlay = overlayNone
		}
		return m, nil
	case overlayCommand, overlayFolders:
		return m.updateActiveView(msg)
	}

	if m.router.ShowSubscription() || m.tutorialVisible() || !m.acceptsGlobalKeys() {
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.overlay = overlayCommand
		return m, m.commandView.Focus()
	}

	if m.router.Current() != router.ViewDashboard {
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Folders):
		m.openFolders()
		return m, nil
	case key.Matches(msg, m.keys.RecycleBin):
		return m, m.navigate(router.ViewRecycleBin)
	case key.Matches(msg, m.keys.Chat):
		return m, m.openChat()
	case key.Matches(msg, m.keys.Focus):
		return m, m.navigate(router.ViewFocus)
	case key.Matches(msg, m.keys.Organize):
		return m, m.runOrganizer()
	case key.Matches(msg, m.keys.Study):
		return m, m.runStudy()
	case key.Matches(msg, m.keys.Settings):
		return m, m.navigate(router.ViewSettings)
	case key.Matches(msg, m.keys.Insight):
		return m, m.runInsight()
	case key.Matches(msg, m.keys.Upgrade):
		m.openSubscription()
		return m, nil
	}
	return m.updateActiveView(msg)
}

// tutorialVisible reports whether the tutorial covers the dashboard.
func (m Model) tutorialVisible() bool {
	return m.router.Current() == router.ViewDashboard && m.router.ShowTutorial()
}

// acceptsGlobalKeys is false while the active screen is taking text input.
func (m Model) acceptsGlobalKeys() bool {
	switch m.router.Current() {
	case router.ViewDashboard:
		return !m.dashboard.Searching()
	case router.ViewFocus:
		return !m.focus.Adding()
	case router.ViewQuiz, router.ViewStudy, router.ViewMindMap, router.ViewSmartView,
		router.ViewUsers, router.ViewAdmin:
		return true
	}
	return false
}
