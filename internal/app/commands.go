package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/router"
)

// execCommand runs a command typed into the palette.
func (m *Model) execCommand(line string) tea.Cmd {
	m.overlay = overlayNone
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return nil
	}

	if !m.router.SignedIn() {
		if fields[0] == "quit" || fields[0] == "q" {
			m.shutdown()
			return tea.Quit
		}
		m.alert = "Sign in first."
		return nil
	}

	switch fields[0] {
	case "new":
		return m.newNote()
	case "notes", "home", "dashboard":
		return m.navigate(router.ViewDashboard)
	case "folders":
		cmd := m.navigate(router.ViewDashboard)
		m.openFolders()
		return cmd
	case "recycle", "bin", "trash":
		return m.navigate(router.ViewRecycleBin)
	case "chat":
		return m.openChat()
	case "focus":
		return m.navigate(router.ViewFocus)
	case "organize":
		return m.fromDashboard(m.runOrganizer)
	case "study", "quiz":
		return m.fromDashboard(m.runStudy)
	case "mindmap":
		return m.navigate(router.ViewMindMap)
	case "insight":
		return m.fromDashboard(m.runInsight)
	case "settings":
		return m.navigate(router.ViewSettings)
	case "users":
		return m.navigate(router.ViewUsers)
	case "admin":
		return m.navigate(router.ViewAdmin)
	case "upgrade":
		m.openSubscription()
		return nil
	case "tutorial":
		return m.replayTutorial()
	case "theme":
		if len(fields) < 2 {
			m.alert = "Usage: theme light|dark|amoled|system"
			return nil
		}
		t := model.ParseTheme(fields[1])
		if string(t) != fields[1] {
			m.alert = "Unknown theme " + fields[1] + "."
			return nil
		}
		m.setTheme(t)
		m.persistConfig()
		m.notice = "Theme set to " + string(t) + "."
		return nil
	case "logout":
		return m.logout()
	case "quit", "q":
		m.shutdown()
		return tea.Quit
	}
	m.alert = "Unknown command: " + fields[0]
	return nil
}

// fromDashboard runs an AI action whose results replace the dashboard.
// The ticket is taken on the dashboard so the answer is not dropped.
func (m *Model) fromDashboard(run func() tea.Cmd) tea.Cmd {
	var nav tea.Cmd
	if m.router.Current() != router.ViewDashboard {
		nav = m.navigate(router.ViewDashboard)
	}
	return tea.Batch(nav, run())
}
