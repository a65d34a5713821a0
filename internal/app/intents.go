package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/router"
	"github.com/nhle/smartnote/internal/ui/admin"
	"github.com/nhle/smartnote/internal/ui/auth"
	"github.com/nhle/smartnote/internal/ui/chat"
	"github.com/nhle/smartnote/internal/ui/command"
	"github.com/nhle/smartnote/internal/ui/dashboard"
	"github.com/nhle/smartnote/internal/ui/editor"
	"github.com/nhle/smartnote/internal/ui/flashcards"
	"github.com/nhle/smartnote/internal/ui/focusview"
	"github.com/nhle/smartnote/internal/ui/folders"
	"github.com/nhle/smartnote/internal/ui/mindmap"
	"github.com/nhle/smartnote/internal/ui/modal"
	"github.com/nhle/smartnote/internal/ui/onboarding"
	"github.com/nhle/smartnote/internal/ui/quiz"
	"github.com/nhle/smartnote/internal/ui/recyclebin"
	"github.com/nhle/smartnote/internal/ui/settings"
	"github.com/nhle/smartnote/internal/ui/smartview"
	"github.com/nhle/smartnote/internal/ui/users"
)

// handleIntent applies the messages screens emit and the results of
// background commands. It reports false for messages it does not own,
// which go to the active screen.
func (m Model) handleIntent(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	ctx := context.Background()
	var cmd tea.Cmd

	switch msg := msg.(type) {
	// Dashboard
	case dashboard.OpenNoteMsg:
		cmd = m.openNote(msg.NoteID)
	case dashboard.NewNoteMsg:
		cmd = m.newNote()
	case dashboard.DeleteNoteMsg:
		m.deleteNote(msg.NoteID)
		cmd = m.refreshCmd()
	case dashboard.TogglePinMsg:
		m.togglePin(msg.NoteID)
		cmd = m.refreshCmd()

	// Editor
	case editor.ChangedMsg:
		m.scheduleSave()
	case editor.SaveMsg:
		m.saveEditor()
		m.editor.SetNotice("Saved")
	case editor.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)
	case editor.AttachMsg:
		cmd = m.attachFile(msg.Path)
	case editor.AIRequestMsg:
		cmd = m.runEditorAI(msg)

	// Signed out
	case onboarding.CompleteMsg:
		cmd = m.completeOnboarding()
	case auth.LoginMsg:
		cmd = m.login(msg)
	case auth.RegisterMsg:
		cmd = m.register(msg)
	case auth.ResetMsg:
		cmd = m.requestReset(msg)
	case auth.SwitchMsg:
		cmd = m.switchAuth(msg.Screen)
	case signedInMsg:
		cmd = m.signedIn(msg)

	// Modals
	case modal.TutorialDoneMsg:
		m.tutorialDone()
	case modal.UpgradeMsg:
		m.upgrade()
	case modal.SubscriptionClosedMsg:
		m.router.SetSubscriptionModal(false)

	// Folders overlay
	case folders.SelectMsg:
		m.selectFolder(msg.FolderID)
		cmd = m.refreshCmd()
	case folders.CreateMsg:
		m.createFolder(msg.Name)
		cmd = m.refreshCmd()
	case folders.DeleteMsg:
		m.deleteFolder(msg.FolderID)
		cmd = m.refreshCmd()
	case folders.CloseMsg:
		m.overlay = overlayNone

	// Recycle bin
	case recyclebin.RestoreMsg:
		m.restoreNote(msg.NoteID)
		cmd = m.refreshCmd()
	case recyclebin.PurgeMsg:
		m.purgeNote(msg.NoteID)
		cmd = m.refreshCmd()
	case recyclebin.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)

	// Focus
	case focusview.AddTaskMsg:
		m.notebook.AddTask(ctx, msg.Content, msg.Priority)
		cmd = m.refreshCmd()
	case focusview.ToggleTaskMsg:
		if err := m.notebook.ToggleTask(ctx, msg.TaskID); err != nil {
			m.alert = err.Error()
		}
		cmd = m.refreshCmd()
	case focusview.DeleteTaskMsg:
		if err := m.notebook.DeleteTask(ctx, msg.TaskID); err != nil {
			m.alert = err.Error()
		}
		cmd = m.refreshCmd()
	case focusview.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)

	// Study
	case quiz.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)
	case quiz.OpenFlashcardsMsg:
		cmd = m.navigate(router.ViewStudy)
	case quiz.OpenMindMapMsg:
		cmd = m.navigate(router.ViewMindMap)
	case flashcards.CloseMsg:
		cmd = m.navigate(router.ViewQuiz)
	case mindmap.CloseMsg:
		cmd = m.navigate(router.ViewQuiz)

	// Smart view
	case smartview.OpenNoteMsg:
		cmd = m.openNote(msg.NoteID)
	case smartview.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)

	// Chat
	case chat.SendMsg:
		cmd = m.askChat(msg.Query)
	case chat.ResetMsg:
		m.resetChat()
	case chat.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)

	case users.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)
	case admin.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)

	// Settings
	case settings.CloseMsg:
		cmd = m.navigate(router.ViewDashboard)
	case settings.ThemeMsg:
		m.changeTheme(msg.Theme)
	case settings.SaveAIMsg:
		cmd = m.saveAI(msg)
	case settings.SaveMailinMsg:
		cmd = m.saveMailin(msg)
	case settings.SaveBackupMsg:
		m.saveBackup(msg)
	case settings.ImportMailMsg:
		cmd = m.fetchMail()
	case settings.BackupNowMsg:
		cmd = m.backupNow()
	case settings.ExportMsg:
		cmd = m.exportNotes(msg.Dir)
	case settings.ImportMsg:
		cmd = m.readImport(msg.Root, msg.Glob)
	case settings.TutorialMsg:
		cmd = m.replayTutorial()
	case settings.UpgradeMsg:
		m.openSubscription()
	case settings.LogoutMsg:
		cmd = m.logout()

	// Command palette
	case command.CommandMsg:
		cmd = m.execCommand(string(msg))
	case command.CancelMsg:
		m.overlay = overlayNone

	// Background results
	case organizerMsg:
		cmd = m.organizerDone(msg)
	case studyMsg:
		cmd = m.studyDone(msg)
	case insightMsg:
		m.insightDone(msg)
	case chatAnswerMsg:
		m.chatDone(msg)
	case editorAIMsg:
		cmd = m.editorAIDone(msg)
	case attachMsg:
		m.attachDone(msg)
	case gatewayMsg:
		cmd = m.gatewayReady(msg)
	case mailFetchedMsg:
		cmd = m.mailFetched(msg)
	case mailSeenMsg:
		m.mailSeen(msg)
	case pollerMsg:
		cmd = m.pollerReady(msg)
	case mailPolledMsg:
		cmd = m.mailPolled(msg)
	case backupDoneMsg:
		m.backupDone(msg)
	case exportDoneMsg:
		m.exportDone(msg)
	case importReadMsg:
		cmd = m.importRead(msg)

	default:
		return m, nil, false
	}
	return m, cmd, true
}
