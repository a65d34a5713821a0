package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/router"
)

// refreshCmd pushes the notebook's collections into every screen showing
// them. The returned command re-applies an active dashboard filter and
// must reach the runtime.
func (m *Model) refreshCmd() tea.Cmd {
	nb := m.notebook
	m.recycle.SetNotes(nb.Deleted())
	m.focus.SetTasks(nb.Tasks())
	m.folders.SetFolders(nb.Folders(), nb.Notes(), nb.FolderFilter())
	m.dashboard.SetOpenTasks(notebook.TasksByPriority(nb.Tasks()).Total())
	return m.dashboard.SetNotes(nb.Visible(""), nb.Folders(), nb.FolderFilter())
}

// navigate switches to a signed-in screen and loads what it shows.
func (m *Model) navigate(v router.View) tea.Cmd {
	m.leaveEditor()
	if err := m.router.Navigate(v); err != nil {
		m.log.Warn("navigation refused", "view", v, "err", err)
		return nil
	}
	m.overlay = overlayNone
	m.notice = ""

	switch v {
	case router.ViewDashboard:
		return m.refreshCmd()
	case router.ViewUsers:
		m.loadUsers()
	case router.ViewAdmin:
		m.loadAdmin()
	case router.ViewSettings:
		m.settings.SetConfig(*m.cfg, m.user, m.hasAPIKey())
		m.settings.SetStatus("")
	case router.ViewChat:
		m.chat.SetAvailable(m.gateway.Available())
		return m.chat.Focus()
	}
	return nil
}

func (m *Model) loadUsers() {
	accounts, err := m.accounts.Accounts(context.Background())
	if err != nil {
		m.log.Error("loading accounts", "err", err)
	}
	m.users.SetAccounts(accounts, m.user, m.now())
}

func (m *Model) loadAdmin() {
	accounts, err := m.accounts.Accounts(context.Background())
	if err != nil {
		m.log.Error("loading accounts", "err", err)
	}
	m.admin.SetData(m.notebook.Stats(), accounts)
}

func (m *Model) openFolders() {
	m.folders.SetFolders(m.notebook.Folders(), m.notebook.Notes(), m.notebook.FolderFilter())
	m.overlay = overlayFolders
}

// openNote loads an existing note into the editor.
func (m *Model) openNote(id string) tea.Cmd {
	n, ok := m.notebook.Note(id)
	if !ok || n.IsDeleted {
		m.alert = "That note no longer exists."
		return nil
	}
	m.leaveEditor()
	if err := m.router.SelectNote(id); err != nil {
		m.log.Warn("open note refused", "err", err)
		return nil
	}
	m.overlay = overlayNone
	m.notice = ""
	return m.editor.Load(n)
}

func (m *Model) newNote() tea.Cmd {
	m.leaveEditor()
	if err := m.router.NewNote(); err != nil {
		m.log.Warn("new note refused", "err", err)
		return nil
	}
	m.overlay = overlayNone
	m.notice = ""
	return m.editor.Blank()
}

// saveEditor writes the open note. A note that has never been saved is
// created on its first non-empty save; an untouched blank note is never
// stored.
func (m *Model) saveEditor() {
	id := m.editor.NoteID()
	m.autosave.Cancel(id)
	if id == "" && m.editor.Empty() {
		return
	}

	n := m.notebook.SaveNote(context.Background(), id, m.editor.Draft())
	if id == "" {
		m.router.SetActiveNote(n.ID)
		m.editor.SetNoteID(n.ID)
	}
	m.editor.Sync(n)
	m.log.Debug("note saved", "note", n.ID)
}

// autosaveDue saves the open note when its debounce timer fires. Timers
// for notes no longer in the editor are ignored.
func (m *Model) autosaveDue(noteID string) {
	if m.router.Current() != router.ViewEditor || m.editor.NoteID() != noteID {
		return
	}
	m.saveEditor()
	m.editor.SetNotice("Saved")
}

// scheduleSave arms the autosave timer for the open note.
func (m *Model) scheduleSave() {
	if m.editor.Empty() && m.editor.NoteID() == "" {
		return
	}
	m.autosave.Schedule(m.editor.NoteID())
}

// leaveEditor saves the open note before another screen replaces it.
func (m *Model) leaveEditor() {
	if m.router.Current() == router.ViewEditor {
		m.saveEditor()
	}
}

func (m *Model) deleteNote(id string) {
	if err := m.notebook.DeleteNote(context.Background(), id); err != nil {
		m.alert = err.Error()
		return
	}
	m.notice = "Moved to Recycle Bin."
}

func (m *Model) togglePin(id string) {
	if err := m.notebook.TogglePin(context.Background(), id); err != nil {
		m.alert = err.Error()
	}
}

func (m *Model) restoreNote(id string) {
	if err := m.notebook.RestoreNote(context.Background(), id); err != nil {
		m.alert = err.Error()
		return
	}
	m.notice = "Note restored."
}

func (m *Model) purgeNote(id string) {
	err := m.notebook.PurgeNote(context.Background(), id)
	switch {
	case errors.Is(err, notebook.ErrNotInRecycleBin):
		m.alert = "Only notes in the Recycle Bin can be deleted forever."
	case err != nil:
		m.alert = err.Error()
	default:
		m.notice = "Note deleted forever."
	}
}

func (m *Model) selectFolder(id string) {
	if err := m.notebook.SetFolderFilter(id); err != nil {
		m.alert = err.Error()
		return
	}
	m.overlay = overlayNone
}

func (m *Model) createFolder(name string) {
	f := m.notebook.CreateFolder(context.Background(), name)
	m.notice = fmt.Sprintf("Folder %q created.", f.Name)
}

func (m *Model) deleteFolder(id string) {
	if err := m.notebook.DeleteFolder(context.Background(), id); err != nil {
		m.alert = err.Error()
		return
	}
	m.notice = "Folder deleted. Its notes are now unfiled."
}
