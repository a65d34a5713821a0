package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/account"
	"github.com/nhle/smartnote/internal/ai"
	"github.com/nhle/smartnote/internal/autosave"
	"github.com/nhle/smartnote/internal/credential"
	"github.com/nhle/smartnote/internal/focus"
	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/mailin"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/router"
	"github.com/nhle/smartnote/internal/store"
	"github.com/nhle/smartnote/internal/theme"
	"github.com/nhle/smartnote/internal/ui"
	"github.com/nhle/smartnote/internal/ui/admin"
	"github.com/nhle/smartnote/internal/ui/auth"
	"github.com/nhle/smartnote/internal/ui/chat"
	"github.com/nhle/smartnote/internal/ui/command"
	"github.com/nhle/smartnote/internal/ui/dashboard"
	"github.com/nhle/smartnote/internal/ui/editor"
	"github.com/nhle/smartnote/internal/ui/flashcards"
	"github.com/nhle/smartnote/internal/ui/focusview"
	"github.com/nhle/smartnote/internal/ui/folders"
	helpview "github.com/nhle/smartnote/internal/ui/help"
	"github.com/nhle/smartnote/internal/ui/mindmap"
	"github.com/nhle/smartnote/internal/ui/modal"
	"github.com/nhle/smartnote/internal/ui/onboarding"
	"github.com/nhle/smartnote/internal/ui/quiz"
	"github.com/nhle/smartnote/internal/ui/recyclebin"
	"github.com/nhle/smartnote/internal/ui/settings"
	"github.com/nhle/smartnote/internal/ui/smartview"
	"github.com/nhle/smartnote/internal/ui/users"
)

// overlay is a panel drawn over the current screen.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayCommand
	overlayFolders
)

// Deps are the services the root model is built from.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string
	Repo       *store.Repository
	Notebook   *notebook.Notebook
	Accounts   *account.Service
	Vault      *credential.Vault
	Gateway    *ai.Gateway
	Log        *slog.Logger
	Now        func() time.Time
}

// Model is the root Bubble Tea model. It owns the router, the notebook
// and every screen, and is the only place application state is changed.
type Model struct {
	router   *router.Router
	notebook *notebook.Notebook
	repo     *store.Repository
	accounts *account.Service
	vault    *credential.Vault
	gateway  *ai.Gateway
	autosave *autosave.Scheduler
	poller   *mailin.Poller
	cfg      *model.AppConfig
	cfgPath  string
	reloads  chan *model.AppConfig
	log      *slog.Logger
	now      func() time.Time
	user     model.User
	keys     *keys.KeyMap
	layout   ui.Layout
	ready    bool
	overlay  overlay
	spinner  spinner.Model
	alert    string
	notice   string

	// chatSession changes whenever the conversation ends.
	chatSession uint64

	onboarding   onboarding.Model
	auth         auth.Model
	dashboard    dashboard.Model
	editor       editor.Model
	quiz         quiz.Model
	flashcards   flashcards.Model
	mindmap      mindmap.Model
	focus        focusview.Model
	smart        smartview.Model
	recycle      recyclebin.Model
	users        users.Model
	settings     settings.Model
	chat         chat.Model
	admin        admin.Model
	helpView     helpview.Model
	commandView  command.Model
	folders      folders.Model
	tutorial     modal.Tutorial
	subscription modal.Subscription
}

// New builds the root model and resolves the first screen from persisted
// state.
func New(ctx context.Context, d Deps) Model {
	if d.Log == nil {
		d.Log = slog.New(slog.DiscardHandler)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Gateway == nil {
		d.Gateway = ai.NewGateway(nil)
	}

	k := keys.DefaultKeyMap()
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		notebook: d.Notebook,
		repo:     d.Repo,
		accounts: d.Accounts,
		vault:    d.Vault,
		gateway:  d.Gateway,
		autosave: autosave.New(time.Duration(d.Config.Autosave.DelayMS) * time.Millisecond),
		cfg:      d.Config,
		cfgPath:  d.ConfigPath,
		reloads:  make(chan *model.AppConfig, 1),
		log:      d.Log,
		now:      d.Now,
		keys:     k,
		spinner:  sp,

		onboarding:   onboarding.New(k, 80, 24),
		auth:         auth.New(80, 24),
		dashboard:    dashboard.New(k, 80, 24),
		editor:       editor.New(k, 80, 24),
		quiz:         quiz.New(k, 80, 24),
		flashcards:   flashcards.New(k, 80, 24),
		mindmap:      mindmap.New(k, 80, 24),
		focus:        focusview.New(k, 80, 24),
		smart:        smartview.New(k, 80, 24),
		recycle:      recyclebin.New(k, 80, 24),
		users:        users.New(k, 80, 24),
		settings:     settings.New(k, 80, 24),
		chat:         chat.New(k, 80, 24),
		admin:        admin.New(k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		folders:      folders.New(k, 80, 24),
		tutorial:     modal.NewTutorial(80),
		subscription: modal.NewSubscription(false, 80),
	}

	boot := router.Boot{}
	if u, err := m.repo.LoadUser(ctx); err != nil {
		m.log.Error("loading user", "err", err)
	} else if u != nil && u.IsAuthenticated {
		m.user = *u
		boot.HasUser = true
	}
	boot.SeenOnboarding = m.flag(ctx, store.KeyOnboardingComplete)
	boot.SeenTutorial = m.flag(ctx, store.KeyTutorialComplete)
	m.router = router.New(boot)

	if t, err := m.repo.LoadTheme(ctx); err == nil && t != "" {
		m.cfg.Display.Theme = string(t)
	}
	theme.Apply(model.ParseTheme(m.cfg.Display.Theme))

	// No filter is active yet; Init sends the dashboard's list command.
	_ = m.refreshCmd()
	return m
}

func (m Model) flag(ctx context.Context, key string) bool {
	v, err := m.repo.Flag(ctx, key)
	if err != nil {
		m.log.Error("reading flag", "key", key, "err", err)
	}
	return v
}

// Init starts the background listeners and focuses the first screen.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.autosave.WaitForDue(),
		m.watchConfig(),
		m.waitForReload(),
	}
	switch m.router.Current() {
	case router.ViewLogin:
		cmds = append(cmds, m.auth.Start(auth.ScreenLogin))
	case router.ViewDashboard:
		cmds = append(cmds, m.dashboard.SetNotes(m.notebook.Visible(""), m.notebook.Folders(), m.notebook.FolderFilter()))
	}
	if m.router.SignedIn() {
		cmds = append(cmds, m.startPolling())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		// Forward to the active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case spinner.TickMsg:
		return m.broadcastSpinner(msg)

	case focus.TickMsg:
		// The pomodoro keeps running while other screens are shown.
		var cmd tea.Cmd
		m.focus, cmd = m.focus.Update(msg)
		if n := m.focus.Notice(); n != "" && m.router.Current() != router.ViewFocus {
			m.notice = n
		}
		return m, cmd

	case autosave.DueMsg:
		m.autosaveDue(msg.NoteID)
		return m, m.autosave.WaitForDue()

	case configReloadedMsg:
		m.applyReload(msg.cfg)
		return m, m.waitForReload()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.shutdown()
			return m, tea.Quit
		}
		m.alert = ""
		return m.handleKey(msg)
	}

	if next, cmd, ok := m.handleIntent(msg); ok {
		return next, cmd
	}
	return m.updateActiveView(msg)
}

// shutdown flushes a pending save of the open note and stops the
// background workers.
func (m *Model) shutdown() {
	m.leaveEditor()
	m.autosave.Stop()
	m.stopPolling()
}

func (m *Model) resize() {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	m.onboarding.SetSize(w, h)
	m.auth.SetSize(w, h)
	m.dashboard.SetSize(w, h)
	m.editor.SetSize(w, h)
	m.quiz.SetSize(w, h)
	m.flashcards.SetSize(w, h)
	m.mindmap.SetSize(w, h)
	m.focus.SetSize(w, h)
	m.smart.SetSize(w, h)
	m.recycle.SetSize(w, h)
	m.users.SetSize(w, h)
	m.settings.SetSize(w, h)
	m.chat.SetSize(w, h)
	m.admin.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
	m.folders.SetSize(w, h)
	m.tutorial.SetWidth(w)
	m.subscription.SetWidth(w)
}

// broadcastSpinner forwards spinner ticks to every screen that may own
// the spinner; each ignores ticks carrying another spinner's id.
func (m Model) broadcastSpinner(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.router.Loading() {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)
	m.settings, cmd = m.settings.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.overlay {
	case overlayCommand:
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	case overlayFolders:
		m.folders, cmd = m.folders.Update(msg)
		return m, cmd
	case overlayHelp:
		return m, nil
	}

	switch m.router.Current() {
	case router.ViewOnboarding:
		m.onboarding, cmd = m.onboarding.Update(msg)
	case router.ViewLogin, router.ViewRegister, router.ViewForgotPassword:
		m.auth, cmd = m.auth.Update(msg)
	case router.ViewDashboard:
		if m.router.ShowSubscription() {
			m.subscription, cmd = m.subscription.Update(msg)
		} else if m.router.ShowTutorial() {
			m.tutorial, cmd = m.tutorial.Update(msg)
		} else {
			m.dashboard, cmd = m.dashboard.Update(msg)
		}
	case router.ViewEditor:
		m.editor, cmd = m.editor.Update(msg)
	case router.ViewQuiz:
		m.quiz, cmd = m.quiz.Update(msg)
	case router.ViewStudy:
		m.flashcards, cmd = m.flashcards.Update(msg)
	case router.ViewMindMap:
		m.mindmap, cmd = m.mindmap.Update(msg)
	case router.ViewFocus:
		m.focus, cmd = m.focus.Update(msg)
	case router.ViewSmartView:
		m.smart, cmd = m.smart.Update(msg)
	case router.ViewRecycleBin:
		m.recycle, cmd = m.recycle.Update(msg)
	case router.ViewUsers:
		m.users, cmd = m.users.Update(msg)
	case router.ViewSettings:
		if m.router.ShowSubscription() {
			m.subscription, cmd = m.subscription.Update(msg)
		} else {
			m.settings, cmd = m.settings.Update(msg)
		}
	case router.ViewChat:
		m.chat, cmd = m.chat.Update(msg)
	case router.ViewAdmin:
		m.admin, cmd = m.admin.Update(msg)
	}
	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("✨ SmartNote · "+m.router.Current().String(), m.session())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.statusText())
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.overlay {
	case overlayHelp:
		return m.helpView.View()
	case overlayCommand:
		return m.commandView.View()
	case overlayFolders:
		return m.layout.RenderModal(m.folders.View())
	}
	if m.router.ShowSubscription() {
		return m.layout.RenderModal(m.subscription.View())
	}

	switch m.router.Current() {
	case router.ViewOnboarding:
		return m.onboarding.View()
	case router.ViewLogin, router.ViewRegister, router.ViewForgotPassword:
		return m.auth.View()
	case router.ViewDashboard:
		if m.router.ShowTutorial() {
			return m.layout.RenderModal(m.tutorial.View())
		}
		return m.dashboard.View()
	case router.ViewEditor:
		return m.editor.View()
	case router.ViewQuiz:
		return m.quiz.View()
	case router.ViewStudy:
		return m.flashcards.View()
	case router.ViewMindMap:
		return m.mindmap.View()
	case router.ViewFocus:
		return m.focus.View()
	case router.ViewSmartView:
		return m.smart.View()
	case router.ViewRecycleBin:
		return m.recycle.View()
	case router.ViewUsers:
		return m.users.View()
	case router.ViewSettings:
		return m.settings.View()
	case router.ViewChat:
		return m.chat.View()
	case router.ViewAdmin:
		return m.admin.View()
	default:
		return ""
	}
}

// session is the right-hand side of the header.
func (m Model) session() string {
	var s string
	if m.router.Loading() {
		s = m.spinner.View() + " AI working its magic...  "
	}
	if !m.router.SignedIn() {
		return s
	}
	tier := "Free"
	if m.user.IsPremium() {
		tier = "Pro ✨"
	}
	if m.focus.Running() {
		s += "🍅 " + m.focus.Clock() + "  "
	}
	return s + fmt.Sprintf("%s · %s", m.user.Username, tier)
}

// statusText is the alert or notice shown in place of the key hints.
func (m Model) statusText() string {
	if m.alert != "" {
		return "⚠ " + m.alert
	}
	return m.notice
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.overlay {
	case overlayHelp:
		return "? close help | esc back"
	case overlayCommand:
		return "enter run | tab complete | esc close"
	case overlayFolders:
		return "enter filter | n new | d delete | esc close"
	}

	switch m.router.Current() {
	case router.ViewOnboarding:
		return "→ next | ← back | s skip"
	case router.ViewLogin, router.ViewRegister, router.ViewForgotPassword:
		return "ctrl+r register | ctrl+f forgot password | ctrl+l sign in | ctrl+c quit"
	case router.ViewEditor:
		return "ctrl+s save | ctrl+p preview | ctrl+a AI | ctrl+o attach | esc close"
	case router.ViewChat:
		return "enter send | ctrl+l new conversation | esc back"
	case router.ViewFocus:
		return "space timer | R reset | a add | x done | d delete | esc back"
	case router.ViewRecycleBin:
		return "r restore | X delete forever | esc back"
	case router.ViewQuiz:
		return "1-4 choose | enter submit | s study cards | m mind map | esc back"
	case router.ViewStudy:
		return "space flip | ←/→ move | x mastered | esc back"
	case router.ViewSettings, router.ViewUsers, router.ViewAdmin, router.ViewMindMap, router.ViewSmartView:
		return "esc back | ? help"
	default:
		return "n new | / search | o organize | s study | c chat | t focus | f folders | b bin | , settings | ? help | q quit"
	}
}
