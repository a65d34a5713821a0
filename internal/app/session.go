package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/account"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/router"
	"github.com/nhle/smartnote/internal/store"
	"github.com/nhle/smartnote/internal/ui/auth"
	"github.com/nhle/smartnote/internal/ui/modal"
)

// signedInMsg carries the outcome of a login or registration. Password
// hashing is slow, so both run off the update loop.
type signedInMsg struct {
	user model.User
	err  error
}

func (m *Model) login(msg auth.LoginMsg) tea.Cmd {
	svc := m.accounts
	return func() tea.Msg {
		u, err := svc.Login(context.Background(), msg.Email, msg.Password)
		return signedInMsg{user: u, err: err}
	}
}

func (m *Model) register(msg auth.RegisterMsg) tea.Cmd {
	svc := m.accounts
	return func() tea.Msg {
		u, err := svc.Register(context.Background(), msg.Username, msg.Email, msg.Password)
		return signedInMsg{user: u, err: err}
	}
}

// signedIn starts the session: the user is persisted and the dashboard
// opens, with the tutorial on first use.
func (m *Model) signedIn(msg signedInMsg) tea.Cmd {
	if msg.err != nil {
		if !errors.Is(msg.err, account.ErrInvalidCredentials) && !errors.Is(msg.err, account.ErrAccountExists) {
			m.log.Error("signing in", "err", msg.err)
		}
		return m.auth.Fail(msg.err)
	}

	ctx := context.Background()
	m.user = msg.user
	if err := m.repo.SaveUser(ctx, m.user); err != nil {
		m.log.Error("saving user", "err", err)
	}
	m.log.Info("signed in", "user", m.user.Email)

	m.router.LoggedIn(m.flag(ctx, store.KeyTutorialComplete))
	m.tutorial = modal.NewTutorial(m.layout.ContentWidth())
	return tea.Batch(m.refreshCmd(), m.startPolling())
}

func (m *Model) requestReset(msg auth.ResetMsg) tea.Cmd {
	notice, err := m.accounts.RequestReset(msg.Email)
	if err != nil {
		return m.auth.Fail(err)
	}
	return m.auth.Notify(notice)
}

func (m *Model) switchAuth(screen auth.Screen) tea.Cmd {
	switch screen {
	case auth.ScreenRegister:
		m.router.ShowRegister()
	case auth.ScreenForgot:
		m.router.ShowForgotPassword()
	default:
		m.router.ShowLogin()
	}
	return m.auth.Start(screen)
}

func (m *Model) completeOnboarding() tea.Cmd {
	if err := m.repo.SetFlag(context.Background(), store.KeyOnboardingComplete, true); err != nil {
		m.log.Error("saving onboarding flag", "err", err)
	}
	m.router.CompleteOnboarding()
	return m.auth.Start(auth.ScreenLogin)
}

func (m *Model) tutorialDone() {
	m.router.DismissTutorial()
	if err := m.repo.SetFlag(context.Background(), store.KeyTutorialComplete, true); err != nil {
		m.log.Error("saving tutorial flag", "err", err)
	}
}

// replayTutorial returns to the dashboard with the tutorial on top.
func (m *Model) replayTutorial() tea.Cmd {
	cmd := m.navigate(router.ViewDashboard)
	m.tutorial = modal.NewTutorial(m.layout.ContentWidth())
	m.router.ReplayTutorial()
	return cmd
}

func (m *Model) openSubscription() {
	m.subscription = modal.NewSubscription(m.user.IsPremium(), m.layout.ContentWidth())
	m.router.SetSubscriptionModal(true)
}

func (m *Model) upgrade() {
	m.router.SetSubscriptionModal(false)
	u, err := m.accounts.Upgrade(context.Background(), m.user)
	if err != nil {
		m.log.Error("upgrading account", "err", err)
		m.alert = "Upgrade failed: " + err.Error()
		return
	}
	m.user = u
	if err := m.repo.SaveUser(context.Background(), u); err != nil {
		m.log.Error("saving user", "err", err)
	}
	m.notice = modal.UpgradedNotice
	if m.router.Current() == router.ViewSettings {
		m.settings.SetConfig(*m.cfg, m.user, m.hasAPIKey())
	}
}

// logout ends the session. The open note is saved first and mail polling
// stops; notes stay on disk for the next sign-in.
func (m *Model) logout() tea.Cmd {
	m.leaveEditor()
	m.stopPolling()
	if err := m.repo.ClearUser(context.Background()); err != nil {
		m.log.Error("clearing user", "err", err)
	}
	m.log.Info("signed out", "user", m.user.Email)

	m.user = model.User{}
	m.resetChat()
	m.chat.Clear()
	m.overlay = overlayNone
	m.alert = ""
	m.notice = ""
	m.router.Logout()
	return m.auth.Start(auth.ScreenLogin)
}
