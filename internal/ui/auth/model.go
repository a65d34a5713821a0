// Package auth holds the sign-in, registration and password reset forms.
package auth

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/account"
	"github.com/nhle/smartnote/internal/theme"
)

// Screen selects which form is shown.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenForgot
)

// LoginMsg submits the sign-in form.
type LoginMsg struct {
	Email    string
	Password string
}

// RegisterMsg submits the registration form.
type RegisterMsg struct {
	Username string
	Email    string
	Password string
}

// ResetMsg submits the password reset form.
type ResetMsg struct {
	Email string
}

// SwitchMsg asks the app to move to another auth screen.
type SwitchMsg struct {
	Screen Screen
}

type formBindings struct {
	username string
	email    string
	password string
	confirm  string
}

// Model is the auth view.
type Model struct {
	screen Screen
	form   *huh.Form
	fb     *formBindings
	err    string
	notice string
	width  int
	height int
}

// New creates the auth view on the sign-in form.
func New(width, height int) Model {
	m := Model{fb: &formBindings{}, width: width, height: height}
	m.Start(ScreenLogin)
	return m
}

// Start shows screen with an empty form, keeping the typed email.
func (m *Model) Start(screen Screen) tea.Cmd {
	m.screen = screen
	m.err = ""
	m.notice = ""
	m.fb.password = ""
	m.fb.confirm = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Screen returns the visible form.
func (m Model) Screen() Screen {
	return m.screen
}

// Fail shows err and reopens the form.
func (m *Model) Fail(err error) tea.Cmd {
	cmd := m.Start(m.screen)
	m.err = err.Error()
	return cmd
}

// Notify shows a notice and reopens the form, used after a reset request.
func (m *Model) Notify(notice string) tea.Cmd {
	cmd := m.Start(m.screen)
	m.notice = notice
	return cmd
}

func (m Model) buildForm() *huh.Form {
	fb := m.fb
	email := huh.NewInput().
		Title("Email").
		Placeholder("you@example.com").
		Value(&fb.email).
		Validate(account.ValidateEmail)

	var group *huh.Group
	switch m.screen {
	case ScreenRegister:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Description("Leave empty to use the part of your email before @.").
				Value(&fb.username),
			email,
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(account.ValidatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.confirm).
				Validate(func(s string) error {
					if s != fb.password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		)
	case ScreenForgot:
		group = huh.NewGroup(email)
	default:
		group = huh.NewGroup(
			email,
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		)
	}

	return huh.NewForm(group).
		WithWidth(min(max(m.width-8, 40), 72)).
		WithShowHelp(true)
}

// Update handles messages for the auth view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+r":
			if m.screen == ScreenLogin {
				return m, func() tea.Msg { return SwitchMsg{Screen: ScreenRegister} }
			}
		case "ctrl+f":
			if m.screen == ScreenLogin {
				return m, func() tea.Msg { return SwitchMsg{Screen: ScreenForgot} }
			}
		case "ctrl+l":
			if m.screen != ScreenLogin {
				return m, func() tea.Msg { return SwitchMsg{Screen: ScreenLogin} }
			}
		}
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submit()
	case huh.StateAborted:
		if m.screen != ScreenLogin {
			return m, func() tea.Msg { return SwitchMsg{Screen: ScreenLogin} }
		}
		return m, m.Start(ScreenLogin)
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	email := strings.TrimSpace(m.fb.email)
	switch m.screen {
	case ScreenRegister:
		msg := RegisterMsg{Username: strings.TrimSpace(m.fb.username), Email: email, Password: m.fb.password}
		return func() tea.Msg { return msg }
	case ScreenForgot:
		return func() tea.Msg { return ResetMsg{Email: email} }
	default:
		msg := LoginMsg{Email: email, Password: m.fb.password}
		return func() tea.Msg { return msg }
	}
}

// View renders the auth view.
func (m Model) View() string {
	var title, subtitle, hint string
	switch m.screen {
	case ScreenRegister:
		title, subtitle = "Create Account", "Start organizing your ideas with AI."
		hint = "ctrl+l back to sign in"
	case ScreenForgot:
		title, subtitle = "Reset Password", "We'll send a reset link to your email."
		hint = "ctrl+l back to sign in"
	default:
		title, subtitle = "Welcome Back", "Sign in to SmartNote AI."
		hint = "ctrl+r create account · ctrl+f forgot password"
	}

	parts := []string{
		theme.TitleStyle.Foreground(theme.ColorIndigo).Render("✨ " + title),
		lipgloss.NewStyle().Foreground(theme.ColorGray).Render(subtitle),
		"",
	}
	if m.err != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.err), "")
	}
	if m.notice != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(m.notice), "")
	}
	parts = append(parts, m.form.View(), theme.HelpStyle.Render(hint))

	box := theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(min(max(width-8, 40), 72))
	}
}
