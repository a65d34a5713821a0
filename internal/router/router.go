// Package router is the single source of truth for which screen is
// active. Screens request transitions through named intents; there is no
// back stack.
package router

import (
	"errors"
	"fmt"
)

// View identifies a screen.
type View int

const (
	ViewOnboarding View = iota
	ViewLogin
	ViewRegister
	ViewForgotPassword
	ViewDashboard
	ViewEditor
	ViewQuiz
	ViewStudy
	ViewMindMap
	ViewFocus
	ViewSmartView
	ViewRecycleBin
	ViewUsers
	ViewSettings
	ViewChat
	ViewAdmin
)

var viewNames = map[View]string{
	ViewOnboarding:     "Onboarding",
	ViewLogin:          "Login",
	ViewRegister:       "Register",
	ViewForgotPassword: "Forgot Password",
	ViewDashboard:      "Dashboard",
	ViewEditor:         "Editor",
	ViewQuiz:           "Quiz",
	ViewStudy:          "Study",
	ViewMindMap:        "Mind Map",
	ViewFocus:          "Focus",
	ViewSmartView:      "Smart View",
	ViewRecycleBin:     "Recycle Bin",
	ViewUsers:          "Users",
	ViewSettings:       "Settings",
	ViewChat:           "Chat",
	ViewAdmin:          "Admin",
}

func (v View) String() string {
	if s, ok := viewNames[v]; ok {
		return s
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// public reports whether v is reachable without a signed-in user.
func (v View) public() bool {
	switch v {
	case ViewOnboarding, ViewLogin, ViewRegister, ViewForgotPassword:
		return true
	}
	return false
}

// ErrNotSignedIn is returned when an intent needs a signed-in user.
var ErrNotSignedIn = errors.New("not signed in")

// Boot is the persisted state the initial view is derived from.
type Boot struct {
	HasUser        bool
	SeenOnboarding bool
	SeenTutorial   bool
}

// Ticket identifies the view an async request was issued from. A response
// whose ticket is no longer current must be dropped.
type Ticket struct {
	View       View
	Generation uint64
}

// Router tracks the current view plus auxiliary UI state.
type Router struct {
	current      View
	generation   uint64
	signedIn     bool
	activeNoteID string
	loading      int

	showTutorial     bool
	showSubscription bool
}

// New resolves the initial view from persisted state.
func New(b Boot) *Router {
	r := &Router{}
	switch {
	case b.HasUser:
		r.signedIn = true
		r.current = ViewDashboard
		r.showTutorial = !b.SeenTutorial
	case b.SeenOnboarding:
		r.current = ViewLogin
	default:
		r.current = ViewOnboarding
	}
	return r
}

// Current returns the active view.
func (r *Router) Current() View { return r.current }

// SignedIn reports whether a user session is active.
func (r *Router) SignedIn() bool { return r.signedIn }

// ActiveNoteID is the note open in the editor; empty for a new note.
func (r *Router) ActiveNoteID() string { return r.activeNoteID }

// Ticket captures the current view and generation for an async request.
func (r *Router) Ticket() Ticket {
	return Ticket{View: r.current, Generation: r.generation}
}

// IsCurrent reports whether t was issued from the view still on screen.
func (r *Router) IsCurrent(t Ticket) bool {
	return t.View == r.current && t.Generation == r.generation
}

func (r *Router) goTo(v View) {
	r.current = v
	r.generation++
}

// CompleteOnboarding leaves the onboarding carousel for the login screen.
func (r *Router) CompleteOnboarding() {
	r.goTo(ViewLogin)
}

// ShowLogin, ShowRegister and ShowForgotPassword switch between the
// signed-out screens.
func (r *Router) ShowLogin() { r.goTo(ViewLogin) }

func (r *Router) ShowRegister() { r.goTo(ViewRegister) }

func (r *Router) ShowForgotPassword() { r.goTo(ViewForgotPassword) }

// LoggedIn starts a session and opens the dashboard. The tutorial overlay
// is shown when the user has not seen it yet.
func (r *Router) LoggedIn(seenTutorial bool) {
	r.signedIn = true
	r.showTutorial = !seenTutorial
	r.goTo(ViewDashboard)
}

// Logout ends the session and returns to the login screen.
func (r *Router) Logout() {
	r.signedIn = false
	r.activeNoteID = ""
	r.showTutorial = false
	r.showSubscription = false
	r.goTo(ViewLogin)
}

// NewNote opens an empty editor.
func (r *Router) NewNote() error {
	if !r.signedIn {
		return ErrNotSignedIn
	}
	r.activeNoteID = ""
	r.goTo(ViewEditor)
	return nil
}

// SelectNote opens the editor on an existing note.
func (r *Router) SelectNote(id string) error {
	if !r.signedIn {
		return ErrNotSignedIn
	}
	r.activeNoteID = id
	r.goTo(ViewEditor)
	return nil
}

// SetActiveNote records the id of a note the editor just created.
func (r *Router) SetActiveNote(id string) {
	r.activeNoteID = id
}

// Back returns to the dashboard.
func (r *Router) Back() error {
	return r.Navigate(ViewDashboard)
}

// Navigate switches to a signed-in screen such as the recycle bin, focus
// mode or settings. Signed-out screens use their own intents.
func (r *Router) Navigate(v View) error {
	if v.public() {
		return fmt.Errorf("navigate to %s: use the sign-in intents", v)
	}
	if !r.signedIn {
		return ErrNotSignedIn
	}
	if v != ViewEditor {
		r.activeNoteID = ""
	}
	r.goTo(v)
	return nil
}

// BeginLoading marks an AI call in flight. The returned func must be
// called exactly once when the call finishes, whatever its outcome.
func (r *Router) BeginLoading() func() {
	r.loading++
	done := false
	return func() {
		if done {
			return
		}
		done = true
		r.loading--
	}
}

// Loading reports whether any AI call is in flight.
func (r *Router) Loading() bool { return r.loading > 0 }

// ShowTutorial reports whether the tutorial overlay is visible.
func (r *Router) ShowTutorial() bool { return r.showTutorial }

// DismissTutorial hides the tutorial overlay.
func (r *Router) DismissTutorial() { r.showTutorial = false }

// ReplayTutorial shows the tutorial overlay again.
func (r *Router) ReplayTutorial() { r.showTutorial = true }

// ShowSubscription reports whether the upgrade modal is visible.
func (r *Router) ShowSubscription() bool { return r.showSubscription }

// SetSubscriptionModal opens or closes the upgrade modal.
func (r *Router) SetSubscriptionModal(open bool) { r.showSubscription = open }
