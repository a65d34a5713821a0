package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BootResolution(t *testing.T) {
	tests := []struct {
		name         string
		boot         Boot
		want         View
		wantTutorial bool
	}{
		{"first run", Boot{}, ViewOnboarding, false},
		{"onboarded, signed out", Boot{SeenOnboarding: true}, ViewLogin, false},
		{"signed in, new to tutorial", Boot{HasUser: true}, ViewDashboard, true},
		{"signed in, tutorial seen", Boot{HasUser: true, SeenTutorial: true, SeenOnboarding: true}, ViewDashboard, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.boot)
			assert.Equal(t, tt.want, r.Current())
			assert.Equal(t, tt.wantTutorial, r.ShowTutorial())
		})
	}
}

func TestRouter_SignedOutFlow(t *testing.T) {
	r := New(Boot{})
	r.CompleteOnboarding()
	assert.Equal(t, ViewLogin, r.Current())

	r.ShowRegister()
	assert.Equal(t, ViewRegister, r.Current())
	r.ShowForgotPassword()
	assert.Equal(t, ViewForgotPassword, r.Current())
	r.ShowLogin()

	assert.ErrorIs(t, r.NewNote(), ErrNotSignedIn)
	assert.ErrorIs(t, r.Navigate(ViewSettings), ErrNotSignedIn)
	assert.Equal(t, ViewLogin, r.Current())

	r.LoggedIn(false)
	assert.Equal(t, ViewDashboard, r.Current())
	assert.True(t, r.ShowTutorial())
	r.DismissTutorial()
	assert.False(t, r.ShowTutorial())
}

func TestRouter_NoteIntents(t *testing.T) {
	r := New(Boot{HasUser: true, SeenTutorial: true})

	require.NoError(t, r.SelectNote("n1"))
	assert.Equal(t, ViewEditor, r.Current())
	assert.Equal(t, "n1", r.ActiveNoteID())

	require.NoError(t, r.Back())
	assert.Equal(t, ViewDashboard, r.Current())
	assert.Equal(t, "", r.ActiveNoteID())

	require.NoError(t, r.NewNote())
	assert.Equal(t, "", r.ActiveNoteID())
	r.SetActiveNote("n2")
	assert.Equal(t, "n2", r.ActiveNoteID())

	assert.Error(t, r.Navigate(ViewLogin))

	r.Logout()
	assert.Equal(t, ViewLogin, r.Current())
	assert.False(t, r.SignedIn())
	assert.Equal(t, "", r.ActiveNoteID())
}

func TestRouter_StaleTicketRejected(t *testing.T) {
	r := New(Boot{HasUser: true})
	require.NoError(t, r.Navigate(ViewSmartView))
	ticket := r.Ticket()
	assert.True(t, r.IsCurrent(ticket))

	require.NoError(t, r.Back())
	assert.False(t, r.IsCurrent(ticket), "left the view")

	require.NoError(t, r.Navigate(ViewSmartView))
	assert.False(t, r.IsCurrent(ticket), "same view, newer visit")
}

func TestRouter_LoadingIsCleared(t *testing.T) {
	r := New(Boot{HasUser: true})
	assert.False(t, r.Loading())

	endA := r.BeginLoading()
	endB := r.BeginLoading()
	assert.True(t, r.Loading())

	endA()
	endA()
	assert.True(t, r.Loading(), "second call still in flight")

	endB()
	assert.False(t, r.Loading())
}

func TestView_String(t *testing.T) {
	assert.Equal(t, "Recycle Bin", ViewRecycleBin.String())
	assert.Equal(t, "View(99)", View(99).String())
}
