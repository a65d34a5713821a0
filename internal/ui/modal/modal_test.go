package modal

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTutorial_WalksThroughSteps(t *testing.T) {
	tut := NewTutorial(80)
	assert.Contains(t, tut.View(), "Welcome to your Dashboard")

	for i := 1; i < len(tutorialSteps); i++ {
		var cmd tea.Cmd
		tut, cmd = tut.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Equal(t, i, tut.Step())
	}
	assert.Contains(t, tut.View(), "Safe Deletion")

	tut, _ = tut.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, len(tutorialSteps)-2, tut.Step())
	tut, _ = tut.Update(tea.KeyMsg{Type: tea.KeyRight})

	_, cmd := tut.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, TutorialDoneMsg{}, cmd())
}

func TestTutorial_Skip(t *testing.T) {
	_, cmd := NewTutorial(80).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, TutorialDoneMsg{}, cmd())
}

func TestSubscription(t *testing.T) {
	free := NewSubscription(false, 80)
	assert.Contains(t, free.View(), "No Chat Interface")
	assert.Contains(t, free.View(), "Voice Transcription")

	_, cmd := free.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	require.NotNil(t, cmd)
	assert.Equal(t, UpgradeMsg{}, cmd())

	_, cmd = NewSubscription(true, 80).Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SubscriptionClosedMsg{}, cmd())
}
