// Package modal holds the small dialogs drawn over the dashboard.
package modal

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/theme"
)

// TutorialDoneMsg closes the tutorial and records it as seen.
type TutorialDoneMsg struct{}

type step struct {
	icon  string
	title string
	text  string
}

var tutorialSteps = []step{
	{"✔", "Welcome to your Dashboard",
		"This is where your ideas live. Let's take a quick tour of your new superpower."},
	{"+", "Create Notes",
		"Press n to start writing. Inside the editor, ctrl+a opens the AI menu to auto-title your thoughts."},
	{"📖", "AI Organizer",
		"Once you have a few notes, press o to generate a structured Table of Contents automatically."},
	{"🗑", "Safe Deletion",
		"Deleted notes go to the Recycle Bin. You can restore them or delete them forever from there."},
}

// Tutorial is the first-run walkthrough of the dashboard.
type Tutorial struct {
	step  int
	width int
}

// NewTutorial starts the tutorial at its first step.
func NewTutorial(width int) Tutorial {
	return Tutorial{width: width}
}

// Step returns the index of the current step.
func (t Tutorial) Step() int {
	return t.step
}

// Update advances through the steps. Finishing or skipping emits
// TutorialDoneMsg.
func (t Tutorial) Update(msg tea.Msg) (Tutorial, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}
	switch km.String() {
	case "enter", "right", "l", " ":
		if t.step < len(tutorialSteps)-1 {
			t.step++
			return t, nil
		}
		return t, done
	case "left", "h":
		if t.step > 0 {
			t.step--
		}
	case "esc", "s":
		return t, done
	}
	return t, nil
}

func done() tea.Msg { return TutorialDoneMsg{} }

// View renders the current step.
func (t Tutorial) View() string {
	s := tutorialSteps[t.step]

	dots := make([]string, len(tutorialSteps))
	for i := range dots {
		if i == t.step {
			dots[i] = lipgloss.NewStyle().Foreground(theme.ColorIndigo).Render("━━")
		} else {
			dots[i] = lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render("•")
		}
	}

	next := "Next"
	if t.step == len(tutorialSteps)-1 {
		next = "Got it!"
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorIndigo).Render(s.icon+"  "+s.title),
		"",
		lipgloss.NewStyle().Width(textWidth(t.width)).Render(s.text),
		"",
		strings.Join(dots, " ")+"   "+theme.HelpStyle.Render(fmt.Sprintf("enter %s | esc skip", strings.ToLower(next))),
	)
	return body
}

// SetWidth updates the available width.
func (t *Tutorial) SetWidth(w int) {
	t.width = w
}

// textWidth fits the step text inside the modal frame.
func textWidth(w int) int {
	return min(max(w-16, 30), 64)
}
