// Package focusview is the focus screen: a Pomodoro timer beside the
// Eisenhower matrix of open tasks.
package focusview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/focus"
	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/theme"
)

// AddTaskMsg asks the app to add a task.
type AddTaskMsg struct {
	Content  string
	Priority model.Priority
}

// ToggleTaskMsg marks a task done or open.
type ToggleTaskMsg struct {
	TaskID string
}

// DeleteTaskMsg removes a task.
type DeleteTaskMsg struct {
	TaskID string
}

// CloseMsg returns to the dashboard.
type CloseMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	content  string
	priority model.Priority
}

// Model is the focus screen.
type Model struct {
	keys      *keys.KeyMap
	timer     *focus.Pomodoro
	quadrants []focus.Quadrant
	done      int
	cursor    int
	adding    bool
	form      *huh.Form
	fb        *formBindings
	notice    string
	width     int
	height    int
}

// New creates the focus screen with a stopped timer.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:      k,
		timer:     focus.NewPomodoro(),
		quadrants: focus.Matrix(nil),
		fb:        &formBindings{},
		width:     width,
		height:    height,
	}
}

// SetTasks rebuilds the matrix.
func (m *Model) SetTasks(tasks []model.Task) {
	m.quadrants = focus.Matrix(tasks)
	m.done = 0
	for _, t := range tasks {
		if t.IsCompleted {
			m.done++
		}
	}
	if n := len(m.flat()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// Notice returns the last timer notice.
func (m Model) Notice() string {
	return m.notice
}

// Running reports whether the pomodoro is counting down.
func (m Model) Running() bool {
	return m.timer.Running()
}

// Clock is the time left in the current phase as mm:ss.
func (m Model) Clock() string {
	return m.timer.Clock()
}

// Adding reports whether the add-task form has focus.
func (m Model) Adding() bool {
	return m.adding
}

func (m Model) flat() []model.Task {
	var out []model.Task
	for _, q := range m.quadrants {
		out = append(out, q.Tasks...)
	}
	return out
}

func (m Model) selected() (model.Task, bool) {
	tasks := m.flat()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.cursor], true
}

// Update handles messages for the focus screen. Timer ticks must be
// routed here even while another screen is visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(focus.TickMsg); ok {
		cmd, completed := m.timer.Update(tick)
		if completed {
			finished := focus.PhaseWork
			if m.timer.Phase() == focus.PhaseWork {
				finished = focus.PhaseBreak
			}
			m.notice = focus.CompletionNotice(finished)
		}
		return m, cmd
	}

	if m.adding {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(km, m.keys.Toggle):
		m.notice = ""
		return m, m.timer.Toggle()

	case key.Matches(km, m.keys.Reset):
		m.timer.Reset()
		return m, nil

	case key.Matches(km, m.keys.Down):
		if n := len(m.flat()); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}

	case key.Matches(km, m.keys.Up):
		if n := len(m.flat()); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}

	case key.Matches(km, m.keys.Done):
		if t, ok := m.selected(); ok {
			return m, func() tea.Msg { return ToggleTaskMsg{TaskID: t.ID} }
		}

	case key.Matches(km, m.keys.Delete):
		if t, ok := m.selected(); ok {
			return m, func() tea.Msg { return DeleteTaskMsg{TaskID: t.ID} }
		}

	case key.Matches(km, m.keys.Add):
		m.fb.content = ""
		m.fb.priority = model.PriorityMedium
		m.form = m.buildForm()
		m.adding = true
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	opts := make([]huh.Option[model.Priority], 0, len(focus.PriorityChoices))
	for _, c := range focus.PriorityChoices {
		opts = append(opts, huh.NewOption(c.Label, c.Priority))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task").
				Placeholder("What needs to be done?").
				Value(&m.fb.content).
				Validate(validateRequired),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(opts...).
				Value(&m.fb.priority),
		),
	).WithWidth(min(max(m.width-8, 40), 100)).WithHeight(max(m.height-6, 10))
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("task is required")
	}
	return nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.adding = false
		req := AddTaskMsg{Content: strings.TrimSpace(m.fb.content), Priority: m.fb.priority}
		return m, func() tea.Msg { return req }
	case huh.StateAborted:
		m.adding = false
		return m, nil
	}
	return m, cmd
}

// View renders the focus screen.
func (m Model) View() string {
	if m.adding {
		return theme.TitleStyle.Render("New Task") + "\n" + m.form.View()
	}

	timerBox := m.renderTimer()
	matrix := m.renderMatrix()

	var body string
	if m.width >= 90 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, timerBox, "  ", matrix)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, timerBox, matrix)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		theme.HelpStyle.Render("space start/pause | R reset | a add task | x done | d delete | esc back"),
	)
}

func (m Model) renderTimer() string {
	status := "paused"
	if m.timer.Running() {
		status = "running"
	}
	color := theme.ColorIndigo
	if m.timer.Phase() == focus.PhaseBreak {
		color = theme.ColorGreen
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(color).Render(m.timer.Phase().String()),
		"",
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(m.timer.Clock()),
		lipgloss.NewStyle().Foreground(theme.ColorGray).Render(status),
	}
	if m.notice != "" {
		lines = append(lines, "", theme.NoticeStyle.Render(m.notice))
	}
	return theme.PanelStyle.Width(28).Align(lipgloss.Center).Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (m Model) renderMatrix() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Priority Matrix"))
	b.WriteString("\n")

	idx := 0
	for _, q := range m.quadrants {
		b.WriteString(theme.PriorityStyle(q.Priority).Render(fmt.Sprintf("%s · %d", q.Title, len(q.Tasks))))
		b.WriteString("\n")
		if len(q.Tasks) == 0 {
			b.WriteString(theme.HelpStyle.Render("  nothing here"))
			b.WriteString("\n")
		}
		for _, t := range q.Tasks {
			line := "☐ " + t.Content
			if t.DueDate != nil {
				line += lipgloss.NewStyle().Foreground(theme.ColorGray).Render("  due " + t.DueDate.Format("Jan 02"))
			}
			if idx == m.cursor {
				b.WriteString(theme.SelectedItemStyle.Render(line))
			} else {
				b.WriteString(theme.ListItemStyle.Render(line))
			}
			b.WriteString("\n")
			idx++
		}
		b.WriteString("\n")
	}
	if m.done > 0 {
		b.WriteString(theme.DimmedStyle.UnsetStrikethrough().Render(fmt.Sprintf("%d completed", m.done)))
	}
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
