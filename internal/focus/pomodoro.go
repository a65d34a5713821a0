// Package focus implements the Pomodoro timer and the Eisenhower matrix
// shown on the focus screen.
package focus

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Phase is the kind of interval the timer is counting down.
type Phase int

const (
	PhaseWork Phase = iota
	PhaseBreak
)

const (
	WorkDuration  = 25 * time.Minute
	BreakDuration = 5 * time.Minute
)

func (p Phase) String() string {
	if p == PhaseBreak {
		return "Short Break"
	}
	return "Focus Timer"
}

// Duration is the full length of the phase.
func (p Phase) Duration() time.Duration {
	if p == PhaseBreak {
		return BreakDuration
	}
	return WorkDuration
}

// TickMsg advances a running Pomodoro by one second.
type TickMsg struct {
	ID int64
}

// Pomodoro counts down whole seconds. When a phase reaches zero the timer
// stops, switches phase and reloads the new phase's duration.
type Pomodoro struct {
	id        int64
	phase     Phase
	remaining time.Duration
	running   bool
}

var lastID atomic.Int64

// NewPomodoro returns a stopped timer at the start of a work phase.
func NewPomodoro() *Pomodoro {
	return &Pomodoro{id: lastID.Add(1), phase: PhaseWork, remaining: WorkDuration}
}

func (p *Pomodoro) Phase() Phase             { return p.phase }
func (p *Pomodoro) Remaining() time.Duration { return p.remaining }
func (p *Pomodoro) Running() bool            { return p.running }

// Toggle starts or pauses the countdown. Starting returns the tick command.
func (p *Pomodoro) Toggle() tea.Cmd {
	p.running = !p.running
	if p.running {
		return p.tick()
	}
	return nil
}

// Reset stops the timer and reloads the current phase.
func (p *Pomodoro) Reset() {
	p.running = false
	p.remaining = p.phase.Duration()
}

// Update handles a tick. It returns the next tick command while running,
// and completed is true when the tick ended a phase.
func (p *Pomodoro) Update(msg TickMsg) (cmd tea.Cmd, completed bool) {
	if msg.ID != p.id || !p.running {
		return nil, false
	}
	if p.Advance() {
		return nil, true
	}
	return p.tick(), false
}

// Advance removes one second and reports whether that finished the phase.
func (p *Pomodoro) Advance() bool {
	if p.remaining > time.Second {
		p.remaining -= time.Second
		return false
	}

	p.running = false
	if p.phase == PhaseWork {
		p.phase = PhaseBreak
	} else {
		p.phase = PhaseWork
	}
	p.remaining = p.phase.Duration()
	return true
}

// CompletionNotice is the message shown when a phase ends; finished is the
// phase that just completed.
func CompletionNotice(finished Phase) string {
	if finished == PhaseWork {
		return "Focus session complete! Take a break."
	}
	return "Break over! Back to work."
}

// Clock formats the remaining time as MM:SS.
func (p *Pomodoro) Clock() string {
	secs := int(p.remaining / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func (p *Pomodoro) tick() tea.Cmd {
	id := p.id
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{ID: id}
	})
}
