// Package autosave debounces note saves. Editing a note schedules a save;
// further edits push it back. When the delay expires a DueMsg is delivered
// to the Bubble Tea runtime, which performs the save on its own goroutine.
package autosave

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet period after the last edit.
const DefaultDelay = 3 * time.Second

// DueMsg is a tea.Msg sent when a note's quiet period has elapsed.
type DueMsg struct {
	NoteID string
}

type pending struct {
	timer *time.Timer
	gen   uint64
}

// Scheduler holds at most one pending save per note.
type Scheduler struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*pending
	gen     uint64
	dueCh   chan DueMsg
	stopped bool
}

// New creates a Scheduler. A non-positive delay uses DefaultDelay.
func New(delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{
		delay:   delay,
		pending: make(map[string]*pending),
		dueCh:   make(chan DueMsg, 16),
	}
}

// Delay returns the configured quiet period.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Schedule arms a save for noteID, replacing any save already pending.
func (s *Scheduler) Schedule(noteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if p, ok := s.pending[noteID]; ok {
		p.timer.Stop()
	}

	s.gen++
	gen := s.gen
	s.pending[noteID] = &pending{
		gen:   gen,
		timer: time.AfterFunc(s.delay, func() { s.fire(noteID, gen) }),
	}
}

// fire delivers a DueMsg unless the save was re-armed or cancelled after
// this timer was created.
func (s *Scheduler) fire(noteID string, gen uint64) {
	s.mu.Lock()
	p, ok := s.pending[noteID]
	if !ok || p.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.pending, noteID)
	s.mu.Unlock()

	s.dueCh <- DueMsg{NoteID: noteID}
}

// Flush cancels the timer for noteID and reports whether a save was
// pending. The caller saves immediately when it returns true.
func (s *Scheduler) Flush(noteID string) bool {
	return s.Cancel(noteID)
}

// Cancel drops the pending save for noteID, reporting whether there was one.
func (s *Scheduler) Cancel(noteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[noteID]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.pending, noteID)
	return true
}

// Pending reports whether a save is armed for noteID.
func (s *Scheduler) Pending(noteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[noteID]
	return ok
}

// PendingCount returns the number of armed saves.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending save and rejects new ones. It returns the
// ids that were still pending so the caller can save them before exit.
func (s *Scheduler) Stop() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		ids = append(ids, id)
	}
	s.pending = make(map[string]*pending)
	s.stopped = true
	return ids
}

// WaitForDue returns a tea.Cmd that blocks until the next save is due.
// Call it again after handling each DueMsg to keep listening.
func (s *Scheduler) WaitForDue() tea.Cmd {
	return func() tea.Msg {
		return <-s.dueCh
	}
}
