package autosave

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 20 * time.Millisecond

func waitDue(t *testing.T, s *Scheduler) DueMsg {
	t.Helper()
	select {
	case msg := <-s.dueCh:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no save became due")
		return DueMsg{}
	}
}

func assertQuiet(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	select {
	case msg := <-s.dueCh:
		t.Fatalf("unexpected save for %q", msg.NoteID)
	case <-time.After(d):
	}
}

func TestScheduler_Defaults(t *testing.T) {
	assert.Equal(t, DefaultDelay, New(0).Delay())
	assert.Equal(t, testDelay, New(testDelay).Delay())
}

func TestScheduler_FiresAfterDelay(t *testing.T) {
	s := New(testDelay)
	s.Schedule("n1")
	assert.True(t, s.Pending("n1"))

	msg := waitDue(t, s)
	assert.Equal(t, "n1", msg.NoteID)
	assert.False(t, s.Pending("n1"))
	assert.Equal(t, 0, s.PendingCount())
}

func TestScheduler_RescheduleDebounces(t *testing.T) {
	s := New(testDelay)
	for range 5 {
		s.Schedule("n1")
		time.Sleep(testDelay / 4)
	}
	assert.Equal(t, 1, s.PendingCount(), "one pending save per note")

	assert.Equal(t, "n1", waitDue(t, s).NoteID)
	assertQuiet(t, s, 3*testDelay)
}

func TestScheduler_IndependentNotes(t *testing.T) {
	s := New(testDelay)
	s.Schedule("a")
	s.Schedule("b")
	assert.Equal(t, 2, s.PendingCount())

	got := []string{waitDue(t, s).NoteID, waitDue(t, s).NoteID}
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestScheduler_FlushAndCancel(t *testing.T) {
	s := New(testDelay)

	s.Schedule("n1")
	assert.True(t, s.Flush("n1"))
	assert.False(t, s.Flush("n1"), "nothing left to flush")

	s.Schedule("n2")
	assert.True(t, s.Cancel("n2"))
	assert.False(t, s.Cancel("missing"))

	assertQuiet(t, s, 3*testDelay)
}

func TestScheduler_Stop(t *testing.T) {
	s := New(testDelay)
	s.Schedule("a")
	s.Schedule("b")

	ids := s.Stop()
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b"}, ids)

	s.Schedule("c")
	assert.Equal(t, 0, s.PendingCount(), "stopped scheduler rejects new saves")
	assertQuiet(t, s, 3*testDelay)
}

func TestScheduler_WaitForDue(t *testing.T) {
	s := New(testDelay)
	s.Schedule("n1")

	msg := s.WaitForDue()()
	due, ok := msg.(DueMsg)
	require.True(t, ok)
	assert.Equal(t, "n1", due.NoteID)
}
