package mailin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/logging"
)

// inbox is a mailbox whose seen messages stop being returned.
type inbox struct {
	mu       sync.Mutex
	messages []Message
	fetchErr error
	fetches  int
	seen     []uint32
}

func (b *inbox) FetchUnseen(_ context.Context, _ int) ([]Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return append([]Message(nil), b.messages...), nil
}

func (b *inbox) MarkSeen(_ context.Context, uids []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = append(b.seen, uids...)
	flagged := make(map[uint32]bool, len(uids))
	for _, u := range uids {
		flagged[u] = true
	}
	kept := b.messages[:0]
	for _, m := range b.messages {
		if !flagged[m.Envelope.UID] {
			kept = append(kept, m)
		}
	}
	b.messages = kept
	return nil
}

func (b *inbox) deliver(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, m)
}

func (b *inbox) seenUIDs() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint32(nil), b.seen...)
}

// next runs cmd with a deadline so a missing result fails the test.
func next(t *testing.T, cmd func() any) any {
	t.Helper()
	done := make(chan any, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poll result")
		return nil
	}
}

func TestPoller_DeliversAndMarksSeen(t *testing.T) {
	box := &inbox{messages: []Message{{Envelope: Envelope{UID: 3, Subject: "hi"}}}}
	p := NewPoller(box, time.Hour, 10, logging.Discard())
	defer p.Stop()

	start := p.Start()
	require.NotNil(t, start)
	assert.Nil(t, p.Start(), "second start is a no-op")

	msg := next(t, func() any { return start() })
	res, ok := msg.(PollResultMsg)
	require.True(t, ok)
	require.NoError(t, res.Err)
	require.Len(t, res.Messages, 1)

	p.Done([]uint32{3})
	assert.Eventually(t, func() bool { return len(box.seenUIDs()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []uint32{3}, box.seenUIDs())
	assert.Eventually(t, func() bool { return p.Status().State == StateIdle }, time.Second, 5*time.Millisecond)

	box.deliver(Message{Envelope: Envelope{UID: 4, Subject: "again"}})
	p.Refresh()
	msg = next(t, func() any { return p.WaitForNext()() })
	res = msg.(PollResultMsg)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, uint32(4), res.Messages[0].Envelope.UID)
}

func TestPoller_RefreshReportsEmpty(t *testing.T) {
	box := &inbox{}
	p := NewPoller(box, time.Hour, 10, logging.Discard())
	defer p.Stop()

	wait := p.Start()
	p.Refresh()
	msg := next(t, func() any { return wait() })
	res := msg.(PollResultMsg)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Messages)
}

func TestPoller_FetchError(t *testing.T) {
	boom := errors.New("login failed")
	p := NewPoller(&inbox{fetchErr: boom}, time.Hour, 10, logging.Discard())
	defer p.Stop()

	msg := next(t, func() any { return p.Start()() })
	res := msg.(PollResultMsg)
	assert.ErrorIs(t, res.Err, boom)
	assert.Eventually(t, func() bool { return p.Status().State == StateError }, time.Second, 5*time.Millisecond)
}

func TestPoller_StopReleasesWaiters(t *testing.T) {
	box := &inbox{}
	p := NewPoller(box, time.Hour, 10, logging.Discard())
	wait := p.Start()

	p.Stop()
	p.Stop()
	assert.Nil(t, next(t, func() any { return wait() }))
	p.Done(nil)
}
