package mailin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the poller's current activity.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

// Status describes the last poll.
type Status struct {
	State    State
	LastPoll time.Time
	Err      error
}

// PollResultMsg is a tea.Msg carrying a batch of unseen messages, or the
// error that stopped the fetch. A batch must be acknowledged with
// Poller.Done before the poller fetches again.
type PollResultMsg struct {
	Messages []Message
	Err      error
}

// fetchTimeout bounds a single fetch or flag update.
const fetchTimeout = 30 * time.Second

// Poller checks a mailbox on an interval. Fetching runs on the poller's
// goroutine; saving the notes stays with the receiver of PollResultMsg.
type Poller struct {
	mailbox  Mailbox
	interval time.Duration
	limit    int
	log      *slog.Logger

	results chan PollResultMsg
	trigger chan struct{}
	acks    chan []uint32
	stop    chan struct{}

	mu      sync.Mutex
	running bool
	status  Status
}

// NewPoller returns a poller over mb. It does nothing until Start.
func NewPoller(mb Mailbox, interval time.Duration, limit int, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{
		mailbox:  mb,
		interval: interval,
		limit:    limit,
		log:      log,
		results:  make(chan PollResultMsg, 1),
		trigger:  make(chan struct{}, 1),
		acks:     make(chan []uint32, 1),
		stop:     make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a command that waits
// for the first result. Starting a running poller is a no-op.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.run()
	return p.WaitForNext()
}

// Stop halts polling. A batch awaiting Done is abandoned, leaving its
// messages unseen on the server.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stop)
	p.running = false
}

// Refresh asks for an immediate poll. Its result is delivered even when
// there is no new mail.
func (p *Poller) Refresh() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Done acknowledges the last batch. uids are flagged seen before the
// next fetch.
func (p *Poller) Done(uids []uint32) {
	select {
	case p.acks <- uids:
	case <-p.stop:
	}
}

// Status reports the outcome of the last poll.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// WaitForNext returns a command that blocks until the next result. It
// yields nil once the poller is stopped.
func (p *Poller) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-p.results:
			return r
		case <-p.stop:
			return nil
		}
	}
}

func (p *Poller) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if !p.poll(false) {
		return
	}
	for {
		manual := false
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		case <-p.trigger:
			manual = true
		}
		if !p.poll(manual) {
			return
		}
	}
}

// poll fetches one batch and, when it is not empty, waits for it to be
// acknowledged. An empty batch is only reported when manual is set. It
// reports false once the poller is stopped.
func (p *Poller) poll(manual bool) bool {
	p.setStatus(StateRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	messages, err := p.mailbox.FetchUnseen(ctx, p.limit)
	cancel()
	if err != nil {
		p.log.Warn("polling mailbox", "err", err)
		p.setStatus(StateError, err)
		return p.send(PollResultMsg{Err: err})
	}
	if len(messages) == 0 {
		p.setStatus(StateIdle, nil)
		if manual {
			return p.send(PollResultMsg{})
		}
		return true
	}

	p.log.Debug("mail received", "count", len(messages))
	if !p.send(PollResultMsg{Messages: messages}) {
		return false
	}

	var uids []uint32
	select {
	case uids = <-p.acks:
	case <-p.stop:
		return false
	}

	ctx, cancel = context.WithTimeout(context.Background(), fetchTimeout)
	err = p.mailbox.MarkSeen(ctx, uids)
	cancel()
	if err != nil {
		p.log.Warn("marking mail seen", "err", err)
		p.setStatus(StateError, err)
		return true
	}
	p.setStatus(StateIdle, nil)
	return true
}

func (p *Poller) send(r PollResultMsg) bool {
	select {
	case p.results <- r:
		return true
	case <-p.stop:
		return false
	}
}

func (p *Poller) setStatus(state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = state
	p.status.Err = err
	if state == StateIdle {
		p.status.LastPoll = time.Now()
	}
}
