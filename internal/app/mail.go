package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/credential"
	"github.com/nhle/smartnote/internal/mailin"
	"github.com/nhle/smartnote/internal/notebook"
)

type mailFetchedMsg struct {
	client   *mailin.Client
	messages []mailin.Message
	err      error
}

type mailSeenMsg struct {
	count int
	err   error
}

// pollerMsg hands a poller built off the update loop back to it.
type pollerMsg struct {
	poller *mailin.Poller
	err    error
}

// mailPolledMsg is a poll result tagged with the poller that produced it.
type mailPolledMsg struct {
	poller *mailin.Poller
	result mailin.PollResultMsg
}

func (m Model) pollingEnabled() bool {
	c := m.cfg.Mailin
	return c.PollMinutes > 0 && c.Host != "" && c.Username != ""
}

// startPolling reads the IMAP password and builds a poller. The keyring
// may block, so this runs as a command.
func (m Model) startPolling() tea.Cmd {
	if !m.pollingEnabled() {
		return nil
	}
	cfg, vault, log := m.cfg.Mailin, m.vault, m.log
	return func() tea.Msg {
		pw, err := vault.Get(credential.KeyIMAPPassword)
		if err != nil {
			return pollerMsg{err: err}
		}
		interval := time.Duration(cfg.PollMinutes) * time.Minute
		return pollerMsg{poller: mailin.NewPoller(mailin.NewClient(cfg, pw), interval, cfg.Limit, log)}
	}
}

func (m *Model) pollerReady(msg pollerMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("mail polling disabled", "err", msg.err)
		return nil
	}
	if !m.router.SignedIn() || m.poller != nil {
		msg.poller.Stop()
		return nil
	}
	m.poller = msg.poller
	m.log.Info("mail polling started", "every", time.Duration(m.cfg.Mailin.PollMinutes)*time.Minute)
	return listenMail(m.poller, m.poller.Start())
}

func (m *Model) stopPolling() {
	if m.poller == nil {
		return
	}
	m.poller.Stop()
	m.poller = nil
}

// listenMail tags the next result of cmd with p.
func listenMail(p *mailin.Poller, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := cmd().(mailin.PollResultMsg)
		if !ok {
			return nil
		}
		return mailPolledMsg{poller: p, result: r}
	}
}

// mailPolled saves a polled batch as notes and acknowledges it so the
// poller flags the messages seen.
func (m *Model) mailPolled(msg mailPolledMsg) tea.Cmd {
	if msg.poller != m.poller {
		return nil
	}
	p := msg.poller
	if msg.result.Err != nil {
		m.settings.SetStatus("Mail check failed: " + msg.result.Err.Error())
		return listenMail(p, p.WaitForNext())
	}
	if len(msg.result.Messages) == 0 {
		m.settings.SetStatus("No new mail.")
		return listenMail(p, p.WaitForNext())
	}

	uids, refresh := m.saveMail(msg.result.Messages)
	p.Done(uids)

	status := fmt.Sprintf("Imported %d notes from mail.", len(uids))
	m.settings.SetStatus(status)
	m.notice = status
	return tea.Batch(refresh, listenMail(p, p.WaitForNext()))
}

func (m *Model) saveMail(messages []mailin.Message) ([]uint32, tea.Cmd) {
	ctx := context.Background()
	uids := make([]uint32, 0, len(messages))
	for _, mail := range messages {
		n := m.notebook.SaveNote(ctx, "", mailin.ToDraft(mail, notebook.NewID))
		m.log.Info("imported mail", "uid", mail.Envelope.UID, "note", n.ID)
		uids = append(uids, mail.Envelope.UID)
	}
	return uids, m.refreshCmd()
}

// fetchMail checks the mailbox now. With polling on, the poller does the
// fetch so a message cannot be imported twice.
func (m *Model) fetchMail() tea.Cmd {
	if m.poller != nil {
		m.poller.Refresh()
		return nil
	}
	cfg, vault := m.cfg.Mailin, m.vault
	return func() tea.Msg {
		pw, err := vault.Get(credential.KeyIMAPPassword)
		if err != nil {
			return mailFetchedMsg{err: err}
		}
		c := mailin.NewClient(cfg, pw)
		msgs, err := c.FetchUnseen(context.Background(), cfg.Limit)
		return mailFetchedMsg{client: c, messages: msgs, err: err}
	}
}

func (m *Model) mailFetched(msg mailFetchedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error("fetching mail", "err", msg.err)
		m.settings.SetStatus("Mail import failed: " + msg.err.Error())
		return nil
	}
	if len(msg.messages) == 0 {
		m.settings.SetStatus("No new mail.")
		return nil
	}

	uids, refresh := m.saveMail(msg.messages)
	client := msg.client
	return tea.Batch(refresh, func() tea.Msg {
		return mailSeenMsg{count: len(uids), err: client.MarkSeen(context.Background(), uids)}
	})
}

func (m *Model) mailSeen(msg mailSeenMsg) {
	status := fmt.Sprintf("Imported %d notes from mail.", msg.count)
	if msg.err != nil {
		m.log.Warn("marking mail seen", "err", msg.err)
		status += " They could not be marked as read."
	}
	m.settings.SetStatus(status)
	m.notice = status
}
