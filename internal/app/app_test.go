package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/smartnote/internal/account"
	"github.com/nhle/smartnote/internal/ai"
	"github.com/nhle/smartnote/internal/autosave"
	"github.com/nhle/smartnote/internal/credential"
	"github.com/nhle/smartnote/internal/logging"
	"github.com/nhle/smartnote/internal/mailin"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/router"
	"github.com/nhle/smartnote/internal/store"
	"github.com/nhle/smartnote/internal/ui/auth"
	"github.com/nhle/smartnote/internal/ui/chat"
	"github.com/nhle/smartnote/internal/ui/command"
	"github.com/nhle/smartnote/internal/ui/dashboard"
	"github.com/nhle/smartnote/internal/ui/editor"
	"github.com/nhle/smartnote/internal/ui/focusview"
	"github.com/nhle/smartnote/internal/ui/onboarding"
	"github.com/nhle/smartnote/internal/ui/recyclebin"
	"github.com/nhle/smartnote/internal/ui/settings"
	"github.com/nhle/smartnote/tests/testutil"
)

// stubGenerator answers every request with the same reply.
type stubGenerator struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (s *stubGenerator) Generate(context.Context, ai.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, nil
}

type fixture struct {
	repo *store.Repository
	nb   *notebook.Notebook
	gen  *stubGenerator
}

type option func(*fixture, *model.User)

func signedIn(tier model.Tier) option {
	return func(_ *fixture, u *model.User) {
		*u = model.User{Username: "ann", Email: "ann@example.com", IsAuthenticated: true, SubscriptionTier: tier}
	}
}

func newTestApp(t *testing.T, opts ...option) (Model, *fixture) {
	t.Helper()
	ctx := context.Background()

	f := &fixture{repo: testutil.NewTestRepository(t), gen: &stubGenerator{}}
	var u model.User
	for _, opt := range opts {
		opt(f, &u)
	}
	if u.IsAuthenticated {
		require.NoError(t, f.repo.SaveUser(ctx, u))
		require.NoError(t, f.repo.SetFlag(ctx, store.KeyTutorialComplete, true))
	}

	f.nb = notebook.New(f.repo)
	require.NoError(t, f.nb.Load(ctx))

	m := New(ctx, Deps{
		Config:   model.DefaultConfig(),
		Repo:     f.repo,
		Notebook: f.nb,
		Accounts: account.NewService(f.repo, account.WithCost(bcrypt.MinCost)),
		Vault:    credential.NewWithKeyring(keyring.NewArrayKeyring(nil)),
		Gateway:  ai.NewGateway(f.gen, ai.WithRetries(0)),
		Log:      logging.Discard(),
	})
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, f
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, _ = update(t, m, msg)
	return m
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and any batched commands, skipping the ones that block
// such as timers.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

func find[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func TestBoot_OnboardingThenLogin(t *testing.T) {
	m, f := newTestApp(t)
	assert.Equal(t, router.ViewOnboarding, m.router.Current())

	m = send(t, m, onboarding.CompleteMsg{})
	assert.Equal(t, router.ViewLogin, m.router.Current())

	seen, err := f.repo.Flag(context.Background(), store.KeyOnboardingComplete)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRegister_SignsInAndShowsTutorial(t *testing.T) {
	m, f := newTestApp(t)
	m = send(t, m, onboarding.CompleteMsg{})

	m, cmd := update(t, m, auth.RegisterMsg{Username: "bob", Email: "bob@example.com", Password: "secret123"})
	m = send(t, m, find[signedInMsg](t, run(cmd)))

	assert.Equal(t, router.ViewDashboard, m.router.Current())
	assert.True(t, m.router.ShowTutorial())
	assert.Equal(t, "bob@example.com", m.user.Email)

	u, err := f.repo.LoadUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsAuthenticated)
}

func TestLogin_WrongPasswordStaysOnLogin(t *testing.T) {
	m, _ := newTestApp(t)
	m = send(t, m, onboarding.CompleteMsg{})

	m, cmd := update(t, m, auth.LoginMsg{Email: "nobody@example.com", Password: "whatever1"})
	msg := find[signedInMsg](t, run(cmd))
	require.ErrorIs(t, msg.err, account.ErrInvalidCredentials)

	m = send(t, m, msg)
	assert.Equal(t, router.ViewLogin, m.router.Current())
	assert.False(t, m.router.SignedIn())
}

func TestEditor_SaveCreatesOnceAndAutosaves(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))

	m = send(t, m, dashboard.NewNoteMsg{})
	require.Equal(t, router.ViewEditor, m.router.Current())

	// An untouched blank note is never stored.
	m = send(t, m, editor.SaveMsg{})
	assert.Empty(t, f.nb.Notes())

	m.editor.SetTitle("Plan")
	m.editor.SetContent("ship it #release")
	m = send(t, m, editor.SaveMsg{})
	require.Len(t, f.nb.Notes(), 1)
	id := f.nb.Notes()[0].ID
	assert.Equal(t, id, m.router.ActiveNoteID())
	assert.Equal(t, []string{"release"}, f.nb.Notes()[0].Tags)

	m.editor.SetContent("ship it on friday")
	m = send(t, m, autosave.DueMsg{NoteID: id})
	require.Len(t, f.nb.Notes(), 1)
	assert.Equal(t, "ship it on friday", f.nb.Notes()[0].Content)

	// A timer for another note is ignored.
	m.editor.SetContent("ignored")
	m = send(t, m, autosave.DueMsg{NoteID: "other"})
	assert.Equal(t, "ship it on friday", f.nb.Notes()[0].Content)

	m = send(t, m, editor.CloseMsg{})
	assert.Equal(t, router.ViewDashboard, m.router.Current())
	assert.Equal(t, "ignored", f.nb.Notes()[0].Content, "closing saves the open note")
}

func TestOrganizer_StaleResponseDropped(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))
	ctx := context.Background()
	a := f.nb.SaveNote(ctx, "", notebook.NoteDraft{Title: "A", Content: "alpha"})
	f.nb.SaveNote(ctx, "", notebook.NoteDraft{Title: "B", Content: "beta"})
	m.refreshCmd()
	f.gen.reply = `[{"topic":"Letters","description":"d","noteIds":["` + a.ID + `"]}]`

	m, cmd := update(t, m, press("o"))
	require.NotNil(t, cmd)
	assert.True(t, m.router.Loading())

	m = send(t, m, press("t"))
	require.Equal(t, router.ViewFocus, m.router.Current())

	m = send(t, m, find[organizerMsg](t, run(cmd)))
	assert.Equal(t, router.ViewFocus, m.router.Current())
	assert.False(t, m.router.Loading())

	m = send(t, m, focusview.CloseMsg{})
	m, cmd = update(t, m, press("o"))
	m = send(t, m, find[organizerMsg](t, run(cmd)))
	assert.Equal(t, router.ViewSmartView, m.router.Current())
	require.Len(t, m.smart.Topics(), 1)
}

func TestOrganizer_NeedsTwoNotes(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))
	m, cmd := update(t, m, press("o"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.alert, "two notes")
	assert.Zero(t, f.gen.calls)
}

func TestEditorAI_TitleApplied(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))
	f.gen.reply = "Launch Checklist"

	m = send(t, m, dashboard.NewNoteMsg{})
	m.editor.SetContent("book the room, send invites")

	m, cmd := update(t, m, editor.AIRequestMsg{Action: editor.ActionTitle})
	assert.True(t, m.editor.Busy())
	m = send(t, m, find[editorAIMsg](t, run(cmd)))

	assert.False(t, m.editor.Busy())
	assert.False(t, m.router.Loading())
	assert.Equal(t, "Launch Checklist", m.editor.Title())
}

func TestChat_ProOnly(t *testing.T) {
	m, _ := newTestApp(t, signedIn(model.TierFree))
	m = send(t, m, press("c"))
	assert.Equal(t, router.ViewDashboard, m.router.Current())
	assert.True(t, m.router.ShowSubscription())
	assert.Contains(t, m.alert, "Pro")

	m, _ = newTestApp(t, signedIn(model.TierPremium))
	m = send(t, m, press("c"))
	assert.Equal(t, router.ViewChat, m.router.Current())
}

func TestChat_AnswerAfterLogoutDropped(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierPremium))
	m = send(t, m, press("c"))
	require.Equal(t, router.ViewChat, m.router.Current())

	f.gen.reply = "Pineapple"
	m, cmd := update(t, m, chat.SendMsg{Query: "favourite fruit?"})
	m = send(t, m, find[chatAnswerMsg](t, run(cmd)))
	assert.Contains(t, m.chat.View(), "Pineapple")

	f.gen.reply = "Mango"
	m, cmd = update(t, m, chat.SendMsg{Query: "and the other one?"})
	late := find[chatAnswerMsg](t, run(cmd))

	m = send(t, m, settings.LogoutMsg{})
	m = send(t, m, late)
	assert.False(t, m.router.Loading())
	assert.NotContains(t, m.chat.View(), "Mango")
	assert.NotContains(t, m.chat.View(), "Pineapple")
}

func TestPurge_RequiresRecycleBin(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))
	n := f.nb.SaveNote(context.Background(), "", notebook.NoteDraft{Title: "Keep"})

	m = send(t, m, recyclebin.PurgeMsg{NoteID: n.ID})
	assert.Contains(t, m.alert, "Recycle Bin")
	_, ok := f.nb.Note(n.ID)
	assert.True(t, ok)

	m = send(t, m, dashboard.DeleteNoteMsg{NoteID: n.ID})
	m = send(t, m, recyclebin.PurgeMsg{NoteID: n.ID})
	_, ok = f.nb.Note(n.ID)
	assert.False(t, ok)
	assert.Equal(t, "Note deleted forever.", m.notice)
}

func TestCommand_Theme(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))

	m = send(t, m, command.CommandMsg("theme dark"))
	assert.Equal(t, string(model.ThemeDark), m.cfg.Display.Theme)
	got, err := f.repo.LoadTheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, got)

	m = send(t, m, command.CommandMsg("theme neon"))
	assert.Contains(t, m.alert, "Unknown theme")
}

func TestLogout(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierPremium))

	m = send(t, m, settings.LogoutMsg{})
	assert.Equal(t, router.ViewLogin, m.router.Current())
	assert.False(t, m.router.SignedIn())
	assert.Empty(t, m.user.Email)

	u, err := f.repo.LoadUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSettingsImport(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))
	dir := t.TempDir()
	doc := "---\ntitle: Trip\nfolder: Travel\npinned: true\n---\npack bags\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trip.md"), []byte(doc), 0o644))

	m = send(t, m, press(","))
	m, cmd := update(t, m, settings.ImportMsg{Root: dir})
	m = send(t, m, find[importReadMsg](t, run(cmd)))

	require.Len(t, f.nb.Notes(), 1)
	n := f.nb.Notes()[0]
	assert.Equal(t, "Trip", n.Title)
	assert.True(t, n.IsPinned)
	folder, ok := f.nb.Folder(n.FolderID)
	require.True(t, ok)
	assert.Equal(t, "Travel", folder.Name)
	assert.Contains(t, m.settings.View(), "Imported 1 notes.")
}

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n0000")

	p := filepath.Join(dir, "Sketch-01.png")
	require.NoError(t, os.WriteFile(p, png, 0o644))
	a, kind, err := readAttachment(p)
	require.NoError(t, err)
	assert.Equal(t, model.MediaDrawing, kind)
	assert.Equal(t, model.AttachmentDrawing, a.Kind)
	assert.Equal(t, "image/png", a.MimeType)
	assert.Equal(t, "Sketch-01.png", a.FileName)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain"), 0o644))
	a, kind, err = readAttachment(txt)
	require.NoError(t, err)
	assert.Empty(t, kind)
	assert.Equal(t, model.AttachmentFile, a.Kind)

	big := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", maxAttachmentSize+1)), 0o644))
	_, _, err = readAttachment(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limited to")
}

// memMailbox forgets messages once they are flagged seen.
type memMailbox struct {
	mu       sync.Mutex
	messages []mailin.Message
	seen     []uint32
}

func (b *memMailbox) FetchUnseen(context.Context, int) ([]mailin.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mailin.Message(nil), b.messages...), nil
}

func (b *memMailbox) MarkSeen(_ context.Context, uids []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = append(b.seen, uids...)
	b.messages = nil
	return nil
}

func (b *memMailbox) seenUIDs() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint32(nil), b.seen...)
}

func TestMailPolling_ImportsAndAcknowledges(t *testing.T) {
	m, f := newTestApp(t, signedIn(model.TierFree))
	box := &memMailbox{messages: []mailin.Message{
		{Envelope: mailin.Envelope{UID: 11, Subject: "From the road"}, TextBody: "call #mom"},
	}}
	p := mailin.NewPoller(box, time.Hour, 10, logging.Discard())
	t.Cleanup(p.Stop)

	m, cmd := update(t, m, pollerMsg{poller: p})
	require.Same(t, p, m.poller)

	m = send(t, m, find[mailPolledMsg](t, run(cmd)))
	notes := f.nb.Live()
	require.Len(t, notes, 1)
	assert.Equal(t, "From the road", notes[0].Title)
	assert.Equal(t, []string{"mom"}, notes[0].Tags)
	assert.Equal(t, "Imported 1 notes from mail.", m.notice)
	assert.Eventually(t, func() bool { return len(box.seenUIDs()) == 1 }, time.Second, 5*time.Millisecond)

	stale := mailin.NewPoller(box, time.Hour, 10, logging.Discard())
	m = send(t, m, mailPolledMsg{poller: stale, result: mailin.PollResultMsg{
		Messages: []mailin.Message{{Envelope: mailin.Envelope{UID: 12, Subject: "late"}}},
	}})
	assert.Len(t, f.nb.Live(), 1, "results from a replaced poller are dropped")

	m, _ = update(t, m, settings.LogoutMsg{})
	assert.Nil(t, m.poller)
}

func TestMailPolling_UpdatesSearchedDashboard(t *testing.T) {
	m, _ := newTestApp(t, signedIn(model.TierFree))
	m.dashboard, _ = m.dashboard.Update(press("/"))
	m.dashboard, _ = m.dashboard.Update(press("road"))
	m.dashboard, _ = m.dashboard.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "road", m.dashboard.Query())
	require.Empty(t, m.dashboard.Shown())

	box := &memMailbox{messages: []mailin.Message{
		{Envelope: mailin.Envelope{UID: 21, Subject: "Notes from the road"}, TextBody: "mile 40"},
	}}
	p := mailin.NewPoller(box, time.Hour, 10, logging.Discard())
	t.Cleanup(p.Stop)

	m, cmd := update(t, m, pollerMsg{poller: p})
	m, cmd = update(t, m, find[mailPolledMsg](t, run(cmd)))
	require.NotNil(t, cmd)

	shown := m.dashboard.Shown()
	require.Len(t, shown, 1, "the active search sees mail imported in the background")
	assert.Equal(t, "Notes from the road", shown[0].Title)
}

func TestMailPolling_OffByDefault(t *testing.T) {
	m, _ := newTestApp(t, signedIn(model.TierFree))
	assert.Nil(t, m.startPolling())
}
