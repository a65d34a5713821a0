package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/smartnote/internal/ai"
	"github.com/nhle/smartnote/internal/credential"
	"github.com/nhle/smartnote/internal/hashtag"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/router"
	"github.com/nhle/smartnote/internal/ui/editor"
)

// maxAttachmentSize bounds files attached from the editor.
const maxAttachmentSize = 5 << 20

const noProviderAlert = "AI is not configured. Add an API key in Settings (,)."

// request is carried by every AI result so the update loop can clear the
// loading flag and drop answers for screens no longer shown.
type request struct {
	ticket router.Ticket
	done   func()
}

type organizerMsg struct {
	request
	result ai.Result[[]model.TocItem]
}

type studyMsg struct {
	request
	source string
	quiz   ai.Result[[]model.QuizQuestion]
	cards  ai.Result[[]model.Flashcard]
	root   ai.Result[*model.MindMapNode]
}

type insightMsg struct {
	request
	result ai.Result[string]
}

type chatAnswerMsg struct {
	request
	session uint64
	result  ai.Result[string]
}

type editorAIMsg struct {
	request
	action editor.Action
	option string
	text   ai.Result[string]
	tags   ai.Result[[]string]
	tasks  ai.Result[[]model.Task]
}

type attachMsg struct {
	request
	attachment model.Attachment
	kind       model.MediaKind
	analysis   ai.Result[string]
}

// NewGateway builds the AI gateway for cfg, reading the provider key from
// the vault. A missing key yields a gateway that reports itself
// unavailable.
func NewGateway(ctx context.Context, cfg model.AIConfig, vault *credential.Vault, opts ...ai.Option) (*ai.Gateway, error) {
	key, err := vault.APIKey(cfg.Provider)
	if err != nil {
		return ai.NewGateway(nil, opts...), fmt.Errorf("reading API key: %w", err)
	}
	gen, err := ai.NewGenerator(ctx, cfg, key)
	if err != nil {
		return ai.NewGateway(nil, opts...), err
	}
	return ai.NewGateway(gen, opts...), nil
}

// GatewayOptions are the tuning options derived from cfg.
func GatewayOptions(cfg model.AIConfig, log *slog.Logger) []ai.Option {
	opts := []ai.Option{ai.WithLogger(log)}
	if cfg.TimeoutSec > 0 {
		opts = append(opts, ai.WithTimeout(seconds(cfg.TimeoutSec)))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, ai.WithRetries(cfg.MaxRetries))
	}
	return opts
}

func (m Model) gatewayOptions() []ai.Option {
	return GatewayOptions(m.cfg.AI, m.log)
}

// begin starts an AI call: it raises the loading flag and captures the
// ticket of the current screen.
func (m *Model) begin() request {
	return request{ticket: m.router.Ticket(), done: m.router.BeginLoading()}
}

// finish clears the loading flag and reports whether the answer is still
// wanted.
func (m *Model) finish(r request) bool {
	if r.done != nil {
		r.done()
	}
	if !m.router.IsCurrent(r.ticket) {
		m.log.Debug("dropping stale AI response", "view", r.ticket.View)
		return false
	}
	return true
}

// requireAI reports whether a provider is configured, raising an alert
// when it is not.
func (m *Model) requireAI() bool {
	if m.gateway.Available() {
		return true
	}
	m.alert = noProviderAlert
	return false
}

func (m *Model) runOrganizer() tea.Cmd {
	notes := m.notebook.Visible("")
	if len(notes) < 2 {
		m.alert = "Add at least two notes to organize."
		return nil
	}
	if !m.requireAI() {
		return nil
	}
	req := m.begin()
	g := m.gateway
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return organizerMsg{request: req, result: g.TableOfContents(context.Background(), notes)}
	})
}

func (m *Model) organizerDone(msg organizerMsg) tea.Cmd {
	if !m.finish(msg.request) {
		return nil
	}
	if msg.result.Degraded() || len(msg.result.Value) == 0 {
		m.alert = "The organizer could not group your notes. Try again."
		return nil
	}
	m.smart.SetTOC(msg.result.Value, m.notebook.Notes())
	return m.navigate(router.ViewSmartView)
}

// runStudy builds a quiz from the visible notes plus flashcards and a mind
// map from the first one, generated concurrently.
func (m *Model) runStudy() tea.Cmd {
	notes := m.notebook.Visible("")
	if len(notes) == 0 {
		m.alert = "Write a note first to study it."
		return nil
	}
	if !m.requireAI() {
		return nil
	}
	req := m.begin()
	g := m.gateway
	first := notes[0]
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		msg := studyMsg{request: req, source: first.Title}
		var eg errgroup.Group
		eg.Go(func() error {
			msg.quiz = g.Quiz(context.Background(), notes)
			return nil
		})
		eg.Go(func() error {
			msg.cards = g.Flashcards(context.Background(), first.Content)
			return nil
		})
		eg.Go(func() error {
			msg.root = g.MindMap(context.Background(), first.Content)
			return nil
		})
		_ = eg.Wait()
		return msg
	})
}

func (m *Model) studyDone(msg studyMsg) tea.Cmd {
	if !m.finish(msg.request) {
		return nil
	}
	if msg.quiz.Degraded() && msg.cards.Degraded() && msg.root.Degraded() {
		m.alert = "Study material could not be generated. Try again."
		return nil
	}
	if msg.quiz.Degraded() || msg.cards.Degraded() || msg.root.Degraded() {
		m.alert = "Some study material could not be generated."
	}
	m.quiz.Start(msg.quiz.Value, msg.source)
	m.flashcards.SetCards(msg.cards.Value)
	m.mindmap.SetRoot(msg.root.Value)
	return m.navigate(router.ViewQuiz)
}

func (m *Model) runInsight() tea.Cmd {
	if !m.requireAI() {
		return nil
	}
	req := m.begin()
	g := m.gateway
	notes := m.notebook.Live()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return insightMsg{request: req, result: g.Insight(context.Background(), notes)}
	})
}

func (m *Model) insightDone(msg insightMsg) {
	if !m.finish(msg.request) {
		return
	}
	if msg.result.Degraded() {
		m.alert = "Insight unavailable right now."
	}
	m.dashboard.SetInsight(msg.result.Value)
}

// openChat opens the assistant. Chat is a Pro feature.
func (m *Model) openChat() tea.Cmd {
	if !m.user.IsPremium() {
		m.openSubscription()
		m.alert = "Chat is a Pro feature."
		return nil
	}
	return m.navigate(router.ViewChat)
}

// askChat sends a question with every live note as context. Answers are
// delivered even if the user left the chat view, but not once the
// conversation was reset or the user signed out.
func (m *Model) askChat(query string) tea.Cmd {
	req := m.begin()
	session := m.chatSession
	g := m.gateway
	notes := m.notebook.Live()
	return func() tea.Msg {
		return chatAnswerMsg{request: req, session: session, result: g.Chat(context.Background(), query, notes)}
	}
}

func (m *Model) chatDone(msg chatAnswerMsg) {
	msg.done()
	if msg.session != m.chatSession {
		m.log.Debug("dropping chat answer from an ended conversation")
		return
	}
	m.chat.Answer(msg.result.Value, msg.result.Degraded())
}

// resetChat ends the conversation. Answers still in flight are dropped.
func (m *Model) resetChat() {
	m.chatSession++
	m.gateway.ResetChat()
}

// runEditorAI starts an AI action on the open note.
func (m *Model) runEditorAI(req editor.AIRequestMsg) tea.Cmd {
	if !m.requireAI() {
		return nil
	}
	content := m.editor.Content()
	if strings.TrimSpace(content) == "" {
		m.editor.SetNotice("Write something first.")
		return nil
	}

	// Extracted tasks link back to their note, so it needs an id.
	var noteID string
	if req.Action == editor.ActionTasks {
		m.saveEditor()
		noteID = m.editor.NoteID()
	}

	r := m.begin()
	g := m.gateway
	busy := m.editor.SetBusy(busyLabel(req.Action))
	return tea.Batch(busy, func() tea.Msg {
		ctx := context.Background()
		out := editorAIMsg{request: r, action: req.Action, option: req.Option}
		switch req.Action {
		case editor.ActionSummary:
			out.text = g.Summarize(ctx, content, model.SummaryType(req.Option))
		case editor.ActionRewrite:
			out.text = g.Rewrite(ctx, content, model.RewriteMode(req.Option))
		case editor.ActionTranslate:
			out.text = g.Translate(ctx, content, req.Option)
		case editor.ActionFormat:
			out.text = g.AutoFormat(ctx, content)
		case editor.ActionTitle:
			out.text = g.AutoTitle(ctx, content)
		case editor.ActionTags:
			out.tags = g.AutoTag(ctx, content)
		case editor.ActionTasks:
			out.tasks = g.ExtractTasks(ctx, content, noteID)
		}
		return out
	})
}

func busyLabel(a editor.Action) string {
	switch a {
	case editor.ActionSummary:
		return "Summarizing..."
	case editor.ActionRewrite:
		return "Rewriting..."
	case editor.ActionTranslate:
		return "Translating..."
	case editor.ActionFormat:
		return "Formatting..."
	case editor.ActionTitle:
		return "Thinking of a title..."
	case editor.ActionTags:
		return "Tagging..."
	case editor.ActionTasks:
		return "Finding tasks..."
	}
	return "Working..."
}

// editorAIDone applies an AI answer to the open note and schedules a save.
func (m *Model) editorAIDone(msg editorAIMsg) tea.Cmd {
	if !m.finish(msg.request) {
		return nil
	}
	m.editor.ClearBusy()

	switch msg.action {
	case editor.ActionSummary:
		if msg.text.Degraded() {
			m.editor.SetNotice(msg.text.Value)
			return nil
		}
		m.editor.AppendContent(fmt.Sprintf("### ✨ AI Summary (%s)\n%s", msg.option, msg.text.Value))
	case editor.ActionRewrite, editor.ActionTranslate, editor.ActionFormat:
		if msg.text.Degraded() {
			m.editor.SetNotice("AI request failed; your note is unchanged.")
			return nil
		}
		m.editor.SetContent(msg.text.Value)
	case editor.ActionTitle:
		m.editor.SetTitle(msg.text.Value)
	case editor.ActionTags:
		if msg.tags.Degraded() {
			m.editor.SetNotice("Could not suggest tags.")
			return nil
		}
		m.editor.SetTags(hashtag.Merge(m.editor.Tags(), msg.tags.Value))
	case editor.ActionTasks:
		return m.tasksExtracted(msg.tasks)
	}
	m.scheduleSave()
	return nil
}

func (m *Model) tasksExtracted(r ai.Result[[]model.Task]) tea.Cmd {
	if len(r.Value) == 0 {
		if r.Degraded() {
			m.editor.SetNotice("Task extraction failed.")
		} else {
			m.editor.SetNotice("No tasks detected.")
		}
		return nil
	}
	m.notebook.AddTasks(context.Background(), r.Value)
	m.editor.SetNotice(fmt.Sprintf("Extracted %d tasks and added them to your list!", len(r.Value)))
	return m.refreshCmd()
}

// attachFile reads a file, attaches it to the open note and, for media the
// model understands, asks for an analysis appended to the note.
func (m *Model) attachFile(path string) tea.Cmd {
	p, err := homedir.Expand(path)
	if err != nil {
		m.editor.SetNotice(err.Error())
		return nil
	}

	a, kind, err := readAttachment(p)
	if err != nil {
		m.editor.SetNotice(err.Error())
		return nil
	}
	if kind == "" || !m.gateway.Available() {
		m.editor.AddAttachment(a)
		m.editor.SetNotice("Attached " + a.FileName + ".")
		m.scheduleSave()
		return nil
	}

	r := m.begin()
	g := m.gateway
	busy := m.editor.SetBusy("Analyzing " + a.FileName + "...")
	return tea.Batch(busy, func() tea.Msg {
		return attachMsg{
			request:    r,
			attachment: a,
			kind:       kind,
			analysis:   g.AnalyzeMedia(context.Background(), kind, a.Data, a.MimeType),
		}
	})
}

func (m *Model) attachDone(msg attachMsg) {
	if !m.finish(msg.request) {
		return
	}
	m.editor.ClearBusy()
	m.editor.AddAttachment(msg.attachment)
	if msg.analysis.Degraded() {
		m.editor.SetNotice(msg.analysis.Value)
	} else {
		m.editor.AppendContent(analysisHeading(msg.kind) + "\n" + msg.analysis.Value)
	}
	m.scheduleSave()
}

func analysisHeading(k model.MediaKind) string {
	switch k {
	case model.MediaImage:
		return "## 🖼️ Image Analysis"
	case model.MediaPDF:
		return "## 📄 PDF Analysis"
	case model.MediaAudio:
		return "## 🎙️ Transcription"
	case model.MediaDrawing:
		return "## 🖊️ Handwriting Analysis"
	}
	return "## Analysis"
}

// readAttachment loads a file as an inline attachment. Images whose name
// mentions a drawing or sketch are analyzed as handwriting.
func readAttachment(path string) (model.Attachment, model.MediaKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Attachment{}, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return model.Attachment{}, "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxAttachmentSize {
		return model.Attachment{}, "", fmt.Errorf("%s is %s; attachments are limited to %s",
			filepath.Base(path), humanize.Bytes(uint64(info.Size())), humanize.Bytes(maxAttachmentSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, "", fmt.Errorf("reading %s: %w", path, err)
	}

	mimeType := detectMIME(path, data)
	name := filepath.Base(path)
	a := model.Attachment{
		ID:       uuid.NewString(),
		Kind:     model.KindForMIME(mimeType),
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
		FileName: name,
	}

	kind := model.MediaKindForMIME(mimeType)
	lower := strings.ToLower(name)
	if kind == model.MediaImage && (strings.Contains(lower, "drawing") || strings.Contains(lower, "sketch")) {
		kind = model.MediaDrawing
		a.Kind = model.AttachmentDrawing
	}
	return a, kind, nil
}

// detectMIME prefers the extension and falls back to sniffing the content.
func detectMIME(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}
	t := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return "application/octet-stream"
}
