package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/nhle/smartnote/internal/model"
)

// Fallback texts returned when the model cannot be reached or answers
// with nothing.
const (
	FallbackTitle         = "New Note"
	EmptyTitle            = "Untitled Note"
	FallbackInsight       = "Your ideas are coming together."
	EmptyInsight          = "Keep writing to unlock your creativity."
	NoNotesInsight        = "Start taking notes to get AI insights!"
	FallbackChat          = "AI Service is temporarily unavailable."
	EmptyChat             = "I couldn't generate a response."
	FallbackSummary       = "Summary failed."
	EmptyMediaAnalysis    = "Analysis failed."
	defaultTimeout        = 45 * time.Second
	defaultRetries        = 2
	defaultBackoff        = 500 * time.Millisecond
	defaultTaskPriority   = model.PriorityMedium
	mediaFallbackTemplate = "Error processing %s."
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for degraded calls.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// WithTimeout bounds each provider attempt.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) Option {
	return func(g *Gateway) {
		if n >= 0 {
			g.retries = uint64(n)
		}
	}
}

// WithBackoff sets the base delay of the exponential backoff.
func WithBackoff(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.backoff = d
		}
	}
}

// WithIDFunc overrides id generation for flashcards and tasks.
func WithIDFunc(fn func() string) Option {
	return func(g *Gateway) { g.newID = fn }
}

// Gateway exposes the AI operations. Every operation returns a usable
// value: when the provider fails or answers with something unparseable the
// operation's default is returned and Result.Err records the cause.
type Gateway struct {
	gen     Generator
	log     *slog.Logger
	timeout time.Duration
	retries uint64
	backoff time.Duration
	newID   func() string
	history *History
}

// NewGateway wraps gen. A nil gen is allowed and makes every call degrade.
func NewGateway(gen Generator, opts ...Option) *Gateway {
	g := &Gateway{
		gen:     gen,
		log:     slog.New(slog.DiscardHandler),
		timeout: defaultTimeout,
		retries: defaultRetries,
		backoff: defaultBackoff,
		newID:   uuid.NewString,
		history: NewHistory(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available reports whether a provider is configured.
func (g *Gateway) Available() bool { return g.gen != nil }

// call runs req with a per-attempt timeout, retrying transient failures
// with exponential backoff.
func (g *Gateway) call(ctx context.Context, op string, req Request) (string, error) {
	if g.gen == nil {
		return "", ErrNoProvider
	}

	var out string
	attempts := 0
	backoff := retry.WithMaxRetries(g.retries, retry.NewExponential(g.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		text, err := g.gen.Generate(callCtx, req)
		if err != nil {
			if isTransient(ctx, err) {
				g.log.Debug("retrying AI call", "op", op, "attempt", attempts, "err", err)
				return retry.RetryableError(err)
			}
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s (attempts=%d): %w", op, attempts, err)
	}
	return out, nil
}

func (g *Gateway) degraded(op string, err error) {
	g.log.Warn("AI call degraded", "op", op, "err", err)
}

// structured calls the provider and decodes a JSON answer, falling back
// to def on any failure.
func structured[T any](ctx context.Context, g *Gateway, op string, req Request, check func(*T) error, def T) Result[T] {
	raw, err := g.call(ctx, op, req)
	if err == nil {
		var v T
		v, err = Decode(raw, check)
		if err == nil {
			return Result[T]{Value: v}
		}
	}
	g.degraded(op, err)
	return Result[T]{Value: def, Err: err}
}

// text calls the provider for a free-form answer. A failed call yields
// onError; an empty answer yields onEmpty and is not treated as a failure.
func (g *Gateway) text(ctx context.Context, op string, req Request, onEmpty, onError string) Result[string] {
	out, err := g.call(ctx, op, req)
	if err != nil {
		g.degraded(op, err)
		return Result[string]{Value: onError, Err: err}
	}
	if strings.TrimSpace(out) == "" {
		return Result[string]{Value: onEmpty}
	}
	return Result[string]{Value: out}
}

// TableOfContents groups notes into topics. No notes yields no topics
// without a provider call.
func (g *Gateway) TableOfContents(ctx context.Context, notes []model.Note) Result[[]model.TocItem] {
	if len(notes) == 0 {
		return Result[[]model.TocItem]{Value: []model.TocItem{}}
	}
	return structured(ctx, g, "toc", tocRequest(notes), checkToc, []model.TocItem{})
}

// Quiz generates multiple choice questions over notes.
func (g *Gateway) Quiz(ctx context.Context, notes []model.Note) Result[[]model.QuizQuestion] {
	if len(notes) == 0 {
		return Result[[]model.QuizQuestion]{Value: []model.QuizQuestion{}}
	}
	return structured(ctx, g, "quiz", quizRequest(notes), checkQuiz, []model.QuizQuestion{})
}

// Flashcards generates study cards; each gets a fresh id and starts
// unmastered.
func (g *Gateway) Flashcards(ctx context.Context, content string) Result[[]model.Flashcard] {
	res := structured(ctx, g, "flashcards", flashcardRequest(content), checkFlashcards, []model.Flashcard{})
	for i := range res.Value {
		res.Value[i].ID = g.newID()
		res.Value[i].Mastered = false
	}
	return res
}

// MindMap generates a concept tree. The default is nil.
func (g *Gateway) MindMap(ctx context.Context, content string) Result[*model.MindMapNode] {
	return structured(ctx, g, "mindmap", mindMapRequest(content), checkMindMap, (*model.MindMapNode)(nil))
}

// Translate rewrites content into language, or returns it unchanged.
func (g *Gateway) Translate(ctx context.Context, content, language string) Result[string] {
	return g.text(ctx, "translate", translateRequest(content, language), content, content)
}

// AutoTitle suggests a title of at most a few words.
func (g *Gateway) AutoTitle(ctx context.Context, content string) Result[string] {
	res := g.text(ctx, "title", titleRequest(content), EmptyTitle, FallbackTitle)
	if !res.Degraded() {
		res.Value = strings.Trim(strings.TrimSpace(res.Value), `"'`)
		if res.Value == "" {
			res.Value = EmptyTitle
		}
	}
	return res
}

// Insight produces a one-sentence observation across recent notes.
func (g *Gateway) Insight(ctx context.Context, notes []model.Note) Result[string] {
	if len(notes) == 0 {
		return Result[string]{Value: NoNotesInsight}
	}
	res := g.text(ctx, "insight", insightRequest(notes), EmptyInsight, FallbackInsight)
	res.Value = strings.TrimSpace(res.Value)
	return res
}

// AutoFormat returns content as cleaned-up Markdown.
func (g *Gateway) AutoFormat(ctx context.Context, content string) Result[string] {
	return g.text(ctx, "format", formatRequest(content), content, content)
}

// AnalyzeMedia transcribes or describes a base64 encoded payload.
func (g *Gateway) AnalyzeMedia(ctx context.Context, kind model.MediaKind, base64Data, mimeType string) Result[string] {
	fallback := fmt.Sprintf(mediaFallbackTemplate, kind)
	if _, ok := mediaPrompts[kind]; !ok {
		err := fmt.Errorf("media kind %q: %w", kind, ErrUnsupportedMedia)
		g.degraded("media", err)
		return Result[string]{Value: fallback, Err: err}
	}

	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		err = fmt.Errorf("decoding %s payload: %w", kind, err)
		g.degraded("media", err)
		return Result[string]{Value: fallback, Err: err}
	}
	return g.text(ctx, "media", mediaRequest(kind, data, mimeType), EmptyMediaAnalysis, fallback)
}

// Chat answers query from the given notes, carrying recent turns of the
// conversation as context. Only answered turns are remembered.
func (g *Gateway) Chat(ctx context.Context, query string, notes []model.Note) Result[string] {
	past, epoch := g.history.Begin()
	res := g.text(ctx, "chat", chatRequest(query, notes, past), EmptyChat, FallbackChat)
	if !res.Degraded() {
		now := time.Now()
		kept := g.history.AddTurn(epoch,
			model.ChatMessage{ID: g.newID(), Role: model.ChatRoleUser, Content: query, Timestamp: now},
			model.ChatMessage{ID: g.newID(), Role: model.ChatRoleAI, Content: res.Value, Timestamp: now},
		)
		if !kept {
			g.log.Debug("chat reset while answering; turn not recorded")
		}
	}
	return res
}

// ResetChat forgets the conversation history.
func (g *Gateway) ResetChat() {
	g.history.Reset()
}

// Summarize condenses content in the requested style.
func (g *Gateway) Summarize(ctx context.Context, content string, kind model.SummaryType) Result[string] {
	return g.text(ctx, "summary", summaryRequest(content, kind), content, FallbackSummary)
}

// Rewrite changes the tone of content.
func (g *Gateway) Rewrite(ctx context.Context, content string, mode model.RewriteMode) Result[string] {
	return g.text(ctx, "rewrite", rewriteRequest(content, mode), content, content)
}

// ExtractTasks finds action items in content. Tasks without a priority
// default to medium and all start open.
func (g *Gateway) ExtractTasks(ctx context.Context, content, sourceNoteID string) Result[[]model.Task] {
	res := structured(ctx, g, "tasks", taskRequest(content), checkTasks, []taskWire{})

	tasks := make([]model.Task, 0, len(res.Value))
	for _, w := range res.Value {
		t := model.Task{
			ID:           g.newID(),
			Content:      strings.TrimSpace(w.Content),
			Priority:     model.Priority(w.Priority),
			SourceNoteID: sourceNoteID,
		}
		if t.Priority == model.PriorityNone {
			t.Priority = defaultTaskPriority
		}
		if w.DueDate != nil && *w.DueDate > 0 {
			due := time.UnixMilli(int64(*w.DueDate))
			t.DueDate = &due
		}
		tasks = append(tasks, t)
	}
	return Result[[]model.Task]{Value: tasks, Err: res.Err}
}

// AutoTag suggests a handful of single-word tags.
func (g *Gateway) AutoTag(ctx context.Context, content string) Result[[]string] {
	res := structured(ctx, g, "tags", tagRequest(content), nil, []string{})
	res.Value = cleanTags(res.Value)
	return res
}

// Check makes a single tiny request to confirm the provider accepts the
// configured key and model.
func (g *Gateway) Check(ctx context.Context) error {
	_, err := g.call(ctx, "check", Request{Prompt: "Reply with OK."})
	return err
}
