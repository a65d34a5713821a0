package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/model"
)

type fakeResponse struct {
	text string
	err  error
}

type fakeGenerator struct {
	mu        sync.Mutex
	responses []fakeResponse
	requests  []Request
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r.text, r.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestGateway(responses ...fakeResponse) (*Gateway, *fakeGenerator) {
	gen := &fakeGenerator{responses: responses}
	ids := 0
	g := NewGateway(gen,
		WithBackoff(time.Millisecond),
		WithTimeout(time.Second),
		WithIDFunc(func() string {
			ids++
			return fmt.Sprintf("id%d", ids)
		}),
	)
	return g, gen
}

func ok(text string) fakeResponse { return fakeResponse{text: text} }

func fail(err error) fakeResponse { return fakeResponse{err: err} }

var (
	errBoom  = errors.New("boom")
	notes    = []model.Note{{ID: "n1", Title: "Go", Content: "goroutines and channels"}}
	ctxBg    = context.Background()
	errOver  = &StatusError{Code: 503, Message: "overloaded"}
	errBadRq = &StatusError{Code: 400, Message: "bad request"}
)

func TestGateway_DefaultsOnFailure(t *testing.T) {
	// Every scripted failure is permanent so no retries are consumed.
	g, _ := newTestGateway()
	g.gen = &fakeGenerator{}

	toc := g.TableOfContents(ctxBg, notes)
	assert.True(t, toc.Degraded())
	assert.Equal(t, []model.TocItem{}, toc.Value)

	quiz := g.Quiz(ctxBg, notes)
	assert.True(t, quiz.Degraded())
	assert.Empty(t, quiz.Value)

	cards := g.Flashcards(ctxBg, "x")
	assert.True(t, cards.Degraded())
	assert.Empty(t, cards.Value)

	mm := g.MindMap(ctxBg, "x")
	assert.True(t, mm.Degraded())
	assert.Nil(t, mm.Value)

	assert.Equal(t, "hola?", g.Translate(ctxBg, "hola?", "French").Value)
	assert.Equal(t, FallbackTitle, g.AutoTitle(ctxBg, "x").Value)
	assert.Equal(t, FallbackInsight, g.Insight(ctxBg, notes).Value)
	assert.Equal(t, "raw", g.AutoFormat(ctxBg, "raw").Value)
	assert.Equal(t, "Error processing audio.", g.AnalyzeMedia(ctxBg, model.MediaAudio, base64.StdEncoding.EncodeToString([]byte("a")), "audio/webm").Value)
	assert.Equal(t, FallbackChat, g.Chat(ctxBg, "q", notes).Value)
	assert.Equal(t, FallbackSummary, g.Summarize(ctxBg, "text", model.SummaryDetailed).Value)
	assert.Equal(t, "text", g.Rewrite(ctxBg, "text", model.RewriteFormal).Value)

	tasks := g.ExtractTasks(ctxBg, "x", "n1")
	assert.True(t, tasks.Degraded())
	assert.Empty(t, tasks.Value)

	tags := g.AutoTag(ctxBg, "x")
	assert.True(t, tags.Degraded())
	assert.Empty(t, tags.Value)
}

func TestGateway_NoProvider(t *testing.T) {
	g := NewGateway(nil)
	assert.False(t, g.Available())

	res := g.Chat(ctxBg, "hi", notes)
	assert.Equal(t, FallbackChat, res.Value)
	assert.ErrorIs(t, res.Err, ErrNoProvider)
}

func TestGateway_EmptyNotesSkipProvider(t *testing.T) {
	g, gen := newTestGateway()

	assert.Empty(t, g.TableOfContents(ctxBg, nil).Value)
	assert.Empty(t, g.Quiz(ctxBg, nil).Value)
	insight := g.Insight(ctxBg, nil)
	assert.Equal(t, NoNotesInsight, insight.Value)
	assert.False(t, insight.Degraded())
	assert.Equal(t, 0, gen.calls())
}

func TestGateway_StructuredSuccess(t *testing.T) {
	g, gen := newTestGateway(
		ok(`[{"topic":"Concurrency","description":"Go notes","noteIds":["n1"]}]`),
		ok(`[{"front":"chan","back":"typed conduit"},{"front":"go","back":"starts a goroutine"}]`),
		ok(`[{"content":"Write tests","priority":"high","dueDate":1800000000000},{"content":"Refactor"}]`),
		ok(`["Go", " go ", "concurrency"]`),
	)

	toc := g.TableOfContents(ctxBg, notes)
	require.NoError(t, toc.Err)
	assert.Equal(t, []string{"n1"}, toc.Value[0].NoteIDs)
	assert.NotNil(t, gen.requests[0].Schema)

	cards := g.Flashcards(ctxBg, "content")
	require.NoError(t, cards.Err)
	assert.Equal(t, "id1", cards.Value[0].ID)
	assert.Equal(t, "id2", cards.Value[1].ID)
	assert.False(t, cards.Value[0].Mastered)

	tasks := g.ExtractTasks(ctxBg, "todo list", "n1")
	require.NoError(t, tasks.Err)
	require.Len(t, tasks.Value, 2)
	assert.Equal(t, model.PriorityHigh, tasks.Value[0].Priority)
	require.NotNil(t, tasks.Value[0].DueDate)
	assert.Equal(t, int64(1800000000000), tasks.Value[0].DueDate.UnixMilli())
	assert.Equal(t, model.PriorityMedium, tasks.Value[1].Priority, "missing priority defaults to medium")
	assert.Equal(t, "n1", tasks.Value[1].SourceNoteID)
	assert.False(t, tasks.Value[1].IsCompleted)

	tags := g.AutoTag(ctxBg, "content")
	require.NoError(t, tags.Err)
	assert.Equal(t, []string{"Go", "concurrency"}, tags.Value)
}

func TestGateway_MalformedResponseDegrades(t *testing.T) {
	g, _ := newTestGateway(ok(`[{"question":"Q","options":["a"],"correctAnswerIndex":0}]`))

	res := g.Quiz(ctxBg, notes)
	assert.Empty(t, res.Value)

	var pe *ParseError
	require.ErrorAs(t, res.Err, &pe)
	assert.Equal(t, SchemaViolation, pe.Kind)
}

func TestGateway_RetriesTransientErrors(t *testing.T) {
	g, gen := newTestGateway(fail(errOver), fail(errOver), ok("Bonjour"))

	res := g.Translate(ctxBg, "Hello", "French")
	require.NoError(t, res.Err)
	assert.Equal(t, "Bonjour", res.Value)
	assert.Equal(t, 3, gen.calls())
}

func TestGateway_GivesUpAfterMaxRetries(t *testing.T) {
	g, gen := newTestGateway(fail(errOver), fail(errOver), fail(errOver), ok("late"))

	res := g.Summarize(ctxBg, "x", model.SummaryShort)
	assert.True(t, res.Degraded())
	assert.Equal(t, FallbackSummary, res.Value)
	assert.Equal(t, 3, gen.calls(), "one attempt plus two retries")
}

func TestGateway_DoesNotRetryPermanentErrors(t *testing.T) {
	g, gen := newTestGateway(fail(errBadRq), ok("unused"))

	res := g.AutoFormat(ctxBg, "x")
	assert.True(t, res.Degraded())
	assert.Equal(t, 1, gen.calls())

	var se *StatusError
	assert.ErrorAs(t, res.Err, &se)
}

func TestGateway_EmptyTextAnswers(t *testing.T) {
	g, _ := newTestGateway(ok(""), ok("  "), ok(""), ok(""), ok(`"Weekly Plan"`))

	assert.Equal(t, EmptyTitle, g.AutoTitle(ctxBg, "x").Value)
	assert.Equal(t, EmptyInsight, g.Insight(ctxBg, notes).Value)
	assert.Equal(t, EmptyChat, g.Chat(ctxBg, "q", notes).Value)
	assert.Equal(t, "keep", g.Summarize(ctxBg, "keep", model.SummaryShort).Value)
	assert.Equal(t, "Weekly Plan", g.AutoTitle(ctxBg, "x").Value, "quotes are stripped")
}

func TestGateway_ContextBudgets(t *testing.T) {
	long := strings.Repeat("é", 6000)
	g, gen := newTestGateway(ok("[]"), ok("t"), ok("[]"))

	g.TableOfContents(ctxBg, []model.Note{{ID: "n", Title: "T", Content: long}})
	g.AutoTitle(ctxBg, long)
	g.AutoTag(ctxBg, long)

	assert.Equal(t, tocNoteBudget, strings.Count(gen.requests[0].Prompt, "é"))
	assert.Equal(t, titleBudget, strings.Count(gen.requests[1].Prompt, "é"))
	assert.Equal(t, tagBudget, strings.Count(gen.requests[2].Prompt, "é"))
}

func TestGateway_QuizContextBudget(t *testing.T) {
	g, gen := newTestGateway(ok("[]"))
	many := make([]model.Note, 8)
	for i := range many {
		many[i] = model.Note{ID: fmt.Sprintf("n%d", i), Title: "T", Content: strings.Repeat("é", 6000)}
	}

	g.Quiz(ctxBg, many)
	require.Equal(t, 1, gen.calls())
	got := strings.Count(gen.requests[0].Prompt, "é")
	assert.LessOrEqual(t, got, quizContextBudget)
	assert.Greater(t, got, quizContextBudget-100)
}

func TestGateway_InsightUsesFiveNotes(t *testing.T) {
	g, gen := newTestGateway(ok("Nice."))
	many := make([]model.Note, 8)
	for i := range many {
		many[i] = model.Note{ID: fmt.Sprint(i), Content: fmt.Sprintf("fragment-%d", i)}
	}

	g.Insight(ctxBg, many)

	prompt := gen.requests[0].Prompt
	assert.Contains(t, prompt, "fragment-4")
	assert.NotContains(t, prompt, "fragment-5")
}

func TestGateway_AnalyzeMedia(t *testing.T) {
	g, gen := newTestGateway(ok("# Transcript"))
	payload := base64.StdEncoding.EncodeToString([]byte{0x1, 0x2})

	res := g.AnalyzeMedia(ctxBg, model.MediaImage, payload, "image/png")
	require.NoError(t, res.Err)
	assert.Equal(t, "# Transcript", res.Value)
	require.Len(t, gen.requests[0].Parts, 1)
	assert.Equal(t, []byte{0x1, 0x2}, gen.requests[0].Parts[0].Data)
	assert.Equal(t, "image/png", gen.requests[0].Parts[0].MimeType)

	bad := g.AnalyzeMedia(ctxBg, model.MediaPDF, "!!not base64", "application/pdf")
	assert.Equal(t, "Error processing pdf.", bad.Value)
	assert.Equal(t, 1, gen.calls(), "undecodable payload never reaches the provider")
}

func TestGateway_ChatHistory(t *testing.T) {
	g, gen := newTestGateway(ok("Channels."), fail(errBoom), ok("Yes."))

	g.Chat(ctxBg, "What connects goroutines?", notes)
	g.Chat(ctxBg, "lost question", notes)
	g.Chat(ctxBg, "Are they typed?", notes)

	last := gen.requests[2].Prompt
	assert.Contains(t, last, "User: What connects goroutines?")
	assert.Contains(t, last, "Assistant: Channels.")
	assert.NotContains(t, last, "lost question", "failed turns are not remembered")
	assert.Contains(t, last, "[Go]: goroutines and channels")

	g.ResetChat()
	assert.Equal(t, 0, g.history.Turns())
}

// gatedGenerator holds every answer until release is closed.
type gatedGenerator struct {
	started chan struct{}
	release chan struct{}
	reply   string
}

func (g *gatedGenerator) Generate(ctx context.Context, _ Request) (string, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return g.reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestGateway_ChatResetDuringAnswer(t *testing.T) {
	gen := &gatedGenerator{started: make(chan struct{}, 1), release: make(chan struct{}), reply: "secret answer"}
	g := NewGateway(gen, WithRetries(0), WithTimeout(2*time.Second))

	done := make(chan Result[string], 1)
	go func() { done <- g.Chat(ctxBg, "private question", notes) }()

	<-gen.started
	g.ResetChat()
	close(gen.release)

	res := <-done
	assert.Equal(t, "secret answer", res.Value)
	assert.Equal(t, 0, g.history.Turns(), "a turn begun before the reset is not recorded")
	assert.Empty(t, g.history.Messages())
}

func TestGateway_CancelledContextStopsRetrying(t *testing.T) {
	g, gen := newTestGateway(fail(errOver), fail(errOver), fail(errOver))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := g.Rewrite(ctx, "x", model.RewriteConcise)
	assert.True(t, res.Degraded())
	assert.LessOrEqual(t, gen.calls(), 1)
}

func TestGateway_Check(t *testing.T) {
	g, gen := newTestGateway(ok("OK"), fail(errBadRq))

	require.NoError(t, g.Check(ctxBg))
	assert.Equal(t, "Reply with OK.", gen.requests[0].Prompt)
	assert.Error(t, g.Check(ctxBg))

	assert.ErrorIs(t, NewGateway(nil).Check(ctxBg), ErrNoProvider)
}
