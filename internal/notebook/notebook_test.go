package notebook

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/tests/testutil"
)

func newTestNotebook(t *testing.T) (*Notebook, Repository) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	clock := t0
	nb := New(repo,
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
		WithIDFunc(seqIDs("id")),
	)
	require.NoError(t, nb.Load(context.Background()))
	return nb, repo
}

func TestNotebook_WriteThrough(t *testing.T) {
	ctx := context.Background()
	nb, repo := newTestNotebook(t)

	f := nb.CreateFolder(ctx, "Work")
	require.NoError(t, nb.SetFolderFilter(f.ID))
	n := nb.SaveNote(ctx, "", NoteDraft{Title: "Plan", Content: "ship it #release"})
	task := nb.AddTask(ctx, "book room", model.PriorityMedium)

	assert.Equal(t, f.ID, n.FolderID)
	assert.Equal(t, []string{"release"}, n.Tags)

	reloaded := New(repo)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.Notes(), 1)
	assert.Equal(t, "Plan", reloaded.Notes()[0].Title)
	assert.Equal(t, []model.Folder{f}, stripTimes(reloaded.Folders(), f))
	assert.Equal(t, task.ID, reloaded.Tasks()[0].ID)
}

// stripTimes returns folders with CreatedAt copied from want so that
// equality ignores monotonic clock readings.
func stripTimes(folders []model.Folder, want model.Folder) []model.Folder {
	out := make([]model.Folder, len(folders))
	for i, f := range folders {
		f.CreatedAt = want.CreatedAt
		out[i] = f
	}
	return out
}

func TestNotebook_SaveNoteUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	nb, _ := newTestNotebook(t)

	created := nb.SaveNote(ctx, "", NoteDraft{Title: "Draft", Content: "v1", Tags: []string{"a"}})
	updated := nb.SaveNote(ctx, created.ID, NoteDraft{Title: "", Content: "v2 #b", Tags: []string{"a"}})

	assert.Equal(t, created.ID, updated.ID)
	assert.Len(t, nb.Notes(), 1)
	assert.Equal(t, "Untitled", updated.Title)
	assert.Equal(t, "v2 #b", updated.Content)
	assert.Equal(t, []string{"a", "b"}, updated.Tags)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
}

func TestNotebook_SaveNoteTrimsTitle(t *testing.T) {
	ctx := context.Background()
	nb, _ := newTestNotebook(t)

	created := nb.SaveNote(ctx, "", NoteDraft{Title: "   "})
	assert.Equal(t, "Untitled", created.Title)

	updated := nb.SaveNote(ctx, created.ID, NoteDraft{Title: " \t "})
	assert.Equal(t, "Untitled", updated.Title)

	renamed := nb.SaveNote(ctx, created.ID, NoteDraft{Title: "  Plan  "})
	assert.Equal(t, "Plan", renamed.Title)
}

func TestNotebook_StampNote(t *testing.T) {
	ctx := context.Background()
	nb, repo := newTestNotebook(t)
	n := nb.SaveNote(ctx, "", NoteDraft{Title: "Old"})

	created := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, nb.StampNote(ctx, n.ID, created, time.Time{}))

	reloaded := New(repo)
	require.NoError(t, reloaded.Load(ctx))
	got, ok := reloaded.Note(n.ID)
	require.True(t, ok)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.UpdatedAt.Equal(n.UpdatedAt), "a zero time is left unchanged")

	assert.ErrorIs(t, nb.StampNote(ctx, "missing", created, created), ErrNotFound)
}

func TestNotebook_RecycleBinFlow(t *testing.T) {
	ctx := context.Background()
	nb, _ := newTestNotebook(t)
	n := nb.SaveNote(ctx, "", NoteDraft{Title: "Old"})

	assert.ErrorIs(t, nb.PurgeNote(ctx, n.ID), ErrNotInRecycleBin)

	require.NoError(t, nb.DeleteNote(ctx, n.ID))
	assert.Empty(t, nb.Visible(""))
	assert.Len(t, nb.Deleted(), 1)

	require.NoError(t, nb.RestoreNote(ctx, n.ID))
	assert.Len(t, nb.Visible(""), 1)

	require.NoError(t, nb.DeleteNote(ctx, n.ID))
	require.NoError(t, nb.PurgeNote(ctx, n.ID))
	assert.Empty(t, nb.Notes())

	assert.ErrorIs(t, nb.RestoreNote(ctx, n.ID), ErrNotFound)
	assert.ErrorIs(t, nb.TogglePin(ctx, n.ID), ErrNotFound)
}

func TestNotebook_DeleteFolderResetsFilter(t *testing.T) {
	ctx := context.Background()
	nb, _ := newTestNotebook(t)
	f := nb.CreateFolder(ctx, "Trips")
	require.NoError(t, nb.SetFolderFilter(f.ID))
	n := nb.SaveNote(ctx, "", NoteDraft{Title: "Lisbon"})

	require.NoError(t, nb.DeleteFolder(ctx, f.ID))

	assert.Equal(t, "", nb.FolderFilter())
	got, ok := nb.Note(n.ID)
	require.True(t, ok)
	assert.Equal(t, "", got.FolderID)
	assert.ErrorIs(t, nb.DeleteFolder(ctx, f.ID), ErrNotFound)
	assert.ErrorIs(t, nb.SetFolderFilter("nope"), ErrNotFound)
}

func TestNotebook_TasksAndStats(t *testing.T) {
	ctx := context.Background()
	nb, _ := newTestNotebook(t)

	a := nb.AddTask(ctx, "one", model.PriorityHigh)
	nb.AddTasks(ctx, []model.Task{{ID: "x", Content: "extracted", Priority: model.PriorityLow}})
	nb.AddTasks(ctx, nil)
	require.NoError(t, nb.ToggleTask(ctx, a.ID))
	assert.ErrorIs(t, nb.DeleteTask(ctx, "missing"), ErrNotFound)

	nb.SaveNote(ctx, "", NoteDraft{Title: "n", Content: "#t", Attachments: []model.Attachment{{ID: "at", Data: "AAAA"}}})

	s := nb.Stats()
	assert.Equal(t, 1, s.Notes)
	assert.Equal(t, 2, s.Tasks)
	assert.Equal(t, 1, s.OpenTasks)
	assert.Equal(t, 1, s.Attachments)
	assert.Equal(t, 4, s.AttachmentBytes)
	assert.Equal(t, 1, s.Tags)
	assert.Equal(t, "x", nb.Tasks()[0].ID)
}

type failingRepo struct {
	Repository
}

func (failingRepo) SaveNotes(context.Context, []model.Note) error {
	return errors.New("disk full")
}

func TestNotebook_PersistFailureIsLoggedNotRolledBack(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	repo := failingRepo{Repository: testutil.NewTestRepository(t)}
	nb := New(repo, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	n := nb.SaveNote(ctx, "", NoteDraft{Title: "kept"})

	_, ok := nb.Note(n.ID)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "saving notes")
	assert.Contains(t, buf.String(), "disk full")
}
