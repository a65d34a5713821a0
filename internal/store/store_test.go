package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/store"
	"github.com/nhle/smartnote/tests/testutil"
)

func backends(t *testing.T) map[string]store.Store {
	return map[string]store.Store{
		"sqlite": testutil.NewTestStore(t),
		"disk":   store.NewDiskStore(t.TempDir()),
	}
}

func TestStore_MissingKeyIsNotAnError(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var v []string
			found, err := s.Load(context.Background(), "absent", &v)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, v)
		})
	}
}

func TestStore_SaveLoadOverwriteDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, "k", []string{"a"}))
			require.NoError(t, s.Save(ctx, "k", []string{"b", "c"}))

			var v []string
			found, err := s.Load(ctx, "k", &v)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []string{"b", "c"}, v)

			require.NoError(t, s.Delete(ctx, "k"))
			require.NoError(t, s.Delete(ctx, "k"), "deleting twice is fine")

			found, err = s.Load(ctx, "k", &v)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStore_CorruptValueIsAnError(t *testing.T) {
	s := store.NewDiskStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "k", "a string"))

	var n int
	_, err := s.Load(ctx, "k", &n)
	assert.Error(t, err)
}

func TestSQLiteStore_Keys(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, store.KeyTasks, []int{}))
	require.NoError(t, s.Save(ctx, store.KeyNotes, []int{}))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{store.KeyNotes, store.KeyTasks}, keys)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := store.Open(model.StorageConfig{Backend: "redis"})
	assert.Error(t, err)
}

func TestOpen_Disk(t *testing.T) {
	s, err := store.Open(model.StorageConfig{Backend: "disk", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &store.DiskStore{}, s)
	assert.NoError(t, s.Close())
}

func TestRepository_EmptyState(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	notes, err := repo.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	u, err := repo.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	theme, err := repo.LoadTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeSystem, theme)

	seen, err := repo.Flag(ctx, store.KeyOnboardingComplete)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRepository_NotesDriftDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	repo := store.NewRepository(s)
	ctx := context.Background()

	// An older record without title, tags, updatedAt or flags.
	legacy := []map[string]any{
		{"id": "n1", "content": "hello", "createdAt": 1_700_000_000_000},
	}
	require.NoError(t, s.Save(ctx, store.KeyNotes, legacy))

	notes, err := repo.LoadNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	n := notes[0]
	assert.Equal(t, "Untitled", n.Title)
	assert.Equal(t, []string{}, n.Tags)
	assert.False(t, n.IsPinned)
	assert.False(t, n.IsDeleted)
	assert.True(t, n.UpdatedAt.Equal(n.CreatedAt))
}

func TestRepository_FoldersTasksUserDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	repo := store.NewRepository(s)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.KeyFolders, []map[string]any{{"id": "f", "name": "Work", "createdAt": 1}}))
	require.NoError(t, s.Save(ctx, store.KeyTasks, []map[string]any{{"id": "t", "content": "x", "isCompleted": false, "priority": "urgent"}}))
	require.NoError(t, s.Save(ctx, store.KeyUser, map[string]any{"username": "ada", "email": "ada@example.com", "isAuthenticated": true}))

	folders, err := repo.LoadFolders(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFolderColor, folders[0].Color)

	tasks, err := repo.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityNone, tasks[0].Priority)

	u, err := repo.LoadUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, model.TierFree, u.SubscriptionTier)
}

func TestRepository_RoundTripAndClear(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	now := time.UnixMilli(time.Now().UnixMilli())

	notes := []model.Note{{ID: "a", Title: "A", CreatedAt: now, UpdatedAt: now, Tags: []string{"x"}}}
	require.NoError(t, repo.SaveNotes(ctx, notes))
	got, err := repo.LoadNotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, []string{"x"}, got[0].Tags)

	require.NoError(t, repo.SaveNotes(ctx, nil))
	got, err = repo.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.SaveUser(ctx, model.User{Username: "ada", IsAuthenticated: true}))
	require.NoError(t, repo.ClearUser(ctx))
	u, err := repo.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, repo.SaveTheme(ctx, model.ThemeAmoled))
	theme, err := repo.LoadTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeAmoled, theme)

	require.NoError(t, repo.SetFlag(ctx, store.KeyTutorialComplete, true))
	seen, err := repo.Flag(ctx, store.KeyTutorialComplete)
	require.NoError(t, err)
	assert.True(t, seen)
}
