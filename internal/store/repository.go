package store

import (
	"context"
	"fmt"

	"github.com/nhle/smartnote/internal/model"
)

// Repository gives typed access to the persisted collections on top of a
// Store. Reads tolerate older or partial records by filling defaults.
type Repository struct {
	store Store
}

// NewRepository wraps s.
func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

// Store returns the underlying key-value store.
func (r *Repository) Store() Store {
	return r.store
}

// LoadNotes returns the persisted notes, or an empty slice if none exist.
func (r *Repository) LoadNotes(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if _, err := r.store.Load(ctx, KeyNotes, &notes); err != nil {
		return nil, err
	}
	return NormalizeNotes(notes), nil
}

// SaveNotes replaces the whole notes collection.
func (r *Repository) SaveNotes(ctx context.Context, notes []model.Note) error {
	return r.saveCollection(ctx, KeyNotes, notes, len(notes))
}

// LoadFolders returns the persisted folders, or an empty slice.
func (r *Repository) LoadFolders(ctx context.Context) ([]model.Folder, error) {
	var folders []model.Folder
	if _, err := r.store.Load(ctx, KeyFolders, &folders); err != nil {
		return nil, err
	}
	return NormalizeFolders(folders), nil
}

// SaveFolders replaces the whole folders collection.
func (r *Repository) SaveFolders(ctx context.Context, folders []model.Folder) error {
	return r.saveCollection(ctx, KeyFolders, folders, len(folders))
}

// LoadTasks returns the persisted tasks, or an empty slice.
func (r *Repository) LoadTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if _, err := r.store.Load(ctx, KeyTasks, &tasks); err != nil {
		return nil, err
	}
	return NormalizeTasks(tasks), nil
}

// SaveTasks replaces the whole tasks collection.
func (r *Repository) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return r.saveCollection(ctx, KeyTasks, tasks, len(tasks))
}

// saveCollection writes value, encoding an empty collection as [] rather
// than null.
func (r *Repository) saveCollection(ctx context.Context, key string, value any, n int) error {
	if n == 0 {
		value = []struct{}{}
	}
	return r.store.Save(ctx, key, value)
}

// LoadUser returns the active user, or nil when nobody is signed in.
func (r *Repository) LoadUser(ctx context.Context) (*model.User, error) {
	var u model.User
	found, err := r.store.Load(ctx, KeyUser, &u)
	if err != nil || !found {
		return nil, err
	}
	if u.SubscriptionTier == "" {
		u.SubscriptionTier = model.TierFree
	}
	return &u, nil
}

// SaveUser persists u as the active user.
func (r *Repository) SaveUser(ctx context.Context, u model.User) error {
	return r.store.Save(ctx, KeyUser, u)
}

// ClearUser forgets the active user.
func (r *Repository) ClearUser(ctx context.Context) error {
	return r.store.Delete(ctx, KeyUser)
}

// LoadTheme returns the stored theme preference, defaulting to system.
func (r *Repository) LoadTheme(ctx context.Context) (model.Theme, error) {
	var s string
	found, err := r.store.Load(ctx, KeyTheme, &s)
	if err != nil {
		return model.ThemeSystem, err
	}
	if !found {
		return model.ThemeSystem, nil
	}
	return model.ParseTheme(s), nil
}

// SaveTheme persists the theme preference.
func (r *Repository) SaveTheme(ctx context.Context, t model.Theme) error {
	return r.store.Save(ctx, KeyTheme, string(t))
}

// Flag reads a boolean marker such as KeyOnboardingComplete. Absent flags
// read as false.
func (r *Repository) Flag(ctx context.Context, key string) (bool, error) {
	var v bool
	if _, err := r.store.Load(ctx, key, &v); err != nil {
		return false, err
	}
	return v, nil
}

// SetFlag writes a boolean marker.
func (r *Repository) SetFlag(ctx context.Context, key string, v bool) error {
	return r.store.Save(ctx, key, v)
}

// LoadAccounts returns the local account registry.
func (r *Repository) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if _, err := r.store.Load(ctx, KeyAccounts, &accounts); err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Tier == "" {
			accounts[i].Tier = model.TierFree
		}
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	return accounts, nil
}

// SaveAccounts replaces the local account registry.
func (r *Repository) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	if err := r.saveCollection(ctx, KeyAccounts, accounts, len(accounts)); err != nil {
		return fmt.Errorf("saving accounts: %w", err)
	}
	return nil
}

// NormalizeNotes fills defaults for fields missing from older records.
func NormalizeNotes(notes []model.Note) []model.Note {
	out := make([]model.Note, len(notes))
	for i, n := range notes {
		if n.Title == "" {
			n.Title = "Untitled"
		}
		if n.Tags == nil {
			n.Tags = []string{}
		}
		if n.UpdatedAt.IsZero() {
			n.UpdatedAt = n.CreatedAt
		}
		out[i] = n
	}
	return out
}

// NormalizeFolders fills defaults for fields missing from older records.
func NormalizeFolders(folders []model.Folder) []model.Folder {
	out := make([]model.Folder, len(folders))
	for i, f := range folders {
		if f.Color == "" {
			f.Color = model.DefaultFolderColor
		}
		out[i] = f
	}
	return out
}

// NormalizeTasks drops priorities this version does not know.
func NormalizeTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		if !t.Priority.Valid() {
			t.Priority = model.PriorityNone
		}
		out[i] = t
	}
	return out
}
