package notebook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nhle/smartnote/internal/hashtag"
	"github.com/nhle/smartnote/internal/model"
)

// Repository is the persistence the Notebook reads from and writes through to.
type Repository interface {
	LoadNotes(ctx context.Context) ([]model.Note, error)
	SaveNotes(ctx context.Context, notes []model.Note) error
	LoadFolders(ctx context.Context) ([]model.Folder, error)
	SaveFolders(ctx context.Context, folders []model.Folder) error
	LoadTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
}

// Option configures a Notebook.
type Option func(*Notebook)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(nb *Notebook) { nb.now = now }
}

// WithIDFunc overrides id generation.
func WithIDFunc(fn IDFunc) Option {
	return func(nb *Notebook) { nb.newID = fn }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(nb *Notebook) { nb.log = l }
}

// Notebook owns the in-memory collections. Every mutation replaces the
// affected collection and writes it through to the repository; a failed
// write is logged and the in-memory state is kept.
//
// A Notebook is not safe for concurrent use; the UI update loop owns it.
type Notebook struct {
	repo  Repository
	log   *slog.Logger
	now   func() time.Time
	newID IDFunc

	notes        []model.Note
	folders      []model.Folder
	tasks        []model.Task
	folderFilter string
}

// New creates an empty Notebook backed by repo.
func New(repo Repository, opts ...Option) *Notebook {
	nb := &Notebook{
		repo:    repo,
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
		newID:   NewID,
		notes:   []model.Note{},
		folders: []model.Folder{},
		tasks:   []model.Task{},
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// Load replaces the in-memory collections with the persisted ones.
func (nb *Notebook) Load(ctx context.Context) error {
	notes, err := nb.repo.LoadNotes(ctx)
	if err != nil {
		return fmt.Errorf("loading notes: %w", err)
	}
	folders, err := nb.repo.LoadFolders(ctx)
	if err != nil {
		return fmt.Errorf("loading folders: %w", err)
	}
	tasks, err := nb.repo.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	nb.notes, nb.folders, nb.tasks = notes, folders, tasks
	return nil
}

// Notes returns every note including deleted ones.
func (nb *Notebook) Notes() []model.Note { return nb.notes }

// Folders returns the folders in creation order.
func (nb *Notebook) Folders() []model.Folder { return nb.folders }

// Tasks returns every task.
func (nb *Notebook) Tasks() []model.Task { return nb.tasks }

// FolderFilter is the active folder id, or "" for all notes.
func (nb *Notebook) FolderFilter() string { return nb.folderFilter }

// SetFolderFilter narrows Visible to one folder. An empty id clears it.
func (nb *Notebook) SetFolderFilter(id string) error {
	if id != "" && nb.folder(id) == nil {
		return fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	nb.folderFilter = id
	return nil
}

// Folder returns the folder with id, if any.
func (nb *Notebook) Folder(id string) (model.Folder, bool) {
	if f := nb.folder(id); f != nil {
		return *f, true
	}
	return model.Folder{}, false
}

func (nb *Notebook) folder(id string) *model.Folder {
	for i := range nb.folders {
		if nb.folders[i].ID == id {
			return &nb.folders[i]
		}
	}
	return nil
}

// Visible returns the live notes in the active folder matching query.
func (nb *Notebook) Visible(query string) []model.Note {
	return SearchNotes(VisibleNotes(nb.notes, nb.folderFilter), query)
}

// Live returns every note that is not in the recycle bin.
func (nb *Notebook) Live() []model.Note {
	return VisibleNotes(nb.notes, "")
}

// Deleted returns the recycle bin contents.
func (nb *Notebook) Deleted() []model.Note {
	return DeletedNotes(nb.notes)
}

// Note looks a note up by id.
func (nb *Notebook) Note(id string) (model.Note, bool) {
	return FindNote(nb.notes, id)
}

// SaveNote creates a note when id is empty or unknown, and updates it
// otherwise. Hashtags in the content are merged into the tags.
func (nb *Notebook) SaveNote(ctx context.Context, id string, d NoteDraft) model.Note {
	d.Tags = hashtag.Merge(d.Tags, hashtag.Extract(d.Content))

	if _, ok := nb.Note(id); id == "" || !ok {
		var n model.Note
		nb.notes, n = CreateNote(nb.notes, d, nb.folderFilter, nb.now(), nb.newID)
		nb.persistNotes(ctx)
		return n
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = DefaultTitle
	}
	nb.notes, _ = UpdateNote(nb.notes, id, NotePatch{
		Title:       &title,
		Content:     &d.Content,
		Tags:        &d.Tags,
		Attachments: &d.Attachments,
	}, nb.now())
	nb.persistNotes(ctx)

	n, _ := nb.Note(id)
	return n
}

// UpdateNote applies a partial update.
func (nb *Notebook) UpdateNote(ctx context.Context, id string, p NotePatch) error {
	next, ok := UpdateNote(nb.notes, id, p, nb.now())
	if !ok {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	nb.notes = next
	nb.persistNotes(ctx)
	return nil
}

// StampNote restores a note's timestamps, as recorded by an export.
func (nb *Notebook) StampNote(ctx context.Context, id string, created, updated time.Time) error {
	next, ok := StampNote(nb.notes, id, created, updated)
	if !ok {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	nb.notes = next
	nb.persistNotes(ctx)
	return nil
}

// DeleteNote moves a note to the recycle bin.
func (nb *Notebook) DeleteNote(ctx context.Context, id string) error {
	next, ok := SoftDeleteNote(nb.notes, id, nb.now())
	if !ok {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	nb.notes = next
	nb.persistNotes(ctx)
	return nil
}

// RestoreNote takes a note out of the recycle bin.
func (nb *Notebook) RestoreNote(ctx context.Context, id string) error {
	next, ok := RestoreNote(nb.notes, id, nb.now())
	if !ok {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	nb.notes = next
	nb.persistNotes(ctx)
	return nil
}

// PurgeNote permanently deletes a note from the recycle bin.
func (nb *Notebook) PurgeNote(ctx context.Context, id string) error {
	next, err := PermanentlyDeleteNote(nb.notes, id)
	if err != nil {
		return fmt.Errorf("purging note %s: %w", id, err)
	}
	nb.notes = next
	nb.persistNotes(ctx)
	return nil
}

// TogglePin flips a note's pinned flag.
func (nb *Notebook) TogglePin(ctx context.Context, id string) error {
	next, ok := TogglePin(nb.notes, id)
	if !ok {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	nb.notes = next
	nb.persistNotes(ctx)
	return nil
}

// CreateFolder adds a folder.
func (nb *Notebook) CreateFolder(ctx context.Context, name string) model.Folder {
	var f model.Folder
	nb.folders, f = CreateFolder(nb.folders, name, nb.now(), nb.newID)
	nb.persistFolders(ctx)
	return f
}

// DeleteFolder removes a folder and releases its notes.
func (nb *Notebook) DeleteFolder(ctx context.Context, id string) error {
	if nb.folder(id) == nil {
		return fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	nb.folders, nb.notes, nb.folderFilter = DeleteFolder(nb.folders, nb.notes, id, nb.folderFilter)
	nb.persistFolders(ctx)
	nb.persistNotes(ctx)
	return nil
}

// AddTask appends a manual task.
func (nb *Notebook) AddTask(ctx context.Context, content string, priority model.Priority) model.Task {
	var t model.Task
	nb.tasks, t = AddTask(nb.tasks, content, priority, nb.newID)
	nb.persistTasks(ctx)
	return t
}

// AddTasks prepends tasks extracted from a note.
func (nb *Notebook) AddTasks(ctx context.Context, extracted []model.Task) {
	if len(extracted) == 0 {
		return
	}
	nb.tasks = PrependTasks(nb.tasks, extracted)
	nb.persistTasks(ctx)
}

// ToggleTask flips a task's completion.
func (nb *Notebook) ToggleTask(ctx context.Context, id string) error {
	next, ok := ToggleTask(nb.tasks, id)
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	nb.tasks = next
	nb.persistTasks(ctx)
	return nil
}

// DeleteTask removes a task.
func (nb *Notebook) DeleteTask(ctx context.Context, id string) error {
	next, ok := DeleteTask(nb.tasks, id)
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	nb.tasks = next
	nb.persistTasks(ctx)
	return nil
}

// Stats summarizes the notebook for the admin screen.
type Stats struct {
	Notes           int
	Deleted         int
	Pinned          int
	Folders         int
	Tasks           int
	OpenTasks       int
	Attachments     int
	AttachmentBytes int
	Tags            int
}

// Stats computes collection counts.
func (nb *Notebook) Stats() Stats {
	s := Stats{Folders: len(nb.folders), Tasks: len(nb.tasks)}
	tags := make(map[string]bool)
	for _, n := range nb.notes {
		if n.IsDeleted {
			s.Deleted++
			continue
		}
		s.Notes++
		if n.IsPinned {
			s.Pinned++
		}
		for _, t := range n.Tags {
			tags[t] = true
		}
		for _, a := range n.Attachments {
			s.Attachments++
			s.AttachmentBytes += len(a.Data)
		}
	}
	s.Tags = len(tags)
	for _, t := range nb.tasks {
		if !t.IsCompleted {
			s.OpenTasks++
		}
	}
	return s
}

func (nb *Notebook) persistNotes(ctx context.Context) {
	if err := nb.repo.SaveNotes(ctx, nb.notes); err != nil {
		nb.log.Error("saving notes", "err", err, "count", len(nb.notes))
	}
}

func (nb *Notebook) persistFolders(ctx context.Context) {
	if err := nb.repo.SaveFolders(ctx, nb.folders); err != nil {
		nb.log.Error("saving folders", "err", err, "count", len(nb.folders))
	}
}

func (nb *Notebook) persistTasks(ctx context.Context) {
	if err := nb.repo.SaveTasks(ctx, nb.tasks); err != nil {
		nb.log.Error("saving tasks", "err", err, "count", len(nb.tasks))
	}
}
