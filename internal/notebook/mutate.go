// Package notebook holds the note, folder and task mutators and the
// Notebook container that applies them and writes results through to
// storage.
//
// The package-level functions are pure: they take a collection and return
// the next one without modifying their input.
package notebook

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/smartnote/internal/model"
)

var (
	// ErrNotFound is returned when an id does not match any record.
	ErrNotFound = errors.New("not found")

	// ErrNotInRecycleBin is returned when permanently deleting a note that
	// has not been soft-deleted first.
	ErrNotInRecycleBin = errors.New("note is not in the recycle bin")
)

// DefaultTitle is given to notes saved without a title.
const DefaultTitle = "Untitled"

// IDFunc produces new record ids.
type IDFunc func() string

// NewID is the default IDFunc.
func NewID() string {
	return uuid.NewString()
}

// NoteDraft carries the user-editable fields of a new note.
type NoteDraft struct {
	Title       string
	Content     string
	Tags        []string
	Attachments []model.Attachment
}

// NotePatch describes a partial update; nil fields are left unchanged.
type NotePatch struct {
	Title       *string
	Content     *string
	Tags        *[]string
	Attachments *[]model.Attachment
	FolderID    *string
	IsLocked    *bool
}

// CreateNote inserts a new note at the head of notes. The note joins the
// active folder filter when one is set.
func CreateNote(notes []model.Note, d NoteDraft, folderFilter string, now time.Time, newID IDFunc) ([]model.Note, model.Note) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = DefaultTitle
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	n := model.Note{
		ID:          newID(),
		Title:       title,
		Content:     d.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        tags,
		FolderID:    folderFilter,
		Attachments: d.Attachments,
	}

	out := make([]model.Note, 0, len(notes)+1)
	out = append(out, n)
	out = append(out, notes...)
	return out, n
}

// UpdateNote applies p to the note with id and refreshes its UpdatedAt.
// The second result is false (and notes is returned as is) when id is
// unknown.
func UpdateNote(notes []model.Note, id string, p NotePatch, now time.Time) ([]model.Note, bool) {
	return mapNote(notes, id, func(n *model.Note) {
		if p.Title != nil {
			n.Title = *p.Title
		}
		if p.Content != nil {
			n.Content = *p.Content
		}
		if p.Tags != nil {
			n.Tags = append([]string{}, (*p.Tags)...)
		}
		if p.Attachments != nil {
			n.Attachments = append([]model.Attachment(nil), (*p.Attachments)...)
		}
		if p.FolderID != nil {
			n.FolderID = *p.FolderID
		}
		if p.IsLocked != nil {
			n.IsLocked = *p.IsLocked
		}
		n.UpdatedAt = now
	})
}

// SoftDeleteNote moves a note to the recycle bin. Folder, tags and pin
// state are kept so a restore is lossless.
func SoftDeleteNote(notes []model.Note, id string, now time.Time) ([]model.Note, bool) {
	return mapNote(notes, id, func(n *model.Note) {
		n.IsDeleted = true
		n.UpdatedAt = now
	})
}

// RestoreNote brings a note back from the recycle bin.
func RestoreNote(notes []model.Note, id string, now time.Time) ([]model.Note, bool) {
	return mapNote(notes, id, func(n *model.Note) {
		n.IsDeleted = false
		n.UpdatedAt = now
	})
}

// PermanentlyDeleteNote removes a soft-deleted note for good.
func PermanentlyDeleteNote(notes []model.Note, id string) ([]model.Note, error) {
	idx := indexOfNote(notes, id)
	if idx < 0 {
		return notes, ErrNotFound
	}
	if !notes[idx].IsDeleted {
		return notes, ErrNotInRecycleBin
	}

	out := make([]model.Note, 0, len(notes)-1)
	out = append(out, notes[:idx]...)
	out = append(out, notes[idx+1:]...)
	return out, nil
}

// TogglePin flips IsPinned. UpdatedAt and ordering are left alone.
func TogglePin(notes []model.Note, id string) ([]model.Note, bool) {
	return mapNote(notes, id, func(n *model.Note) {
		n.IsPinned = !n.IsPinned
	})
}

// StampNote sets a note's creation and update times. Zero times are left
// unchanged.
func StampNote(notes []model.Note, id string, created, updated time.Time) ([]model.Note, bool) {
	return mapNote(notes, id, func(n *model.Note) {
		if !created.IsZero() {
			n.CreatedAt = created
		}
		if !updated.IsZero() {
			n.UpdatedAt = updated
		}
	})
}

func mapNote(notes []model.Note, id string, fn func(*model.Note)) ([]model.Note, bool) {
	idx := indexOfNote(notes, id)
	if idx < 0 {
		return notes, false
	}
	out := make([]model.Note, len(notes))
	copy(out, notes)
	fn(&out[idx])
	return out, true
}

func indexOfNote(notes []model.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateFolder appends a folder with the default color.
func CreateFolder(folders []model.Folder, name string, now time.Time, newID IDFunc) ([]model.Folder, model.Folder) {
	f := model.Folder{
		ID:        newID(),
		Name:      strings.TrimSpace(name),
		Color:     model.DefaultFolderColor,
		CreatedAt: now,
	}
	out := make([]model.Folder, 0, len(folders)+1)
	out = append(out, folders...)
	out = append(out, f)
	return out, f
}

// DeleteFolder removes a folder, moves its notes to no folder, and clears
// activeFilter if it pointed at the removed folder.
func DeleteFolder(folders []model.Folder, notes []model.Note, id, activeFilter string) ([]model.Folder, []model.Note, string) {
	nextFolders := make([]model.Folder, 0, len(folders))
	for _, f := range folders {
		if f.ID != id {
			nextFolders = append(nextFolders, f)
		}
	}

	nextNotes := make([]model.Note, len(notes))
	for i, n := range notes {
		if n.FolderID == id {
			n.FolderID = ""
		}
		nextNotes[i] = n
	}

	if activeFilter == id {
		activeFilter = ""
	}
	return nextFolders, nextNotes, activeFilter
}

// AddTask appends a manually created task.
func AddTask(tasks []model.Task, content string, priority model.Priority, newID IDFunc) ([]model.Task, model.Task) {
	t := model.Task{
		ID:       newID(),
		Content:  strings.TrimSpace(content),
		Priority: priority,
	}
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, tasks...)
	out = append(out, t)
	return out, t
}

// ToggleTask flips a task's completion.
func ToggleTask(tasks []model.Task, id string) ([]model.Task, bool) {
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		out := make([]model.Task, len(tasks))
		copy(out, tasks)
		out[i].IsCompleted = !out[i].IsCompleted
		return out, true
	}
	return tasks, false
}

// DeleteTask removes a task.
func DeleteTask(tasks []model.Task, id string) ([]model.Task, bool) {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	if len(out) == len(tasks) {
		return tasks, false
	}
	return out, true
}

// PrependTasks inserts extracted tasks ahead of the existing ones.
func PrependTasks(tasks []model.Task, extracted []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks)+len(extracted))
	out = append(out, extracted...)
	out = append(out, tasks...)
	return out
}
