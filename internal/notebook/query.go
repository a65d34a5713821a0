package notebook

import (
	"strings"

	"github.com/nhle/smartnote/internal/model"
)

// VisibleNotes returns notes that are not deleted and, when folderID is
// set, belong to that folder. Input order is preserved.
func VisibleNotes(notes []model.Note, folderID string) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsDeleted {
			continue
		}
		if folderID != "" && n.FolderID != folderID {
			continue
		}
		out = append(out, n)
	}
	return out
}

// DeletedNotes returns the recycle bin contents.
func DeletedNotes(notes []model.Note) []model.Note {
	out := make([]model.Note, 0)
	for _, n := range notes {
		if n.IsDeleted {
			out = append(out, n)
		}
	}
	return out
}

// SearchNotes filters notes whose title or content contains query,
// ignoring case. An empty query matches everything.
func SearchNotes(notes []model.Note, query string) []model.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes
	}
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

// SplitPinned partitions notes into pinned and unpinned, keeping order
// within each group.
func SplitPinned(notes []model.Note) (pinned, others []model.Note) {
	pinned = make([]model.Note, 0)
	others = make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsPinned {
			pinned = append(pinned, n)
		} else {
			others = append(others, n)
		}
	}
	return pinned, others
}

// TaskGroups buckets open tasks by priority.
type TaskGroups struct {
	High   []model.Task
	Medium []model.Task
	Low    []model.Task
	None   []model.Task
}

// Total is the number of tasks across all groups.
func (g TaskGroups) Total() int {
	return len(g.High) + len(g.Medium) + len(g.Low) + len(g.None)
}

// TasksByPriority groups the tasks that are not completed.
func TasksByPriority(tasks []model.Task) TaskGroups {
	var g TaskGroups
	for _, t := range tasks {
		if t.IsCompleted {
			continue
		}
		switch t.Priority {
		case model.PriorityHigh:
			g.High = append(g.High, t)
		case model.PriorityMedium:
			g.Medium = append(g.Medium, t)
		case model.PriorityLow:
			g.Low = append(g.Low, t)
		default:
			g.None = append(g.None, t)
		}
	}
	return g
}

// FindNote returns the note with id.
func FindNote(notes []model.Note, id string) (model.Note, bool) {
	if i := indexOfNote(notes, id); i >= 0 {
		return notes[i], true
	}
	return model.Note{}, false
}

// ResolveNotes maps ids to notes, skipping ids that no longer exist or
// point at deleted notes.
func ResolveNotes(notes []model.Note, ids []string) []model.Note {
	byID := make(map[string]model.Note, len(notes))
	for _, n := range notes {
		if !n.IsDeleted {
			byID[n.ID] = n
		}
	}
	out := make([]model.Note, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
