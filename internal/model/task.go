package model

import (
	"encoding/json"
	"time"
)

// Priority ranks a task. The empty value means no priority was assigned.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities (or none).
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Label returns a display label for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "None"
	}
}

// Task is an actionable item, created manually or extracted from a note.
type Task struct {
	ID           string
	Content      string
	IsCompleted  bool
	DueDate      *time.Time
	Priority     Priority
	SourceNoteID string
}

type taskJSON struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	IsCompleted  bool     `json:"isCompleted"`
	DueDate      *int64   `json:"dueDate,omitempty"`
	Priority     Priority `json:"priority,omitempty"`
	SourceNoteID string   `json:"sourceNoteId,omitempty"`
}

// MarshalJSON encodes the task with an epoch-millisecond due date.
func (t Task) MarshalJSON() ([]byte, error) {
	raw := taskJSON{
		ID:           t.ID,
		Content:      t.Content,
		IsCompleted:  t.IsCompleted,
		Priority:     t.Priority,
		SourceNoteID: t.SourceNoteID,
	}
	if t.DueDate != nil {
		ms := ToMillis(*t.DueDate)
		raw.DueDate = &ms
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a persisted task.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task{
		ID:           raw.ID,
		Content:      raw.Content,
		IsCompleted:  raw.IsCompleted,
		Priority:     raw.Priority,
		SourceNoteID: raw.SourceNoteID,
	}
	if raw.DueDate != nil && *raw.DueDate != 0 {
		due := FromMillis(*raw.DueDate)
		t.DueDate = &due
	}
	return nil
}

// IsOverdue reports whether an open task is past its due date.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}
