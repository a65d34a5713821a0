package model

import (
	"encoding/json"
	"strings"
	"time"
)

// AttachmentKind identifies the media type of an attachment.
type AttachmentKind string

const (
	AttachmentImage   AttachmentKind = "image"
	AttachmentAudio   AttachmentKind = "audio"
	AttachmentFile    AttachmentKind = "file"
	AttachmentDrawing AttachmentKind = "drawing"
)

// KindForMIME maps a MIME type onto the attachment kind used to render it.
func KindForMIME(mimeType string) AttachmentKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return AttachmentImage
	case strings.HasPrefix(mimeType, "audio/"):
		return AttachmentAudio
	default:
		return AttachmentFile
	}
}

// Attachment is a binary payload carried inline on a note.
type Attachment struct {
	ID       string         `json:"id"`
	Kind     AttachmentKind `json:"type"`
	MimeType string         `json:"mimeType"`
	// Data is the base64 encoded payload.
	Data     string `json:"data"`
	FileName string `json:"fileName,omitempty"`
}

// Note is a user-authored document.
type Note struct {
	ID            string
	Title         string
	Content       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Tags          []string
	FolderID      string
	IsDeleted     bool
	IsPinned      bool
	IsLocked      bool
	Attachments   []Attachment
	Collaborators []string
}

// noteJSON is the persisted shape of a Note. Timestamps are epoch
// milliseconds; optional fields are pointers so that absent keys can be
// told apart from zero values when older data is read back.
type noteJSON struct {
	ID            string       `json:"id"`
	Title         *string      `json:"title,omitempty"`
	Content       string       `json:"content"`
	CreatedAt     int64        `json:"createdAt"`
	UpdatedAt     *int64       `json:"updatedAt,omitempty"`
	Tags          []string     `json:"tags"`
	FolderID      string       `json:"folderId,omitempty"`
	IsDeleted     bool         `json:"isDeleted"`
	IsPinned      bool         `json:"isPinned"`
	IsLocked      bool         `json:"isLocked,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
	Collaborators []string     `json:"collaborators,omitempty"`
}

// MarshalJSON encodes the note in its persisted form.
func (n Note) MarshalJSON() ([]byte, error) {
	title := n.Title
	updated := ToMillis(n.UpdatedAt)
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(noteJSON{
		ID:            n.ID,
		Title:         &title,
		Content:       n.Content,
		CreatedAt:     ToMillis(n.CreatedAt),
		UpdatedAt:     &updated,
		Tags:          tags,
		FolderID:      n.FolderID,
		IsDeleted:     n.IsDeleted,
		IsPinned:      n.IsPinned,
		IsLocked:      n.IsLocked,
		Attachments:   n.Attachments,
		Collaborators: n.Collaborators,
	})
}

// UnmarshalJSON decodes a persisted note. Missing fields are left at their
// zero values; the store layer applies drift defaults afterwards.
func (n *Note) UnmarshalJSON(data []byte) error {
	var raw noteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Note{
		ID:            raw.ID,
		Content:       raw.Content,
		CreatedAt:     FromMillis(raw.CreatedAt),
		Tags:          raw.Tags,
		FolderID:      raw.FolderID,
		IsDeleted:     raw.IsDeleted,
		IsPinned:      raw.IsPinned,
		IsLocked:      raw.IsLocked,
		Attachments:   raw.Attachments,
		Collaborators: raw.Collaborators,
	}
	if raw.Title != nil {
		n.Title = *raw.Title
	}
	if raw.UpdatedAt != nil {
		n.UpdatedAt = FromMillis(*raw.UpdatedAt)
	}
	return nil
}

// HasTag reports whether the note carries tag (exact match).
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToMillis converts t to epoch milliseconds; the zero time maps to 0.
func ToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a time; 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
