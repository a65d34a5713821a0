package model

import (
	"encoding/json"
	"time"
)

// DefaultFolderColor is used when a folder has no explicit color.
const DefaultFolderColor = "indigo"

// Folder is a named grouping of notes.
type Folder struct {
	ID        string
	Name      string
	Color     string
	Icon      string
	CreatedAt time.Time
}

type folderJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// MarshalJSON encodes the folder with an epoch-millisecond timestamp.
func (f Folder) MarshalJSON() ([]byte, error) {
	return json.Marshal(folderJSON{
		ID:        f.ID,
		Name:      f.Name,
		Color:     f.Color,
		Icon:      f.Icon,
		CreatedAt: ToMillis(f.CreatedAt),
	})
}

// UnmarshalJSON decodes a persisted folder.
func (f *Folder) UnmarshalJSON(data []byte) error {
	var raw folderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Folder{
		ID:        raw.ID,
		Name:      raw.Name,
		Color:     raw.Color,
		Icon:      raw.Icon,
		CreatedAt: FromMillis(raw.CreatedAt),
	}
	return nil
}
