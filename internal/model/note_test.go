package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteJSON_EpochMillis(t *testing.T) {
	created := time.UnixMilli(1_700_000_000_000)
	n := Note{
		ID:        "n1",
		Title:     "Groceries",
		Content:   "milk",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
		FolderID:  "f1",
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 1_700_000_000_000, raw["createdAt"])
	assert.EqualValues(t, 1_700_000_060_000, raw["updatedAt"])
	assert.Equal(t, []any{}, raw["tags"])
	assert.Equal(t, false, raw["isDeleted"])

	var back Note
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.CreatedAt.Equal(n.CreatedAt))
	assert.True(t, back.UpdatedAt.Equal(n.UpdatedAt))
	assert.Equal(t, "f1", back.FolderID)
}

func TestNoteJSON_MissingFieldsStayZero(t *testing.T) {
	var n Note
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","content":"c","createdAt":1000}`), &n))

	assert.Equal(t, "", n.Title)
	assert.True(t, n.UpdatedAt.IsZero())
	assert.Nil(t, n.Tags)
	assert.False(t, n.IsPinned)
}

func TestTaskJSON_DueDate(t *testing.T) {
	due := time.UnixMilli(1_800_000_000_000)
	data, err := json.Marshal(Task{ID: "t", Content: "call", DueDate: &due, Priority: PriorityHigh})
	require.NoError(t, err)

	var back Task
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.DueDate)
	assert.True(t, back.DueDate.Equal(due))
	assert.Equal(t, PriorityHigh, back.Priority)

	var nullDue Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t","content":"c","isCompleted":false,"dueDate":null}`), &nullDue))
	assert.Nil(t, nullDue.DueDate)
}

func TestKindForMIME(t *testing.T) {
	assert.Equal(t, AttachmentImage, KindForMIME("image/png"))
	assert.Equal(t, AttachmentAudio, KindForMIME("audio/webm"))
	assert.Equal(t, AttachmentFile, KindForMIME("application/pdf"))
	assert.Equal(t, MediaPDF, MediaKindForMIME("application/pdf"))
	assert.Equal(t, MediaKind(""), MediaKindForMIME("text/plain"))
}
