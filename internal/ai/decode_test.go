package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/model"
)

func TestDecode_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ParseErrorKind
	}{
		{"empty", "", EmptyResponse},
		{"whitespace", "  \n", EmptyResponse},
		{"null", "null", EmptyResponse},
		{"truncated", `[{"topic": "A"`, MalformedJSON},
		{"wrong shape", `{"topic": "A"}`, MalformedJSON},
		{"missing required", `[{"description": "x", "noteIds": []}]`, SchemaViolation},
		{"missing note ids", `[{"topic": "A", "description": "x"}]`, SchemaViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw, checkToc)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.want, pe.Kind)
		})
	}
}

func TestDecode_ToleratesCodeFence(t *testing.T) {
	raw := "```json\n[{\"topic\":\"Go\",\"description\":\"lang\",\"noteIds\":[\"n1\"]}]\n```"
	items, err := Decode(raw, checkToc)
	require.NoError(t, err)
	assert.Equal(t, []model.TocItem{{Topic: "Go", Description: "lang", NoteIDs: []string{"n1"}}}, items)
}

func TestCheckQuiz(t *testing.T) {
	ok := `[{"question":"Q","options":["a","b","c"],"correctAnswerIndex":2,"explanation":"e"}]`
	qs, err := Decode(ok, checkQuiz)
	require.NoError(t, err)
	assert.Len(t, qs, 1)

	for name, raw := range map[string]string{
		"index out of range": `[{"question":"Q","options":["a","b"],"correctAnswerIndex":2,"explanation":""}]`,
		"negative index":     `[{"question":"Q","options":["a","b"],"correctAnswerIndex":-1,"explanation":""}]`,
		"one option":         `[{"question":"Q","options":["a"],"correctAnswerIndex":0,"explanation":""}]`,
		"blank question":     `[{"question":" ","options":["a","b"],"correctAnswerIndex":0,"explanation":""}]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw, checkQuiz)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, SchemaViolation, pe.Kind)
		})
	}
}

func TestCheckMindMap(t *testing.T) {
	root, err := Decode(`{"id":"r","label":"Root","children":[{"label":"Child","children":[{"id":"g","label":"Grand"}]}]}`, checkMindMap)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "root.0", root.Children[0].ID, "missing ids are filled from the path")
	assert.Equal(t, 3, root.Count())

	_, err = Decode(`{"id":"r","label":"","children":[]}`, checkMindMap)
	assert.Error(t, err)
}

func TestCheckTasks(t *testing.T) {
	_, err := Decode(`[{"content":"x","priority":"urgent"}]`, checkTasks)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, SchemaViolation, pe.Kind)

	ts, err := Decode(`[{"content":"x","dueDate":null}]`, checkTasks)
	require.NoError(t, err)
	assert.Nil(t, ts[0].DueDate)
}

func TestCleanTags(t *testing.T) {
	assert.Equal(t, []string{"go", "Notes"}, cleanTags([]string{" go ", "#Notes", "", "GO", "notes"}))
}

func TestResult_Degraded(t *testing.T) {
	assert.False(t, Result[int]{Value: 1}.Degraded())
	assert.True(t, Result[int]{Err: errors.New("x")}.Degraded())
}
