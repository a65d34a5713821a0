package mindmap

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/smartnote/internal/model"
)

func TestRender_Tree(t *testing.T) {
	root := &model.MindMapNode{ID: "r", Label: "Go", Children: []model.MindMapNode{
		{ID: "a", Label: "Concurrency", Children: []model.MindMapNode{{ID: "a1", Label: "Channels"}}},
		{ID: "b", Label: "Tooling"},
	}}

	want := "◉ Go\n" +
		"├── Concurrency\n" +
		"│   └── Channels\n" +
		"└── Tooling\n"
	assert.Equal(t, want, ansi.Strip(Render(root)))
}

func TestRender_Nil(t *testing.T) {
	assert.Equal(t, "No mind map available.", ansi.Strip(Render(nil)))
}
