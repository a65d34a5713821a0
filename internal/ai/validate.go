package ai

import (
	"fmt"
	"strings"

	"github.com/nhle/smartnote/internal/model"
)

// maxMindMapDepth bounds generated trees.
const maxMindMapDepth = 8

func checkToc(items *[]model.TocItem) error {
	for i, it := range *items {
		if strings.TrimSpace(it.Topic) == "" {
			return violation("item %d: missing topic", i)
		}
		if it.NoteIDs == nil {
			return violation("item %d: missing noteIds", i)
		}
	}
	return nil
}

func checkQuiz(qs *[]model.QuizQuestion) error {
	for i, q := range *qs {
		if strings.TrimSpace(q.Question) == "" {
			return violation("question %d: empty text", i)
		}
		if len(q.Options) < 2 {
			return violation("question %d: %d options, need at least 2", i, len(q.Options))
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return violation("question %d: answer index %d out of range", i, q.CorrectAnswerIndex)
		}
	}
	return nil
}

func checkFlashcards(cards *[]model.Flashcard) error {
	for i, c := range *cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			return violation("card %d: front and back are required", i)
		}
	}
	return nil
}

func checkMindMap(root **model.MindMapNode) error {
	if *root == nil {
		return &ParseError{Kind: EmptyResponse}
	}
	return checkNode(*root, 0, "root")
}

// checkNode requires a label on every node. Missing ids are filled from
// the node's path, since the schema only requires them near the root.
func checkNode(n *model.MindMapNode, depth int, path string) error {
	if depth > maxMindMapDepth {
		return violation("%s: deeper than %d levels", path, maxMindMapDepth)
	}
	if strings.TrimSpace(n.Label) == "" {
		return violation("%s: missing label", path)
	}
	if strings.TrimSpace(n.ID) == "" {
		n.ID = path
	}
	for i := range n.Children {
		if err := checkNode(&n.Children[i], depth+1, fmt.Sprintf("%s.%d", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// taskWire is the model's task shape; dueDate is epoch milliseconds.
type taskWire struct {
	Content  string   `json:"content"`
	DueDate  *float64 `json:"dueDate"`
	Priority string   `json:"priority"`
}

func checkTasks(ts *[]taskWire) error {
	for i, t := range *ts {
		if strings.TrimSpace(t.Content) == "" {
			return violation("task %d: empty content", i)
		}
		if !model.Priority(t.Priority).Valid() {
			return violation("task %d: unknown priority %q", i, t.Priority)
		}
	}
	return nil
}

// cleanTags trims, drops blanks and removes duplicates (case-insensitive).
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
