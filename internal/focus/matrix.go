package focus

import (
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
)

// Quadrant is one cell of the Eisenhower matrix.
type Quadrant struct {
	Title    string
	Priority model.Priority
	Tasks    []model.Task
}

// Matrix places open tasks into quadrants by priority. Tasks without a
// priority are listed with the low ones.
func Matrix(tasks []model.Task) []Quadrant {
	g := notebook.TasksByPriority(tasks)
	later := append(append([]model.Task{}, g.Low...), g.None...)
	return []Quadrant{
		{Title: "Do First (High)", Priority: model.PriorityHigh, Tasks: g.High},
		{Title: "Schedule (Medium)", Priority: model.PriorityMedium, Tasks: g.Medium},
		{Title: "Later (Low)", Priority: model.PriorityLow, Tasks: later},
	}
}

// PriorityChoices are the options offered when adding a task from the
// focus screen, in display order.
var PriorityChoices = []struct {
	Label    string
	Priority model.Priority
}{
	{"Urgent", model.PriorityHigh},
	{"Normal", model.PriorityMedium},
	{"Low", model.PriorityLow},
}
