package dashboard

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/theme"
)

// previewLength caps the content snippet shown under a title.
const previewLength = 80

// NoteItem wraps a model.Note so it can be used in a bubbles/list.
type NoteItem struct {
	Note   model.Note
	Folder *model.Folder
}

// FilterValue returns the string used for fuzzy filtering.
func (i NoteItem) FilterValue() string { return i.Note.Title }

// Title returns the note title for the list.
func (i NoteItem) Title() string { return i.Note.Title }

// Description returns the first line of content, trimmed for display.
func (i NoteItem) Description() string {
	return preview(i.Note.Content)
}

// NoteDelegate implements list.ItemDelegate for rendering notes.
type NoteDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d NoteDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d NoteDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused for now).
func (d NoteDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a note as a title line plus a preview line.
func (d NoteDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NoteItem)
	if !ok {
		return
	}
	n := ni.Note

	marker := " "
	if n.IsPinned {
		marker = lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("★")
	}

	var badges []string
	if ni.Folder != nil {
		badges = append(badges, theme.FolderStyle(ni.Folder.Color).Render("▪ "+ni.Folder.Name))
	}
	if len(n.Tags) > 0 {
		display := n.Tags
		if len(display) > 3 {
			display = append(append([]string{}, display[:3]...), "…")
		}
		badges = append(badges, theme.TagStyle.Render("#"+strings.Join(display, " #")))
	}
	if len(n.Attachments) > 0 {
		badges = append(badges, lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(fmt.Sprintf("⎙ %d", len(n.Attachments))))
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(n.UpdatedAt, d.clock()))

	line := fmt.Sprintf("%s %s  %s", marker, n.Title, timeStr)
	if len(badges) > 0 {
		line += "  " + strings.Join(badges, " ")
	}
	desc := lipgloss.NewStyle().Foreground(theme.ColorGray).Render("  " + ni.Description())

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
		desc = theme.SelectedItemStyle.UnsetBold().Render(desc)
	} else {
		line = theme.ListItemStyle.Render(line)
		desc = theme.ListItemStyle.Render(desc)
	}

	fmt.Fprint(w, line+"\n"+desc)
}

func (d NoteDelegate) clock() time.Time {
	if d.now == nil {
		return time.Now()
	}
	return d.now()
}

// preview returns the first non-empty line of content, shortened.
func preview(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#>*- "))
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > previewLength {
			return string(r[:previewLength-1]) + "…"
		}
		return line
	}
	return "Empty note"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 02, 2006")
	}
}
