package mindmap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/theme"
)

// CloseMsg returns to the previous screen.
type CloseMsg struct{}

var depthColors = []lipgloss.AdaptiveColor{
	theme.ColorIndigo, theme.ColorPurple, theme.ColorBlue, theme.ColorGreen, theme.ColorOrange,
}

// Model renders a mind map as an indented tree.
type Model struct {
	keys   *keys.KeyMap
	root   *model.MindMapNode
	vp     viewport.Model
	width  int
	height int
}

// New creates an empty mind map screen.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, vp: viewport.New(width, max(height-2, 3)), width: width, height: height}
}

// SetRoot replaces the tree shown. A nil root shows the empty state.
func (m *Model) SetRoot(root *model.MindMapNode) {
	m.root = root
	m.vp.SetContent(Render(root))
	m.vp.GotoTop()
}

// Render draws the tree with box-drawing connectors.
func Render(root *model.MindMapNode) string {
	if root == nil {
		return theme.HelpStyle.Render("No mind map available.")
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(depthColors[0]).Render("◉ " + root.Label))
	b.WriteString("\n")
	renderChildren(&b, root.Children, "", 1)
	return b.String()
}

func renderChildren(b *strings.Builder, nodes []model.MindMapNode, prefix string, depth int) {
	style := lipgloss.NewStyle().Foreground(depthColors[depth%len(depthColors)])
	for i, n := range nodes {
		last := i == len(nodes)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(prefix + branch))
		b.WriteString(style.Render(n.Label))
		b.WriteString("\n")
		renderChildren(b, n.Children, prefix+next, depth+1)
	}
}

// Update handles messages for the mind map screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		return m, func() tea.Msg { return CloseMsg{} }
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the mind map screen.
func (m Model) View() string {
	title := theme.TitleStyle.Render("🧠 Mind Map")
	if m.root != nil {
		title += lipgloss.NewStyle().Foreground(theme.ColorGray).Render(fmt.Sprintf("  %d nodes", m.root.Count()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.vp.View(), theme.HelpStyle.Render("↑/↓ scroll | esc back"))
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = max(height-3, 3)
}
