package admin

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
)

func TestView_ShowsStats(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 120, 40)
	m.SetData(notebook.Stats{Notes: 7, Deleted: 2, Tasks: 5, OpenTasks: 3, AttachmentBytes: 2048},
		[]model.Account{{Email: "a@x.io", Tier: model.TierPremium}, {Email: "b@x.io"}})

	v := m.View()
	assert.Contains(t, v, "Admin Console")
	assert.Contains(t, v, "3/5")
	assert.Contains(t, v, "2.0 kB")
	assert.Equal(t, 1, m.premium())
}

func TestClose(t *testing.T) {
	_, cmd := New(keys.DefaultKeyMap(), 80, 20).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
