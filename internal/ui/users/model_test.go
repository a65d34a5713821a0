package users

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
)

func TestSetAccounts_MarksCurrentUser(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(keys.DefaultKeyMap(), 120, 30)
	m.SetAccounts([]model.Account{
		{Username: "ann", Email: "ann@example.com", Tier: model.TierPremium, CreatedAt: now.Add(-2 * time.Hour)},
		{Username: "bob", Email: "bob@example.com", CreatedAt: now.Add(-72 * time.Hour)},
	}, model.User{Email: "ANN@example.com"}, now)

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "PREMIUM", rows[0][2])
	assert.Equal(t, "Active", rows[0][3])
	assert.Equal(t, "FREE", rows[1][2])
	assert.Equal(t, "Offline", rows[1][3])
	assert.Equal(t, "2 hours ago", rows[0][4])
	assert.Equal(t, "3 days ago", rows[1][4])
}

func TestEmptyAndClose(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	assert.Contains(t, m.View(), "No accounts yet.")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
