package settings

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
)

func newSettings() Model {
	m := New(keys.DefaultKeyMap(), 100, 40)
	m.SetConfig(*model.DefaultConfig(), model.User{Username: "ann", Email: "ann@example.com"}, false)
	return m
}

func selectItem(t *testing.T, m Model, id string) (Model, tea.Cmd) {
	t.Helper()
	for i, it := range items {
		if it.id == id {
			m.selectedIdx = i
			return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		}
	}
	t.Fatalf("no item %q", id)
	return m, nil
}

func TestEscCloses(t *testing.T) {
	_, cmd := newSettings().Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}

func TestNavigationWraps(t *testing.T) {
	m := newSettings()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, len(items)-1, m.selectedIdx)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.selectedIdx)
}

func TestActionItems(t *testing.T) {
	m := newSettings()

	_, cmd := selectItem(t, m, "tutorial")
	require.NotNil(t, cmd)
	assert.Equal(t, TutorialMsg{}, cmd())

	_, cmd = selectItem(t, m, "plan")
	require.NotNil(t, cmd)
	assert.Equal(t, UpgradeMsg{}, cmd())
}

func TestRunActionsNeedConfiguration(t *testing.T) {
	m := newSettings()

	m, cmd := selectItem(t, m, "mailin-run")
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Configure mail-in first.")

	m, cmd = selectItem(t, m, "backup-run")
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Configure cloud backup first.")

	cfg := *model.DefaultConfig()
	cfg.Backup.Bucket = "notes"
	m.SetConfig(cfg, model.User{}, true)
	_, cmd = selectItem(t, m, "backup-run")
	require.NotNil(t, cmd)
	assert.Equal(t, BackupNowMsg{}, cmd())
}

func TestFormsOpenAndAbort(t *testing.T) {
	for _, id := range []string{"theme", "ai", "mailin", "backup", "export", "import"} {
		t.Run(id, func(t *testing.T) {
			m, _ := selectItem(t, newSettings(), id)
			assert.Equal(t, ModeForm, m.Mode())
			assert.NotEmpty(t, m.View())

			m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
			assert.Equal(t, ModeList, m.Mode())
		})
	}
}

// complete finishes the open form the way a completed huh form does: the
// menu comes back and the section is submitted.
func complete(m Model) (Model, tea.Cmd) {
	m.mode = ModeList
	return m.submit()
}

func TestSubmitBuildsMessages(t *testing.T) {
	m, _ := selectItem(t, newSettings(), "backup")
	m.fb.bucket = " notes "
	m.fb.region = "eu-west-1"
	m, cmd := complete(m)
	require.NotNil(t, cmd)
	assert.Equal(t, SaveBackupMsg{Config: model.BackupConfig{Bucket: "notes", Region: "eu-west-1", Prefix: "smartnote/"}}, cmd())
	assert.Equal(t, ModeList, m.Mode())

	m, _ = selectItem(t, m, "import")
	m.fb.dir = "/tmp/notes"
	m, cmd = complete(m)
	require.NotNil(t, cmd)
	assert.Equal(t, ImportMsg{Root: "/tmp/notes", Glob: "**/*.md"}, cmd())

	m, _ = selectItem(t, m, "mailin")
	m.fb.host = "imap.example.com"
	m.fb.port = "993"
	m.fb.username = "ann"
	m.fb.mailbox = ""
	m.fb.limit = "10"
	_, cmd = complete(m)
	require.NotNil(t, cmd)
	got, ok := cmd().(SaveMailinMsg)
	require.True(t, ok)
	assert.Equal(t, "INBOX", got.Config.Mailbox)
	assert.Equal(t, 993, got.Config.Port)
	assert.Equal(t, 10, got.Config.Limit)
}

func TestSaveAIValidates(t *testing.T) {
	m, _ := selectItem(t, newSettings(), "ai")
	m.fb.provider = "openai"
	m.fb.apiKey = " sk-test "
	m, cmd := m.submit()
	require.NotNil(t, cmd)
	assert.Equal(t, ModeValidating, m.Mode())

	m, _ = m.Update(ValidateResultMsg{Name: "openai", Err: errors.New("401 unauthorized")})
	assert.Equal(t, ModeValidateResult, m.Mode())
	assert.Contains(t, m.View(), "401 unauthorized")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeList, m.Mode())
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validatePort("993"))
	assert.Error(t, validatePort("70000"))
	assert.Error(t, validatePort("abc"))
	assert.NoError(t, validateOptionalURL(""))
	assert.NoError(t, validateOptionalURL("https://api.example.com/v1"))
	assert.Error(t, validateOptionalURL("example.com"))
	assert.Error(t, validatePositive("0"))
	assert.NoError(t, validateNonNegative("0"))
	assert.Error(t, validateNonNegative("-5"))
	assert.Error(t, validateRequired("Host")(" "))
}
