package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"

	"github.com/nhle/smartnote/internal/ai"
	"github.com/nhle/smartnote/internal/credential"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/theme"
	"github.com/nhle/smartnote/internal/transfer"
	"github.com/nhle/smartnote/internal/ui/settings"
)

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// configReloadedMsg carries a config file edited outside the app.
type configReloadedMsg struct {
	cfg *model.AppConfig
}

type gatewayMsg struct {
	provider string
	gateway  *ai.Gateway
	err      error
}

type backupDoneMsg struct {
	key string
	err error
}

type exportDoneMsg struct {
	dir   string
	paths []string
	err   error
}

type importReadMsg struct {
	items []transfer.Imported
	err   error
}

// watchConfig starts watching the config file. Changes are handed to the
// update loop through the reloads channel.
func (m Model) watchConfig() tea.Cmd {
	if m.cfgPath == "" {
		return nil
	}
	path, reloads, log := m.cfgPath, m.reloads, m.log
	return func() tea.Msg {
		err := model.WatchConfig(path, func(cfg *model.AppConfig) {
			select {
			case reloads <- cfg:
			default:
			}
		})
		if err != nil {
			log.Warn("watching config", "path", path, "err", err)
		}
		return nil
	}
}

// waitForReload blocks until the config file changes.
func (m Model) waitForReload() tea.Cmd {
	reloads := m.reloads
	return func() tea.Msg {
		return configReloadedMsg{cfg: <-reloads}
	}
}

// applyReload adopts a theme changed in the config file.
func (m *Model) applyReload(cfg *model.AppConfig) {
	if cfg == nil || cfg.Display.Theme == m.cfg.Display.Theme {
		return
	}
	t := model.ParseTheme(cfg.Display.Theme)
	m.log.Info("config reloaded", "theme", t)
	m.setTheme(t)
}

func (m *Model) setTheme(t model.Theme) {
	m.cfg.Display.Theme = string(t)
	theme.Apply(t)
	if err := m.repo.SaveTheme(context.Background(), t); err != nil {
		m.log.Error("saving theme", "err", err)
	}
}

func (m *Model) persistConfig() {
	if m.cfgPath == "" {
		return
	}
	if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
		m.log.Error("saving config", "path", m.cfgPath, "err", err)
		m.alert = "Could not save settings: " + err.Error()
	}
}

func (m Model) hasAPIKey() bool {
	key, err := m.vault.APIKey(m.cfg.AI.Provider)
	return err == nil && key != ""
}

// changeTheme handles the appearance setting.
func (m *Model) changeTheme(t model.Theme) {
	m.setTheme(t)
	m.persistConfig()
	m.settings.SetConfig(*m.cfg, m.user, m.hasAPIKey())
	m.settings.SetStatus(fmt.Sprintf("Theme set to %s.", t))
}

// saveAI stores the provider settings and key, then rebuilds and checks
// the gateway off the update loop.
func (m *Model) saveAI(msg settings.SaveAIMsg) tea.Cmd {
	m.cfg.AI = msg.Config
	m.persistConfig()

	if msg.APIKey != "" {
		if err := m.vault.SetAPIKey(msg.Config.Provider, msg.APIKey); err != nil {
			m.log.Error("storing API key", "provider", msg.Config.Provider, "err", err)
			return func() tea.Msg {
				return settings.ValidateResultMsg{Name: msg.Config.Provider, Err: err}
			}
		}
	}

	cfg, vault, opts := m.cfg.AI, m.vault, m.gatewayOptions()
	return func() tea.Msg {
		ctx := context.Background()
		gw, err := NewGateway(ctx, cfg, vault, opts...)
		if err == nil {
			err = gw.Check(ctx)
		}
		return gatewayMsg{provider: cfg.Provider, gateway: gw, err: err}
	}
}

func (m *Model) gatewayReady(msg gatewayMsg) tea.Cmd {
	m.gateway = msg.gateway
	m.chat.SetAvailable(m.gateway.Available())
	m.settings.SetConfig(*m.cfg, m.user, m.hasAPIKey())
	if msg.err != nil {
		m.log.Warn("AI provider check failed", "provider", msg.provider, "err", msg.err)
	}
	var cmd tea.Cmd
	m.settings, cmd = m.settings.Update(settings.ValidateResultMsg{Name: msg.provider, Err: msg.err})
	return cmd
}

// saveMailin stores the mailbox settings and restarts polling with them.
func (m *Model) saveMailin(msg settings.SaveMailinMsg) tea.Cmd {
	m.cfg.Mailin = msg.Config
	if msg.Password != "" {
		if err := m.vault.Set(credential.KeyIMAPPassword, msg.Password); err != nil {
			m.log.Error("storing IMAP password", "err", err)
			m.settings.SetStatus("Could not store the password: " + err.Error())
			return nil
		}
	}
	m.persistConfig()
	m.settings.SetConfig(*m.cfg, m.user, m.hasAPIKey())
	m.settings.SetStatus("Mail-in settings saved.")

	m.stopPolling()
	return m.startPolling()
}

func (m *Model) saveBackup(msg settings.SaveBackupMsg) {
	m.cfg.Backup = msg.Config
	m.persistConfig()
	m.settings.SetConfig(*m.cfg, m.user, m.hasAPIKey())
	m.settings.SetStatus("Backup settings saved.")
}

// backupNow snapshots the notebook and uploads it to the configured bucket.
func (m *Model) backupNow() tea.Cmd {
	cfg := m.cfg.Backup
	snap := transfer.NewSnapshot(m.notebook.Notes(), m.notebook.Folders(), m.notebook.Tasks(), m.now())
	return func() tea.Msg {
		ctx := context.Background()
		client, err := transfer.NewS3Client(ctx, transfer.S3Options{Region: cfg.Region})
		if err != nil {
			return backupDoneMsg{err: err}
		}
		key, err := transfer.Backup(ctx, client, cfg.Bucket, cfg.Prefix, snap)
		return backupDoneMsg{key: key, err: err}
	}
}

func (m *Model) backupDone(msg backupDoneMsg) {
	if msg.err != nil {
		m.log.Error("backup failed", "err", msg.err)
		m.settings.SetStatus("Backup failed: " + msg.err.Error())
		return
	}
	m.log.Info("backup uploaded", "key", msg.key)
	m.settings.SetStatus("Backed up to s3://" + m.cfg.Backup.Bucket + "/" + msg.key)
}

func (m *Model) exportNotes(dir string) tea.Cmd {
	notes, folders := m.notebook.Live(), m.notebook.Folders()
	return func() tea.Msg {
		p, err := homedir.Expand(dir)
		if err != nil {
			return exportDoneMsg{dir: dir, err: err}
		}
		paths, err := transfer.ExportMarkdown(p, notes, folders)
		return exportDoneMsg{dir: p, paths: paths, err: err}
	}
}

func (m *Model) exportDone(msg exportDoneMsg) {
	if msg.err != nil {
		m.log.Error("export failed", "dir", msg.dir, "err", msg.err)
		m.settings.SetStatus("Export failed: " + msg.err.Error())
		return
	}
	m.settings.SetStatus(fmt.Sprintf("Exported %d notes to %s.", len(msg.paths), msg.dir))
}

func (m *Model) readImport(root, glob string) tea.Cmd {
	return func() tea.Msg {
		p, err := homedir.Expand(root)
		if err != nil {
			return importReadMsg{err: err}
		}
		items, err := transfer.ImportMarkdown(p, glob)
		return importReadMsg{items: items, err: err}
	}
}

func (m *Model) importRead(msg importReadMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error("import failed", "err", msg.err)
		m.settings.SetStatus("Import failed: " + msg.err.Error())
		return nil
	}
	notes, err := transfer.Save(context.Background(), m.notebook, msg.items)
	if err != nil {
		m.log.Error("saving imported notes", "err", err)
		m.settings.SetStatus(fmt.Sprintf("Imported %d notes, then failed: %v", len(notes), err))
	} else {
		m.settings.SetStatus(fmt.Sprintf("Imported %d notes.", len(notes)))
	}
	return m.refreshCmd()
}
