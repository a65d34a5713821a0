package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smartnote/internal/account"
	"github.com/nhle/smartnote/internal/app"
	"github.com/nhle/smartnote/internal/credential"
)

func runUI(ctx context.Context, g *GlobalOptions) error {
	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	vault := credential.New()
	gw, err := app.NewGateway(ctx, e.cfg.AI, vault, app.GatewayOptions(e.cfg.AI, e.log)...)
	if err != nil {
		// The app still runs; AI features report that no provider is set.
		e.log.Warn("AI provider unavailable", "provider", e.cfg.AI.Provider, "err", err)
	}

	m := app.New(ctx, app.Deps{
		Config:     e.cfg,
		ConfigPath: e.cfgPath,
		Repo:       e.repo,
		Notebook:   e.notebook,
		Accounts:   account.NewService(e.repo),
		Vault:      vault,
		Gateway:    gw,
		Log:        e.log,
	})

	e.log.Info("starting", "version", Version)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running terminal app: %w", err)
	}
	return nil
}
