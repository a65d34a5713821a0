package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/nhle/smartnote/internal/logging"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
	"github.com/nhle/smartnote/internal/store"
)

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
}

// AddGlobalArgs registers the persistent flags on the root command.
func AddGlobalArgs(cmd *cobra.Command, o *GlobalOptions) {
	cmd.PersistentFlags().StringVar(&o.ConfigPath, "config", "",
		"Config file (default ~/.config/smartnote/config.yaml).")
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false,
		"Log at debug level.")
}

// env is what a command runs against: the loaded configuration, the log
// and an open notebook.
type env struct {
	cfg      *model.AppConfig
	cfgPath  string
	log      *slog.Logger
	repo     *store.Repository
	notebook *notebook.Notebook
	closers  []io.Closer
}

func openEnv(ctx context.Context, o *GlobalOptions) (*env, error) {
	path := o.ConfigPath
	if path == "" {
		path = model.DefaultConfigPath()
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	log, logFile, err := logging.Open(cfg.Log)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, cfgPath: path, log: log, closers: []io.Closer{logFile}}

	s, err := store.Open(cfg.Storage)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	e.closers = append(e.closers, s)
	e.repo = store.NewRepository(s)

	e.notebook = notebook.New(e.repo, notebook.WithLogger(log))
	if err := e.notebook.Load(ctx); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	log.Debug("environment ready", "config", path, "storage", cfg.Storage.Backend)
	return e, nil
}

// Close releases the store and the log file, newest first.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
