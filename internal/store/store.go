package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/smartnote/internal/model"
)

// Persisted keys. Each holds one JSON encoded value.
const (
	KeyUser               = "smartnote_user"
	KeyNotes              = "smartnote_notes"
	KeyFolders            = "smartnote_folders"
	KeyTasks              = "smartnote_tasks"
	KeyTheme              = "smartnote_theme"
	KeyOnboardingComplete = "smartnote_onboarding_complete"
	KeyTutorialComplete   = "smartnote_tutorial_complete"
	KeyAccounts           = "smartnote_accounts"
)

// Store is a durable key-value store holding JSON values.
//
// Load reports found=false with a nil error when key is absent; a missing
// key is never an error.
type Store interface {
	Load(ctx context.Context, key string, dest any) (found bool, err error)
	Save(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open constructs the backend selected by cfg.
func Open(cfg model.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "sqlite":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("creating storage directory: %w", err)
			}
		}
		return NewSQLiteStore(cfg.Path)
	case "disk":
		return NewDiskStore(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
