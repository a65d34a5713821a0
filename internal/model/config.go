package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. SMARTNOTE_AI_PROVIDER.
const envPrefix = "SMARTNOTE"

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "disk".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the database file (sqlite) or base directory (disk).
	Path string `mapstructure:"path" yaml:"path"`
}

// AIConfig holds settings for the generative model provider.
type AIConfig struct {
	// Provider is one of "gemini", "openai" or "anthropic".
	Provider   string `mapstructure:"provider" yaml:"provider"`
	Model      string `mapstructure:"model" yaml:"model"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
	MaxTokens  int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AutosaveConfig controls the editor's debounced save.
type AutosaveConfig struct {
	DelayMS int `mapstructure:"delay_ms" yaml:"delay_ms"`
}

// LogConfig controls the structured log sink.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// MailinConfig locates the IMAP mailbox used for mail-in notes.
type MailinConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Limit    int    `mapstructure:"limit" yaml:"limit"`

	// PollMinutes checks the mailbox in the background while signed in.
	// Zero turns polling off.
	PollMinutes int `mapstructure:"poll_minutes" yaml:"poll_minutes"`
}

// BackupConfig locates the S3 bucket used for snapshots.
type BackupConfig struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	Region string `mapstructure:"region" yaml:"region"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Autosave AutosaveConfig `mapstructure:"autosave" yaml:"autosave"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Mailin   MailinConfig   `mapstructure:"mailin" yaml:"mailin"`
	Backup   BackupConfig   `mapstructure:"backup" yaml:"backup"`
}

// configDir returns ~/.config/smartnote, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "smartnote")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/smartnote/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    filepath.Join(dir, "smartnote.db"),
		},
		AI: AIConfig{
			Provider:   "gemini",
			Model:      "gemini-2.5-flash",
			TimeoutSec: 45,
			MaxRetries: 2,
			MaxTokens:  4096,
		},
		Display:  DisplayConfig{Theme: string(ThemeSystem)},
		Autosave: AutosaveConfig{DelayMS: 3000},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "smartnote.log"),
		},
		Mailin: MailinConfig{
			Port:    993,
			Mailbox: "INBOX",
			TLS:     true,
			Limit:   20,
		},
		Backup: BackupConfig{
			Region: "us-east-1",
			Prefix: "smartnote/",
		},
	}
}

func newViper(path string) *viper.Viper {
	d := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so that
	// every key is known to AutomaticEnv.
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.timeout_sec", d.AI.TimeoutSec)
	v.SetDefault("ai.max_retries", d.AI.MaxRetries)
	v.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("autosave.delay_ms", d.Autosave.DelayMS)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("mailin.host", d.Mailin.Host)
	v.SetDefault("mailin.port", d.Mailin.Port)
	v.SetDefault("mailin.username", d.Mailin.Username)
	v.SetDefault("mailin.mailbox", d.Mailin.Mailbox)
	v.SetDefault("mailin.tls", d.Mailin.TLS)
	v.SetDefault("mailin.limit", d.Mailin.Limit)
	v.SetDefault("mailin.poll_minutes", d.Mailin.PollMinutes)
	v.SetDefault("backup.bucket", d.Backup.Bucket)
	v.SetDefault("backup.region", d.Backup.Region)
	v.SetDefault("backup.prefix", d.Backup.Prefix)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus environment overrides) are
// returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return decode(v, path)
}

// WatchConfig re-reads the config file whenever it changes on disk and
// hands the new configuration to onChange. It is a no-op when the file
// does not exist.
func WatchConfig(path string, onChange func(*AppConfig)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v, path)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func decode(v *viper.Viper, path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	var err error
	if cfg.Storage.Path, err = homedir.Expand(cfg.Storage.Path); err != nil {
		return nil, fmt.Errorf("expanding storage path: %w", err)
	}
	if cfg.Log.File, err = homedir.Expand(cfg.Log.File); err != nil {
		return nil, fmt.Errorf("expanding log path: %w", err)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return true
	}
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("ai", cfg.AI)
	v.Set("display", cfg.Display)
	v.Set("autosave", cfg.Autosave)
	v.Set("log", cfg.Log)
	v.Set("mailin", cfg.Mailin)
	v.Set("backup", cfg.Backup)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
