package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "smartnote"

// Keyring item names.
const (
	KeyIMAPPassword = "imap_password"
	keyAPIPrefix    = "ai_api_key_"
)

// envKeys are checked before the keyring, so a key exported in the shell
// wins over a stored one.
var envKeys = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// APIKeyName is the keyring item holding provider's API key.
func APIKeyName(provider string) string {
	if provider == "" {
		provider = "gemini"
	}
	return keyAPIPrefix + strings.ToLower(provider)
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/smartnote/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("smartnote-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Vault reads and writes secrets. The system keyring is opened lazily on
// first use.
type Vault struct {
	open   func() (keyring.Keyring, error)
	getenv func(string) string
	ring   keyring.Keyring
}

// New returns a Vault over the system keyring.
func New() *Vault {
	return &Vault{open: openKeyring, getenv: os.Getenv}
}

// NewWithKeyring returns a Vault over ring, ignoring the environment.
func NewWithKeyring(ring keyring.Keyring) *Vault {
	return &Vault{
		open:   func() (keyring.Keyring, error) { return ring, nil },
		getenv: func(string) string { return "" },
	}
}

func (v *Vault) openRing() (keyring.Keyring, error) {
	if v.ring != nil {
		return v.ring, nil
	}
	ring, err := v.open()
	if err != nil {
		return nil, err
	}
	v.ring = ring
	return ring, nil
}

// Get retrieves a credential value by key. A missing key is returned as
// an empty string without error.
func (v *Vault) Get(key string) (string, error) {
	ring, err := v.openRing()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (v *Vault) Set(key string, value string) error {
	ring, err := v.openRing()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "SmartNote " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key. Removing a missing key is not an
// error.
func (v *Vault) Delete(key string) error {
	ring, err := v.openRing()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// APIKey returns the API key for provider from the environment or, failing
// that, the keyring. No key is not an error: the AI features degrade.
func (v *Vault) APIKey(provider string) (string, error) {
	if env, ok := envKeys[strings.ToLower(provider)]; ok {
		if key := strings.TrimSpace(v.getenv(env)); key != "" {
			return key, nil
		}
	} else if provider == "" {
		if key := strings.TrimSpace(v.getenv(envKeys["gemini"])); key != "" {
			return key, nil
		}
	}
	return v.Get(APIKeyName(provider))
}

// SetAPIKey stores provider's key in the keyring.
func (v *Vault) SetAPIKey(provider, key string) error {
	return v.Set(APIKeyName(provider), strings.TrimSpace(key))
}
