package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_SetGetDelete(t *testing.T) {
	v := NewWithKeyring(keyring.NewArrayKeyring(nil))

	got, err := v.Get(KeyIMAPPassword)
	require.NoError(t, err)
	assert.Empty(t, got, "missing key is empty")

	require.NoError(t, v.Set(KeyIMAPPassword, "hunter2"))
	got, err = v.Get(KeyIMAPPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, v.Delete(KeyIMAPPassword))
	require.NoError(t, v.Delete(KeyIMAPPassword), "deleting twice is fine")
}

func TestVault_APIKeyPrefersEnvironment(t *testing.T) {
	v := NewWithKeyring(keyring.NewArrayKeyring(nil))
	require.NoError(t, v.SetAPIKey("openai", " stored "))

	key, err := v.APIKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "stored", key)

	v.getenv = func(name string) string {
		if name == "OPENAI_API_KEY" {
			return "from-env"
		}
		return ""
	}
	key, err = v.APIKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)

	key, err = v.APIKey("anthropic")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestVault_DefaultProviderIsGemini(t *testing.T) {
	v := NewWithKeyring(keyring.NewArrayKeyring(nil))
	require.NoError(t, v.SetAPIKey("", "g-key"))

	assert.Equal(t, "ai_api_key_gemini", APIKeyName(""))
	key, err := v.APIKey("gemini")
	require.NoError(t, err)
	assert.Equal(t, "g-key", key)
}
