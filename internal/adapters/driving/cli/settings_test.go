package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/adapters/driven/storage/memory"
)

func withConfigStore(t *testing.T) *memory.ConfigStore {
	t.Helper()
	store := memory.NewConfigStore()
	old := configStore
	configStore = store
	t.Cleanup(func() { configStore = old })
	return store
}

func TestSettingsCmd_SetAndGet(t *testing.T) {
	withConfigStore(t)

	out, err := execute(t, "settings", "set", "embedding.provider", "ollama")
	require.NoError(t, err)
	assert.Contains(t, out, "Set embedding.provider.")

	out, err = execute(t, "settings", "get", "embedding.provider")
	require.NoError(t, err)
	assert.Contains(t, out, "ollama")
}

func TestSettingsCmd_SetParsesTypes(t *testing.T) {
	store := withConfigStore(t)

	_, err := execute(t, "settings", "set", "search.top_k", "7")
	require.NoError(t, err)
	assert.Equal(t, 7, store.GetInt("search.top_k"))

	_, err = execute(t, "settings", "set", "verbose.logging", "true")
	require.NoError(t, err)
	assert.True(t, store.GetBool("verbose.logging"))
}

func TestSettingsCmd_GetMissingKey(t *testing.T) {
	withConfigStore(t)

	_, err := execute(t, "settings", "get", "missing.key")
	assert.Error(t, err)
}

func TestSettingsCmd_ShowMasksSecrets(t *testing.T) {
	store := withConfigStore(t)
	require.NoError(t, store.Set("generation.openai.api_key", "sk-verysecretkey12345"))

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.NotContains(t, out, "sk-verysecretkey12345")
	assert.Contains(t, out, "sk-v...2345")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd...wxyz", maskSecret("abcdefghijklmnopqrstuvwxyz"))
}
