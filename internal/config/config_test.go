package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "database": {"host": "localhost"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.LogConfig.Level)
	assert.True(t, cfg.Metadata.GoogleBooks.IsEnabled())
	assert.True(t, cfg.Metadata.OpenLibrary.IsEnabled())
	assert.Equal(t, 10, cfg.Metadata.GoogleBooks.Timeout)
	assert.Equal(t, 5, cfg.Metadata.OpenLibrary.AuthorTimeout)
	assert.Equal(t, AIProviderDisabled, cfg.AI.Provider)
	assert.Equal(t, 10, cfg.Search.DefaultTopK)
	assert.Empty(t, cfg.Jobs.EmbeddingBackfillSpec)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, `{"database": {"host": "localhost"}}`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 1}`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 1, "database": {"dsn": "x"}, "ai": {"provider": "openai"}}`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 1, "database": {"dsn": "x"}, "ai": {"provider": "magic"}}`))
	assert.Error(t, err)

	cfg, err := Load(writeConfig(t, `{"port": 1, "database": {"dsn": "x"}, "ai": {"provider": " Local "}}`))
	require.NoError(t, err)
	assert.Equal(t, AIProviderLocal, cfg.AI.Provider)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GOOGLE_BOOKS_API_KEY": "gkey",
		"GOOGLE_BOOKS_ENABLED": "false",
		"OPEN_LIBRARY_ENABLED": "not-a-bool",
		"AI_PROVIDER":          "openai",
		"OPENAI_API_KEY":       "okey",
		"GEMINI_API_KEY":       "gemkey",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	cfg := &Config{}
	applyEnv(cfg, lookup)
	assert.Equal(t, "gkey", cfg.Metadata.GoogleBooks.APIKey)
	assert.False(t, cfg.Metadata.GoogleBooks.IsEnabled())
	assert.True(t, cfg.Metadata.OpenLibrary.IsEnabled())
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "okey", cfg.AI.APIKey)

	cfg = &Config{AI: AIConfig{Provider: "gemini", APIKey: "from-file"}}
	delete(env, "AI_PROVIDER")
	applyEnv(cfg, lookup)
	assert.Equal(t, "from-file", cfg.AI.APIKey)
}
