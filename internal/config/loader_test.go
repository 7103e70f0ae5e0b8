package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TOKENCOUNTER_CONFIG_PATH", "TOKENCOUNTER_ADDR", "TOKENCOUNTER_MODEL",
		"TOKENCOUNTER_LOCALE", "TOKENCOUNTER_STATE_PATH", "TOKENCOUNTER_LOG_LEVEL",
		"TOKENCOUNTER_LOG_FILE", "TOKENCOUNTER_SHUTDOWN_TIMEOUT", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	require.NotNil(t, loader)
	assert.NotEmpty(t, loader.searchPaths)
}

func TestGetDefaultSearchPaths(t *testing.T) {
	t.Run("without env var", func(t *testing.T) {
		clearEnv(t)
		paths := getDefaultSearchPaths()

		assert.Contains(t, paths, "tokencounter.yaml")
		assert.Contains(t, paths, ".tokencounter.yaml")
	})

	t.Run("with env var", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TOKENCOUNTER_CONFIG_PATH", "/custom/config.yaml")

		paths := getDefaultSearchPaths()
		require.NotEmpty(t, paths)
		assert.Equal(t, "/custom/config.yaml", paths[0])
	})
}

func TestLoaderLoad(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("load from explicit path", func(t *testing.T) {
		clearEnv(t)
		configPath := filepath.Join(tempDir, "explicit.yaml")
		content := `
server:
  addr: 127.0.0.1:9000
widget:
  default_model: gpt-4.1-mini
  locale: de
logging:
  level: debug
  format: json
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		cfg, err := NewLoader().Load(configPath)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
		assert.Equal(t, "/mcp", cfg.Server.MCPPath)
		assert.Equal(t, "gpt-4.1-mini", cfg.Widget.DefaultModel)
		assert.Equal(t, "de", cfg.Widget.Locale)
		assert.Equal(t, "default", cfg.Widget.StateKey)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		clearEnv(t)
		configPath := filepath.Join(tempDir, "env.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("widget:\n  default_model: gpt-4o\n"), 0644))
		t.Setenv("TOKENCOUNTER_MODEL", "gpt-4.1-mini")
		t.Setenv("TOKENCOUNTER_SHUTDOWN_TIMEOUT", "12")

		cfg, err := NewLoader().Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4.1-mini", cfg.Widget.DefaultModel)
		assert.Equal(t, 12, cfg.Server.ShutdownTimeout)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		clearEnv(t)
		configPath := filepath.Join(tempDir, "broken.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("server: [\n"), 0644))

		_, err := NewLoader().Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})

	t.Run("validation failure", func(t *testing.T) {
		clearEnv(t)
		configPath := filepath.Join(tempDir, "invalid.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("widget:\n  default_model: davinci\n"), 0644))

		_, err := NewLoader().Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})

	t.Run("no file uses defaults", func(t *testing.T) {
		clearEnv(t)
		loader := &Loader{searchPaths: []string{filepath.Join(tempDir, "missing.yaml")}}

		cfg, err := loader.Load("")
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", cfg.Widget.DefaultModel)
	})
}

func TestLoaderSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := NewDefaultConfig()
	cfg.Widget.DefaultModel = "gpt-4o"
	cfg.Server.ShutdownTimeout = 9

	loader := NewLoader()
	require.NoError(t, loader.Save(path, cfg))

	loaded, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", loaded.Widget.DefaultModel)
	assert.Equal(t, 9, loaded.Server.ShutdownTimeout)
	assert.Equal(t, path, loader.GetConfigPath(path))
}

func TestCreateSampleConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sample", "config.yaml")
	require.NoError(t, CreateSampleConfig(path))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.Widget.DefaultModel)
}
