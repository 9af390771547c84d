package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "http://books.internal:9090"

[sync]
relay_url = "ws://books.internal:9090/ws"
slot_ttl_ms = 250
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://books.internal:9090", cfg.Server.BaseURL)
	assert.Equal(t, "ws://books.internal:9090/ws", cfg.Sync.RelayURL)
	assert.Equal(t, 250, cfg.Sync.SlotTTLMS)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "http://books.internal:9090"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://books.internal:9090", cfg.Server.BaseURL)
	assert.Equal(t, Default().Sync.RelayURL, cfg.Sync.RelayURL)
	assert.Equal(t, 1000, cfg.Sync.SlotTTLMS)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))
	assert.Equal(t, Default(), LoadOrDefault(path))
}
