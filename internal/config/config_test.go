package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().NodeListenAddr, cfg.NodeListenAddr)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
node_listen_addr: "127.0.0.1:9000"
log_level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.NodeListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	t.Setenv("ORCHD_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: noisy\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidCallTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("call_timeout: not-a-duration\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
