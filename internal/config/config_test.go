package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3, cfg.Ledger.Difficulty)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
storage:
  backend: pebble
  path: /var/lib/degreechain
ledger:
  difficulty: 2
  workers: 4
  auto_mine_interval: 30s
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, "pebble", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/degreechain", cfg.Storage.Path)
	assert.Equal(t, 2, cfg.Ledger.Difficulty)
	assert.Equal(t, 4, cfg.Ledger.Workers)
	assert.Equal(t, 30*time.Second, cfg.Ledger.AutoMineInterval)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  difficulty: 2\n"), 0o644))

	t.Setenv("DEGREECHAIN_DIFFICULTY", "4")
	t.Setenv("DEGREECHAIN_STORAGE_PATH", "/tmp/state.json")
	t.Setenv("DEGREECHAIN_SERVER_PORT", "not-a-port")
	t.Setenv("DEGREECHAIN_MINE_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Ledger.Difficulty)
	assert.Equal(t, "/tmp/state.json", cfg.Storage.Path)
	assert.Equal(t, 8080, cfg.Server.Port, "malformed env values are ignored")
	assert.Equal(t, 45*time.Second, cfg.Ledger.MineTimeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"difficulty": "ledger:\n  difficulty: 65\n",
		"workers":    "ledger:\n  workers: 0\n",
		"backend":    "storage:\n  backend: leveldb\n",
		"yaml":       "ledger: [",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}
