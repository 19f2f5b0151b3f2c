package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NOHRS_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ":9102", cfg.Server.MetricsAddr)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, int64(10<<20), cfg.Index.MaxFileSize)
	assert.Equal(t, int64(512<<20), cfg.Cache.MaxBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Contains(t, cfg.Index.Path, "index.db")
	assert.Empty(t, cfg.Remotes)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[roots]
home = "/srv/files"

[server]
addr = ":9000"

[log]
level = "debug"
format = "json"

[remotes.backup]
endpoint = "minio.internal:9000"
bucket = "backups"
access_key = "ak"
secret_key = "sk"
use_ssl = true
prefix = "nohrs"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("NOHRS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/files", cfg.Roots.Home)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	remote, ok := cfg.Remotes["backup"]
	require.True(t, ok)
	assert.Equal(t, "minio.internal:9000", remote.Endpoint)
	assert.Equal(t, "backups", remote.Bucket)
	assert.Equal(t, "ak", remote.AccessKey)
	assert.Equal(t, "sk", remote.SecretKey)
	assert.True(t, remote.UseSSL)
	assert.Equal(t, "nohrs", remote.Prefix)

	// Defaults still apply for untouched keys.
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NOHRS_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("NOHRS_SERVER_ADDR", ":7000")
	t.Setenv("NOHRS_LOG_LEVEL", "warn")
	t.Setenv("NOHRS_WATCH_DEBOUNCE", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}
