package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{
		"GITHUB_TOKEN", "GIST_ID", "HABITBOARD_STORAGE", "HABITBOARD_S3_BUCKET",
		"HABITBOARD_S3_REGION", "HABITBOARD_S3_ENDPOINT", "HABITBOARD_S3_PATH_STYLE", "HABITBOARD_ADDR",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
	assert.Equal(t, filepath.Join(dir, "habitboard", "config.toml"), ConfigPath())
	assert.Equal(t, filepath.Join(dir, "data", "habitboard", "habitboard.db"), HistoryPath(cfg))
	assert.Equal(t, filepath.Join(dir, "data", "habitboard", "habit_tracker_backup.json"), BackupPath(cfg))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.Storage.Driver = DriverS3
	cfg.S3.Bucket = "habits"
	cfg.Gist.ID = "abc123"
	cfg.Appearance.Theme = "tokyo-night"
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	info, err := os.Stat(ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.Gist.ID = "from-file"
	cfg.Gist.Token = "file-token"
	require.NoError(t, Save(cfg))

	t.Setenv("GIST_ID", "from-env")
	t.Setenv("HABITBOARD_STORAGE", "LOCAL")
	t.Setenv("HABITBOARD_S3_PATH_STYLE", "true")

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", GetGistID(got))
	assert.Equal(t, "file-token", GetGistToken(got))
	assert.Equal(t, DriverLocal, got.Storage.Driver)
	assert.True(t, got.S3.PathStyle)

	t.Setenv("GITHUB_TOKEN", "env-token")
	assert.Equal(t, "env-token", GetGistToken(got))
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(ConfigDir(), 0o750))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[storage]\ndriver = \"ftp\"\n"), 0o600))

	_, err := Load()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[storage\n"), 0o600))
	_, err = Load()
	assert.ErrorContains(t, err, "parsing config")
}
