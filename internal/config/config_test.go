package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is t.Chdir, which needs Go 1.24; this toolchain is older.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 20, cfg.SessionSize)
	assert.Equal(t, time.Duration(0), cfg.RoomIdleTTL)
	assert.Equal(t, 40, cfg.EventLimit)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 3, cfg.TMDB.Pages)
	assert.Equal(t, 10*time.Second, cfg.TMDB.Timeout)
	assert.Empty(t, cfg.TMDB.APIKey)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))

	yaml := []byte("mode: debug\nport: 9999\nsession_size: 5\nroom_idle_ttl: 30m\ntmdb:\n  api_key: abc123\n  pages: 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.dev.yaml"), yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 5, cfg.SessionSize)
	assert.Equal(t, 30*time.Minute, cfg.RoomIdleTTL)
	assert.Equal(t, "abc123", cfg.TMDB.APIKey)
	assert.Equal(t, 1, cfg.TMDB.Pages)
	// untouched keys keep their defaults
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
}

// A file that parses as yaml but cannot be decoded into Config must
// surface an error instead of a half-filled config; main treats that
// error as fatal.
func TestLoad_RejectsUnparseableValues(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))

	yaml := []byte("ping_period: not-a-duration\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.dev.yaml"), yaml, 0o644))

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}
