package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/igsheet/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("PORT", "")
	os.Unsetenv("BOT_TOKEN")
	os.Unsetenv("PORT")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, used, err := config.Load([]string{t.TempDir()})
	require.NoError(t, err)

	assert.Empty(t, used)
	assert.Empty(t, cfg.Bot.Token)
	assert.Equal(t, 6, cfg.Bot.TimestampOffsetHours)
	assert.Equal(t, 4, cfg.Bot.MaxConcurrent)
	assert.Equal(t, int64(20<<20), cfg.Bot.MaxFileSize)
	assert.Equal(t, "0.0.0.0", cfg.Health.Host)
	assert.Equal(t, 10000, cfg.Health.Port)
	assert.Equal(t, "info", cfg.Debug.LogLevel)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	clearEnv(t)

	empty := t.TempDir()
	dir := t.TempDir()
	writeConfig(t, dir, `
version = 1

[bot]
token = "file-token"
max_concurrent = 2

[debug]
log_level = "debug"
`)

	t.Setenv("PORT", "8080")
	t.Setenv("IGSHEET_BOT__MAX_FILE_SIZE", "1024")

	cfg, used, err := config.Load([]string{empty, dir})
	require.NoError(t, err)

	assert.Equal(t, dir, used)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, 2, cfg.Bot.MaxConcurrent)
	assert.Equal(t, int64(1024), cfg.Bot.MaxFileSize)
	assert.Equal(t, 8080, cfg.Health.Port)
	assert.Equal(t, "debug", cfg.Debug.LogLevel)

	// Environment token wins over the file
	t.Setenv("BOT_TOKEN", "env-token")

	cfg, _, err = config.Load([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)
}

func TestLoad_Version(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "missing version", content: "[bot]\ntoken = \"x\"\n", wantErr: config.ErrConfigVersionMissing},
		{name: "wrong version", content: "version = 99\n", wantErr: config.ErrConfigVersionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, _, err := config.Load([]string{dir})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	writeConfig(t, dir, "version = = 1")

	_, _, err := config.Load([]string{dir})
	require.Error(t, err)
}
