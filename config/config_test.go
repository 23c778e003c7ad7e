package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/config"
)

var envKeys = []string{"APP_PORT", "APP_ENV", "LOG_LEVEL", "DB_PATH", "CORS_ALLOWED_ORIGINS", "APP_TIMEZONE"}

// cleanEnv runs the test from an empty directory with every variable blanked.
func cleanEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "UTC", cfg.App.Location.String())
	assert.Equal(t, "leave.db", cfg.Database.Path)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.App.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "Asia/Jakarta", cfg.App.Location.String())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := cleanEnv(t)
	// godotenv never overrides variables that are already set, blank or not
	for _, key := range []string{"APP_PORT", "LOG_LEVEL"} {
		os.Unsetenv(key)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_PORT=7070\nLOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("APP_PORT")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, slog.LevelDebug, cfg.App.SlogLevel())
}

func TestLoad_InvalidValues(t *testing.T) {
	cleanEnv(t)
	t.Setenv("APP_PORT", "eighty")
	_, err := config.Load()
	assert.ErrorContains(t, err, "APP_PORT")

	t.Setenv("APP_PORT", "")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err = config.Load()
	assert.ErrorContains(t, err, "APP_TIMEZONE")
}

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, config.AppConfig{LogLevel: in}.SlogLevel(), in)
	}
}
