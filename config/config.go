/*
config.go - Environment configuration

PURPOSE:
  Loads server configuration from the environment, optionally seeded from a
  .env file in the working directory. Command-line flags in cmd/server
  override the values loaded here.

VARIABLES:
  APP_PORT              HTTP port (default: 8080)
  APP_ENV               development | production (default: development)
  LOG_LEVEL             debug | info | warn | error (default: info)
  DB_PATH               SQLite database path (default: leave.db)
                        Use ":memory:" for an in-memory database
  CORS_ALLOWED_ORIGINS  Comma-separated origins
                        (default: http://localhost:5173,http://localhost:8080)
  APP_TIMEZONE          IANA zone used for "today" and hour-unit leave
                        (default: UTC)

SEE ALSO:
  - cmd/server/main.go: Flag overrides
  - api/server.go: NewLogger uses App.LogLevel and App.Env
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	CORS     CORSConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Location *time.Location
}

type DatabaseConfig struct {
	Path string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env (if present) and the process environment. A missing .env
// file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	port, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	return &Config{
		App: AppConfig{
			Port:     port,
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
			Location: loc,
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "leave.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		},
	}, nil
}

// SlogLevel maps LOG_LEVEL onto slog. Unknown values fall back to info.
func (c AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
