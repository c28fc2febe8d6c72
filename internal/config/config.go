// Package config loads the daemon configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Sink kinds recognized by the SINK variable.
const (
	SinkFile     = "file"
	SinkGist     = "gist"
	SinkPostgres = "postgres"
)

// Config holds everything the daemon reads from the environment.
type Config struct {
	// Poll interval between cycles.
	Interval time.Duration

	// Sink selection and per-sink settings.
	SinkKind     string
	SnapshotPath string
	GistID       string
	GithubToken  string
	DatabaseURL  string

	// Alert channel credentials; alerts are disabled when empty.
	TelegramToken  string
	TelegramChatID string

	// Liveness endpoint port.
	HealthPort string
}

// Load reads the configuration, applying defaults for anything unset.
func Load() *Config {
	return &Config{
		Interval: time.Duration(getEnvInt("CHECK_INTERVAL", 60)) * time.Second,

		SinkKind:     getEnv("SINK", SinkFile),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "~/.local/share/matchmirror/today.json"),
		GistID:       getEnv("GIST_ID", ""),
		GithubToken:  getEnv("GITHUB_TOKEN", ""),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),

		HealthPort: getEnv("HEALTH_PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
